package item

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/pkg/middleware"
	"github.com/potluck-app/potluck/pkg/response"
)

// GuestResolver maps a session token to the guest it belongs to within one
// dinner. Implemented by the guest service.
type GuestResolver interface {
	ResolveToken(ctx context.Context, dinnerID, token string) (guestID string, isHost bool, err error)
}

// Handler handles HTTP requests for item operations
type Handler struct {
	service *Service
	dinners *dinner.Service
	guests  GuestResolver
}

// NewHandler creates a new item handler
func NewHandler(service *Service, dinners *dinner.Service, guests GuestResolver) *Handler {
	return &Handler{service: service, dinners: dinners, guests: guests}
}

// Routes returns the router for item endpoints, mounted under
// /dinners/{shareCode}/items
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Put("/{id}", h.Edit)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) resolveDinner(w http.ResponseWriter, r *http.Request) (*dinner.Dinner, bool) {
	d, err := h.dinners.GetByShareCode(r.Context(), chi.URLParam(r, "shareCode"))
	if err != nil {
		if errors.Is(err, dinner.ErrDinnerNotFound) {
			response.NotFound(w, err.Error())
		} else {
			response.InternalError(w, "Failed to get dinner")
		}
		return nil, false
	}
	return d, true
}

// requireGuest resolves the caller to a guest of this dinner, writing the
// error response itself when the caller is anonymous.
func (h *Handler) requireGuest(w http.ResponseWriter, r *http.Request, dinnerID string) (string, bool) {
	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		response.Unauthorized(w, "RSVP before bringing an item")
		return "", false
	}

	guestID, _, err := h.guests.ResolveToken(r.Context(), dinnerID, token)
	if err != nil {
		response.InternalError(w, "Failed to resolve session")
		return "", false
	}
	if guestID == "" {
		response.Unauthorized(w, "RSVP before bringing an item")
		return "", false
	}
	return guestID, true
}

// List handles GET /dinners/{shareCode}/items
// @Summary      List items
// @Description  All items of a dinner in creation order, with dietary tags joined
// @Tags         items
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Success      200 {object} response.APIResponse{data=[]ItemResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/items [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListByDinner(r.Context(), d.ID)
	if err != nil {
		response.InternalError(w, "Failed to list items")
		return
	}

	itemResponses := make([]*ItemResponse, len(items))
	for i, it := range items {
		itemResponses[i] = it.ToResponse()
	}

	response.JSON(w, http.StatusOK, itemResponses)
}

// Add handles POST /dinners/{shareCode}/items
// @Summary      Add an item
// @Description  Create an item brought by the current guest, with optional category and dietary tags
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        request body ItemRequest true "Item creation request"
// @Success      201 {object} response.APIResponse{data=ItemResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/items [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	guestID, ok := h.requireGuest(w, r, d.ID)
	if !ok {
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	it, err := h.service.Add(r.Context(), d.ID, guestID, &req)
	if err != nil {
		response.InternalError(w, "Failed to add item")
		return
	}

	response.JSON(w, http.StatusCreated, it.ToResponse())
}

// Edit handles PUT /dinners/{shareCode}/items/{id}
// @Summary      Edit an item
// @Description  Owner-only: update fields and replace the dietary tag set
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        id path string true "Item ID"
// @Param        request body ItemRequest true "Item update request"
// @Success      200 {object} response.APIResponse{data=ItemResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/items/{id} [put]
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	guestID, ok := h.requireGuest(w, r, d.ID)
	if !ok {
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	it, err := h.service.Edit(r.Context(), d.ID, guestID, chi.URLParam(r, "id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotItemOwner):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to update item")
		}
		return
	}

	response.JSON(w, http.StatusOK, it.ToResponse())
}

// Delete handles DELETE /dinners/{shareCode}/items/{id}
// @Summary      Delete an item
// @Description  Owner-only: remove the item; its tag rows cascade away
// @Tags         items
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        id path string true "Item ID"
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/items/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	guestID, ok := h.requireGuest(w, r, d.ID)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), d.ID, guestID, chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotItemOwner):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete item")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
