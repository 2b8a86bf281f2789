package category

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

// Handler handles HTTP requests for category operations
type Handler struct {
	service *Service
	dinners *dinner.Service
	guests  GuestResolver
}

// NewHandler creates a new category handler
func NewHandler(service *Service, dinners *dinner.Service, guests GuestResolver) *Handler {
	return &Handler{service: service, dinners: dinners, guests: guests}
}

// Routes returns the router for category endpoints, mounted under
// /dinners/{shareCode}/categories
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Put("/{id}", h.UpdateQuota)
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

// requireHost verifies the caller's session token belongs to the dinner's
// host, writing the error response itself when it does not.
func (h *Handler) requireHost(w http.ResponseWriter, r *http.Request, dinnerID string) bool {
	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		response.Unauthorized(w, "Session token required")
		return false
	}

	_, isHost, err := h.guests.ResolveToken(r.Context(), dinnerID, token)
	if err != nil {
		response.InternalError(w, "Failed to resolve session")
		return false
	}
	if !isHost {
		response.Forbidden(w, "Only the host can manage categories")
		return false
	}
	return true
}

// List handles GET /dinners/{shareCode}/categories
// @Summary      List categories
// @Description  Categories in sort order, each with its item count and fill state
// @Tags         categories
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Success      200 {object} response.APIResponse{data=[]CategoryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/categories [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	categories, err := h.service.ListByDinner(r.Context(), d.ID)
	if err != nil {
		response.InternalError(w, "Failed to list categories")
		return
	}

	categoryResponses := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		categoryResponses[i] = c.Category.ToResponse(c.ItemCount)
	}

	response.JSON(w, http.StatusOK, categoryResponses)
}

// Add handles POST /dinners/{shareCode}/categories
// @Summary      Add a category
// @Description  Host-only: append a category at the next sort position with no quota
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        request body CreateCategoryRequest true "Category creation request"
// @Success      201 {object} response.APIResponse{data=CategoryResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /dinners/{shareCode}/categories [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}
	if !h.requireHost(w, r, d.ID) {
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	c, err := h.service.Add(r.Context(), d.ID, &req)
	if err != nil {
		response.InternalError(w, "Failed to add category")
		return
	}

	response.JSON(w, http.StatusCreated, c.ToResponse(0))
}

// UpdateQuota handles PUT /dinners/{shareCode}/categories/{id}
// @Summary      Set or clear a category quota
// @Description  Host-only: a null desired_count clears the quota
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        id path string true "Category ID"
// @Param        request body UpdateCategoryRequest true "Quota update request"
// @Success      200 {object} response.APIResponse{data=CategoryResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/categories/{id} [put]
func (h *Handler) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}
	if !h.requireHost(w, r, d.ID) {
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	c, err := h.service.UpdateQuota(r.Context(), d.ID, chi.URLParam(r, "id"), req.DesiredCount)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNegativeQuota):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to update category")
		}
		return
	}

	response.JSON(w, http.StatusOK, c.Category.ToResponse(c.ItemCount))
}

// Delete handles DELETE /dinners/{shareCode}/categories/{id}
// @Summary      Delete a category
// @Description  Host-only: items in the category become uncategorized, not deleted
// @Tags         categories
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        id path string true "Category ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/categories/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}
	if !h.requireHost(w, r, d.ID) {
		return
	}

	if err := h.service.Delete(r.Context(), d.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete category")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
