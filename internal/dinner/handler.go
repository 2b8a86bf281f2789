package dinner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/potluck-app/potluck/pkg/middleware"
	"github.com/potluck-app/potluck/pkg/response"
)

// GuestResolver maps a session token to the guest it belongs to within one
// dinner. Implemented by the guest service.
type GuestResolver interface {
	ResolveToken(ctx context.Context, dinnerID, token string) (guestID string, isHost bool, err error)
}

// Handler handles HTTP requests for dinner operations
type Handler struct {
	service *Service
	guests  GuestResolver
}

// NewHandler creates a new dinner handler
func NewHandler(service *Service, guests GuestResolver) *Handler {
	return &Handler{service: service, guests: guests}
}

// Create handles POST /dinners
// @Summary      Create a dinner
// @Description  Create a dinner with its default categories and the host's guest record, and issue the host's session token
// @Tags         dinners
// @Accept       json
// @Produce      json
// @Param        request body CreateDinnerRequest true "Dinner creation request"
// @Success      201 {object} response.APIResponse{data=CreateDinnerResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /dinners [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	d, sessionToken, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidDateTime) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create dinner")
		return
	}

	middleware.SetSessionCookie(w, d.ShareCode, sessionToken)
	response.JSON(w, http.StatusCreated, &CreateDinnerResponse{
		Dinner:       d.ToResponse(),
		SessionToken: sessionToken,
	})
}

// Get handles GET /dinners/{shareCode}
// @Summary      Get dinner by share code
// @Tags         dinners
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Success      200 {object} response.APIResponse{data=DinnerResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shareCode := chi.URLParam(r, "shareCode")

	d, err := h.service.GetByShareCode(r.Context(), shareCode)
	if err != nil {
		if errors.Is(err, ErrDinnerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get dinner")
		return
	}

	response.JSON(w, http.StatusOK, d.ToResponse())
}

// Update handles PUT /dinners/{shareCode}
// @Summary      Edit dinner details
// @Description  Host-only: update title, date, location, and description
// @Tags         dinners
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        request body UpdateDinnerRequest true "Dinner update request"
// @Success      200 {object} response.APIResponse{data=DinnerResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	shareCode := chi.URLParam(r, "shareCode")

	d, err := h.service.GetByShareCode(r.Context(), shareCode)
	if err != nil {
		if errors.Is(err, ErrDinnerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get dinner")
		return
	}

	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		response.Unauthorized(w, "Session token required")
		return
	}

	_, isHost, err := h.guests.ResolveToken(r.Context(), d.ID, token)
	if err != nil {
		response.InternalError(w, "Failed to resolve session")
		return
	}
	if !isHost {
		response.Forbidden(w, "Only the host can edit the dinner")
		return
	}

	var req UpdateDinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), d.ID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidDateTime) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update dinner")
		return
	}

	response.JSON(w, http.StatusOK, updated.ToResponse())
}
