package guest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/pkg/middleware"
	"github.com/potluck-app/potluck/pkg/response"
)

// Handler handles HTTP requests for guest operations
type Handler struct {
	service *Service
	dinners *dinner.Service
}

// NewHandler creates a new guest handler
func NewHandler(service *Service, dinners *dinner.Service) *Handler {
	return &Handler{service: service, dinners: dinners}
}

// Routes returns the router for guest endpoints, mounted under
// /dinners/{shareCode}/guests
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Rsvp)
	r.Get("/", h.List)
	r.Get("/me", h.Me)

	return r
}

// resolveDinner loads the dinner for the share code in the URL, writing the
// error response itself when that fails.
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

// Rsvp handles POST /dinners/{shareCode}/guests
// @Summary      RSVP to a dinner
// @Description  Join a dinner as a guest and receive a session token
// @Tags         guests
// @Accept       json
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Param        request body RsvpRequest true "RSVP request"
// @Success      201 {object} response.APIResponse{data=RsvpResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /dinners/{shareCode}/guests [post]
func (h *Handler) Rsvp(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	var req RsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	existingToken, _ := middleware.GetSessionToken(r.Context())

	g, sessionToken, err := h.service.Rsvp(r.Context(), d.ID, &req, existingToken)
	if err != nil {
		if errors.Is(err, ErrAlreadyRsvped) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to RSVP")
		return
	}

	middleware.SetSessionCookie(w, d.ShareCode, sessionToken)
	response.JSON(w, http.StatusCreated, &RsvpResponse{
		Guest:        g.ToResponse(),
		SessionToken: sessionToken,
	})
}

// List handles GET /dinners/{shareCode}/guests
// @Summary      List guests
// @Description  All guests of a dinner ordered by RSVP time ascending
// @Tags         guests
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Success      200 {object} response.APIResponse{data=[]GuestResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/guests [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	guests, err := h.service.ListByDinner(r.Context(), d.ID)
	if err != nil {
		response.InternalError(w, "Failed to list guests")
		return
	}

	guestResponses := make([]*GuestResponse, len(guests))
	for i, g := range guests {
		guestResponses[i] = g.ToResponse()
	}

	response.JSON(w, http.StatusOK, guestResponses)
}

// Me handles GET /dinners/{shareCode}/guests/me
// @Summary      Resolve the current guest
// @Description  Returns the guest bound to the caller's session token, or 404 for anonymous viewers
// @Tags         guests
// @Produce      json
// @Param        shareCode path string true "Share code"
// @Success      200 {object} response.APIResponse{data=GuestResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/guests/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveDinner(w, r)
	if !ok {
		return
	}

	token, ok := middleware.GetSessionToken(r.Context())
	if !ok {
		response.NotFound(w, "No session for this dinner")
		return
	}

	g, err := h.service.GetByToken(r.Context(), d.ID, token)
	if err != nil {
		response.InternalError(w, "Failed to resolve session")
		return
	}
	if g == nil {
		response.NotFound(w, "No session for this dinner")
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}
