package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/pkg/response"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	// The share code in the URL is the access control; dinners are
	// link-shared, so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades dinner viewers to the change-notification feed
type Handler struct {
	hub     *Hub
	dinners *dinner.Service
}

// NewHandler creates a new realtime handler
func NewHandler(hub *Hub, dinners *dinner.Service) *Handler {
	return &Handler{hub: hub, dinners: dinners}
}

// Serve handles GET /dinners/{shareCode}/ws
// @Summary      Subscribe to change notifications
// @Description  WebSocket feed of {"collection": "guests"|"items"|"categories"} events for one dinner
// @Tags         realtime
// @Param        shareCode path string true "Share code"
// @Success      101 {string} string "Switching Protocols"
// @Failure      404 {object} response.APIResponse
// @Router       /dinners/{shareCode}/ws [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	d, err := h.dinners.GetByShareCode(r.Context(), chi.URLParam(r, "shareCode"))
	if err != nil {
		if errors.Is(err, dinner.ErrDinnerNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get dinner")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := NewClient(d.ID, conn)
	h.hub.Register(c)
	go c.WritePump()

	// The read loop ends on client close or error, which unregisters.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(c)
			return
		}
	}
}
