package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/potluck-app/potluck/internal/category"
	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/internal/guest"
	"github.com/potluck-app/potluck/internal/item"
	"github.com/potluck-app/potluck/internal/realtime"
	"github.com/potluck-app/potluck/pkg/response"
)

// ErrNotFound is returned for requests that resolve to a missing resource.
var ErrNotFound = fmt.Errorf("not found")

// ErrSubscriptionLost is returned by EventPage.Watch when the server drops
// the change feed out from under it.
var ErrSubscriptionLost = fmt.Errorf("subscription lost")

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Gateway is a typed HTTP client for the potluck API.
type Gateway struct {
	baseURL string
	http    *http.Client
}

// NewGateway creates a gateway against the given base URL, e.g. http://localhost:8080.
func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *response.APIError `json:"error"`
}

func (g *Gateway) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// CreateDinner creates a dinner and returns it together with the host's session token.
func (g *Gateway) CreateDinner(ctx context.Context, req dinner.CreateDinnerRequest) (*dinner.CreateDinnerResponse, error) {
	var out dinner.CreateDinnerResponse
	if err := g.do(ctx, http.MethodPost, "/dinners", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDinner fetches a dinner by its share code.
func (g *Gateway) GetDinner(ctx context.Context, shareCode string) (*dinner.DinnerResponse, error) {
	var out dinner.DinnerResponse
	if err := g.do(ctx, http.MethodGet, "/dinners/"+url.PathEscape(shareCode), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDinner edits dinner details as the host.
func (g *Gateway) UpdateDinner(ctx context.Context, shareCode, token string, req dinner.UpdateDinnerRequest) (*dinner.DinnerResponse, error) {
	var out dinner.DinnerResponse
	if err := g.do(ctx, http.MethodPut, "/dinners/"+url.PathEscape(shareCode), token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rsvp joins a dinner and returns the new guest with their session token.
func (g *Gateway) Rsvp(ctx context.Context, shareCode string, req guest.RsvpRequest) (*guest.RsvpResponse, error) {
	var out guest.RsvpResponse
	if err := g.do(ctx, http.MethodPost, "/dinners/"+url.PathEscape(shareCode)+"/guests", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGuests returns the dinner's guests in RSVP order.
func (g *Gateway) ListGuests(ctx context.Context, shareCode string) ([]*guest.GuestResponse, error) {
	var out []*guest.GuestResponse
	if err := g.do(ctx, http.MethodGet, "/dinners/"+url.PathEscape(shareCode)+"/guests", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Me resolves the guest bound to the session token. Returns ErrNotFound for
// anonymous viewers.
func (g *Gateway) Me(ctx context.Context, shareCode, token string) (*guest.GuestResponse, error) {
	var out guest.GuestResponse
	if err := g.do(ctx, http.MethodGet, "/dinners/"+url.PathEscape(shareCode)+"/guests/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns the dinner's categories with item counts.
func (g *Gateway) ListCategories(ctx context.Context, shareCode string) ([]*category.CategoryResponse, error) {
	var out []*category.CategoryResponse
	if err := g.do(ctx, http.MethodGet, "/dinners/"+url.PathEscape(shareCode)+"/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCategory appends a category as the host.
func (g *Gateway) AddCategory(ctx context.Context, shareCode, token string, req category.CreateCategoryRequest) (*category.CategoryResponse, error) {
	var out category.CategoryResponse
	if err := g.do(ctx, http.MethodPost, "/dinners/"+url.PathEscape(shareCode)+"/categories", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategoryQuota sets or clears a category's desired item count as the host.
func (g *Gateway) UpdateCategoryQuota(ctx context.Context, shareCode, token, categoryID string, req category.UpdateCategoryRequest) (*category.CategoryResponse, error) {
	var out category.CategoryResponse
	if err := g.do(ctx, http.MethodPut, "/dinners/"+url.PathEscape(shareCode)+"/categories/"+url.PathEscape(categoryID), token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category as the host.
func (g *Gateway) DeleteCategory(ctx context.Context, shareCode, token, categoryID string) error {
	return g.do(ctx, http.MethodDelete, "/dinners/"+url.PathEscape(shareCode)+"/categories/"+url.PathEscape(categoryID), token, nil, nil)
}

// ListItems returns the dinner's items in creation order.
func (g *Gateway) ListItems(ctx context.Context, shareCode string) ([]*item.ItemResponse, error) {
	var out []*item.ItemResponse
	if err := g.do(ctx, http.MethodGet, "/dinners/"+url.PathEscape(shareCode)+"/items", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddItem creates an item brought by the current guest.
func (g *Gateway) AddItem(ctx context.Context, shareCode, token string, req item.ItemRequest) (*item.ItemResponse, error) {
	var out item.ItemResponse
	if err := g.do(ctx, http.MethodPost, "/dinners/"+url.PathEscape(shareCode)+"/items", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditItem updates an item owned by the current guest.
func (g *Gateway) EditItem(ctx context.Context, shareCode, token, itemID string, req item.ItemRequest) (*item.ItemResponse, error) {
	var out item.ItemResponse
	if err := g.do(ctx, http.MethodPut, "/dinners/"+url.PathEscape(shareCode)+"/items/"+url.PathEscape(itemID), token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes an item owned by the current guest.
func (g *Gateway) DeleteItem(ctx context.Context, shareCode, token, itemID string) error {
	return g.do(ctx, http.MethodDelete, "/dinners/"+url.PathEscape(shareCode)+"/items/"+url.PathEscape(itemID), token, nil, nil)
}

// Subscription is an open change-notification stream for one dinner.
type Subscription struct {
	conn   *websocket.Conn
	events chan realtime.ChangeEvent

	done      chan struct{}
	closeOnce sync.Once
}

// Events yields change events until the subscription closes.
func (s *Subscription) Events() <-chan realtime.ChangeEvent {
	return s.events
}

// Close terminates the stream. Closing the connection alone would strand a
// reader mid-delivery, so done releases it too.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.conn.Close()
}

// Subscribe opens the dinner's WebSocket change feed. The returned
// subscription's event channel is closed when the connection drops.
func (g *Gateway) Subscribe(ctx context.Context, shareCode string) (*Subscription, error) {
	wsURL, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/api/v1/dinners/" + url.PathEscape(shareCode) + "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	sub := &Subscription{
		conn:   conn,
		events: make(chan realtime.ChangeEvent),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.events)
		for {
			var event realtime.ChangeEvent
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			select {
			case sub.events <- event:
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}
