package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluck-app/potluck/internal/api"
	"github.com/potluck-app/potluck/internal/database"
	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/internal/guest"
	"github.com/potluck-app/potluck/internal/item"
	"github.com/potluck-app/potluck/internal/realtime"
)

func newTestServer(t *testing.T) (*Gateway, *realtime.Hub) {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "potluck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := realtime.NewHub()
	srv := httptest.NewServer(api.NewRouter(db, hub))
	t.Cleanup(srv.Close)

	return NewGateway(srv.URL), hub
}

func newSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)
	return s
}

func createTestDinner(t *testing.T, gw *Gateway) *dinner.CreateDinnerResponse {
	t.Helper()
	created, err := gw.CreateDinner(context.Background(), dinner.CreateDinnerRequest{
		HostName:  "Dana",
		HostPhone: "555-0100",
		Title:     "Game Night",
		DateTime:  "2026-09-12T18:30:00Z",
		Location:  "12 Oak St",
	})
	require.NoError(t, err)
	return created
}

func TestEventPageLoad(t *testing.T) {
	gw, _ := newTestServer(t)
	sessions := newSessionStore(t)
	created := createTestDinner(t, gw)
	require.NoError(t, sessions.Set(created.Dinner.ShareCode, created.SessionToken))

	page := NewEventPage(gw, sessions, created.Dinner.ShareCode)
	defer page.Close()
	assert.Equal(t, StateLoading, page.State())

	require.NoError(t, page.Load(context.Background()))
	require.Equal(t, StateFound, page.State())

	snap := page.Snapshot()
	assert.Equal(t, "Game Night", snap.Dinner.Title)
	assert.Len(t, snap.Guests, 1)
	assert.Len(t, snap.Categories, 5)
	assert.Empty(t, snap.Items)
	require.NotNil(t, snap.Me, "stored token resolves to the host")
	assert.Equal(t, "Dana", snap.Me.Name)
	assert.True(t, snap.Me.IsHost)
}

func TestEventPageLoadAnonymous(t *testing.T) {
	gw, _ := newTestServer(t)
	created := createTestDinner(t, gw)

	page := NewEventPage(gw, newSessionStore(t), created.Dinner.ShareCode)
	defer page.Close()
	require.NoError(t, page.Load(context.Background()))

	assert.Equal(t, StateFound, page.State())
	assert.Nil(t, page.Snapshot().Me)
}

func TestEventPageLoadNotFound(t *testing.T) {
	gw, _ := newTestServer(t)

	page := NewEventPage(gw, newSessionStore(t), "nonesuch")
	defer page.Close()
	require.NoError(t, page.Load(context.Background()))
	assert.Equal(t, StateNotFound, page.State())
}

func TestEventPageLoadStaleToken(t *testing.T) {
	gw, _ := newTestServer(t)
	sessions := newSessionStore(t)
	created := createTestDinner(t, gw)
	require.NoError(t, sessions.Set(created.Dinner.ShareCode, "stale-token"))

	page := NewEventPage(gw, sessions, created.Dinner.ShareCode)
	defer page.Close()
	require.NoError(t, page.Load(context.Background()))

	assert.Equal(t, StateFound, page.State())
	assert.Nil(t, page.Snapshot().Me, "stale token degrades to anonymous")
}

func TestEventPageWatchRefreshesOnChange(t *testing.T) {
	gw, hub := newTestServer(t)
	created := createTestDinner(t, gw)
	shareCode := created.Dinner.ShareCode

	page := NewEventPage(gw, newSessionStore(t), shareCode)
	defer page.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, page.Load(ctx))

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		page.Watch(ctx)
	}()
	// Mutations before the subscription lands would be missed.
	waitFor(t, func() bool {
		return hub.Subscribers(page.Snapshot().Dinner.ID) == 1
	})

	joined, err := gw.Rsvp(ctx, shareCode, guest.RsvpRequest{Name: "Sam", Phone: "555-0101"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		return len(page.Snapshot().Guests) == 2
	})

	_, err = gw.AddItem(ctx, shareCode, joined.SessionToken, item.ItemRequest{
		Name:        "Hummus",
		DietaryTags: []string{"Vegan"},
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		items := page.Snapshot().Items
		return len(items) == 1 && items[0].Name == "Hummus"
	})

	cancel()
	select {
	case <-watchDone:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on context cancel")
	}
}

func TestEventPageRefreshTwiceIsIdempotent(t *testing.T) {
	gw, _ := newTestServer(t)
	created := createTestDinner(t, gw)
	ctx := context.Background()

	page := NewEventPage(gw, newSessionStore(t), created.Dinner.ShareCode)
	defer page.Close()
	require.NoError(t, page.Load(ctx))

	_, err := gw.Rsvp(ctx, created.Dinner.ShareCode, guest.RsvpRequest{Name: "Sam", Phone: "555-0101"})
	require.NoError(t, err)

	// Duplicate notifications for the same collection arrive in practice;
	// re-fetching must converge, not accumulate.
	page.refresh(ctx, "guests")
	first := page.Snapshot()
	require.Len(t, first.Guests, 2)

	page.refresh(ctx, "guests")
	assert.Equal(t, first, page.Snapshot())
}

func TestSubscriptionCloseWithUndeliveredEvent(t *testing.T) {
	gw, hub := newTestServer(t)
	created := createTestDinner(t, gw)
	ctx := context.Background()

	sub, err := gw.Subscribe(ctx, created.Dinner.ShareCode)
	require.NoError(t, err)

	waitFor(t, func() bool {
		return hub.Subscribers(created.Dinner.ID) == 1
	})

	// Deliver an event nobody is reading, then close. The stream must wind
	// down instead of waiting forever for a receiver.
	hub.Notify(created.Dinner.ID, "guests")
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sub.Close())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel did not close after Close")
		}
	}
}

func TestEventPageWatchReportsLostSubscription(t *testing.T) {
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "potluck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := realtime.NewHub()
	srv := httptest.NewServer(api.NewRouter(db, hub))
	t.Cleanup(srv.Close)
	gw := NewGateway(srv.URL)

	created := createTestDinner(t, gw)
	page := NewEventPage(gw, newSessionStore(t), created.Dinner.ShareCode)
	defer page.Close()
	require.NoError(t, page.Load(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- page.Watch(context.Background())
	}()
	waitFor(t, func() bool {
		return hub.Subscribers(page.Snapshot().Dinner.ID) == 1
	})

	// A server-side drop is not a clean shutdown and must be reported.
	srv.CloseClientConnections()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSubscriptionLost)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after the connection dropped")
	}
}

func TestEventPageCloseDiscardsLateResults(t *testing.T) {
	gw, _ := newTestServer(t)
	created := createTestDinner(t, gw)

	page := NewEventPage(gw, newSessionStore(t), created.Dinner.ShareCode)
	page.Close()

	// A load finishing after close must not resurrect the page.
	require.NoError(t, page.Load(context.Background()))
	assert.Equal(t, StateLoading, page.State())
	assert.Nil(t, page.Snapshot().Dinner)
}

func TestGatewayNotFoundMapping(t *testing.T) {
	gw, _ := newTestServer(t)

	_, err := gw.GetDinner(context.Background(), "nonesuch")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGatewayForbiddenIsAPIError(t *testing.T) {
	gw, _ := newTestServer(t)
	created := createTestDinner(t, gw)
	ctx := context.Background()

	joined, err := gw.Rsvp(ctx, created.Dinner.ShareCode, guest.RsvpRequest{Name: "Sam", Phone: "555-0101"})
	require.NoError(t, err)

	// A non-host guest cannot edit the dinner.
	_, err = gw.UpdateDinner(ctx, created.Dinner.ShareCode, joined.SessionToken, dinner.UpdateDinnerRequest{
		Title:    "Hijacked",
		DateTime: "2026-09-12T18:30:00Z",
		Location: "Elsewhere",
	})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
