package guest

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluck-app/potluck/internal/database"
	"github.com/potluck-app/potluck/internal/dinner"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) Notify(dinnerID, collection string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, collection)
}

func (n *fakeNotifier) collections() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "potluck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedDinner(t *testing.T, db *sql.DB) (*dinner.Dinner, string) {
	t.Helper()
	d, token, err := dinner.NewService(dinner.NewRepository(db)).Create(context.Background(), &dinner.CreateDinnerRequest{
		HostName:  "Dana",
		HostPhone: "555-0100",
		Title:     "Game Night",
		DateTime:  "2026-09-12T18:30:00Z",
		Location:  "12 Oak St",
	})
	require.NoError(t, err)
	return d, token
}

func TestServiceRsvp(t *testing.T) {
	db := openTestDB(t)
	d, _ := seedDinner(t, db)
	notifier := &fakeNotifier{}
	svc := NewService(NewRepository(db), notifier)
	ctx := context.Background()

	g, token, err := svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Sam", Phone: "555-0101"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Sam", g.Name)
	assert.False(t, g.IsHost)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"guests"}, notifier.collections())
}

func TestServiceRsvpRejectsSecondRsvpFromSameDevice(t *testing.T) {
	db := openTestDB(t)
	d, _ := seedDinner(t, db)
	notifier := &fakeNotifier{}
	svc := NewService(NewRepository(db), notifier)
	ctx := context.Background()

	_, token, err := svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Sam", Phone: "555-0101"}, "")
	require.NoError(t, err)

	_, _, err = svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Sam Again", Phone: "555-0101"}, token)
	assert.ErrorIs(t, err, ErrAlreadyRsvped)
	assert.Len(t, notifier.collections(), 1, "rejected RSVP must not notify")
}

func TestServiceRsvpAcceptsStaleToken(t *testing.T) {
	db := openTestDB(t)
	d, _ := seedDinner(t, db)
	svc := NewService(NewRepository(db), &fakeNotifier{})

	// A token from some other dinner does not block joining this one.
	g, _, err := svc.Rsvp(context.Background(), d.ID, &RsvpRequest{Name: "Sam", Phone: "555-0101"}, "not-a-token-here")
	require.NoError(t, err)
	assert.Equal(t, "Sam", g.Name)
}

func TestServiceListByDinnerOrder(t *testing.T) {
	db := openTestDB(t)
	d, _ := seedDinner(t, db)
	svc := NewService(NewRepository(db), &fakeNotifier{})
	ctx := context.Background()

	_, _, err := svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Sam", Phone: "555-0101"}, "")
	require.NoError(t, err)
	_, _, err = svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Alex", Phone: "555-0102"}, "")
	require.NoError(t, err)

	guests, err := svc.ListByDinner(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, guests, 3)
	assert.True(t, guests[0].IsHost, "host RSVPs first by construction")
	assert.Equal(t, "Sam", guests[1].Name)
	assert.Equal(t, "Alex", guests[2].Name)
}

func TestServiceResolveToken(t *testing.T) {
	db := openTestDB(t)
	d, hostToken := seedDinner(t, db)
	svc := NewService(NewRepository(db), &fakeNotifier{})
	ctx := context.Background()

	g, guestToken, err := svc.Rsvp(ctx, d.ID, &RsvpRequest{Name: "Sam", Phone: "555-0101"}, "")
	require.NoError(t, err)

	id, isHost, err := svc.ResolveToken(ctx, d.ID, hostToken)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, isHost)

	id, isHost, err = svc.ResolveToken(ctx, d.ID, guestToken)
	require.NoError(t, err)
	assert.Equal(t, g.ID, id)
	assert.False(t, isHost)

	id, isHost, err = svc.ResolveToken(ctx, d.ID, "unknown")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.False(t, isHost)
}
