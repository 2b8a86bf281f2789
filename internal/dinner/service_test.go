package dinner

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluck-app/potluck/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "potluck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createRequest() *CreateDinnerRequest {
	return &CreateDinnerRequest{
		HostName:  "Dana",
		HostPhone: "555-0100",
		Title:     "Game Night",
		DateTime:  "2026-09-12T18:30:00Z",
		Location:  "12 Oak St",
	}
}

func TestServiceCreate(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, token, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.NotEmpty(t, d.ID)
	assert.Len(t, d.ShareCode, ShareCodeLength)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Game Night", d.Title)
	assert.Nil(t, d.Description)
}

func TestServiceCreateSeedsDefaultCategories(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	rows, err := db.Query("SELECT name FROM categories WHERE dinner_id = $1 ORDER BY sort_order", d.ID)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{"Appetizers", "Entrées", "Sides", "Desserts", "Drinks"}, names)

	var quotas int
	err = db.QueryRow("SELECT COUNT(*) FROM categories WHERE dinner_id = $1 AND desired_count IS NOT NULL", d.ID).Scan(&quotas)
	require.NoError(t, err)
	assert.Zero(t, quotas, "default categories start without quotas")
}

func TestServiceCreateSeedsHostGuest(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, token, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	var name string
	var isHost bool
	err = db.QueryRow("SELECT name, is_host FROM guests WHERE dinner_id = $1 AND session_token = $2", d.ID, token).Scan(&name, &isHost)
	require.NoError(t, err)
	assert.Equal(t, "Dana", name)
	assert.True(t, isHost)
}

func TestServiceCreateRetriesShareCodeCollision(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	first, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	// First draw collides with the existing dinner, second succeeds.
	calls := 0
	svc.newShareCode = func() (string, error) {
		calls++
		if calls == 1 {
			return first.ShareCode, nil
		}
		return NewShareCode()
	}

	second, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.ShareCode, second.ShareCode)
}

func TestServiceCreateExhaustsShareCodes(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	first, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	svc.newShareCode = func() (string, error) {
		return first.ShareCode, nil
	}

	_, _, err = svc.Create(ctx, createRequest())
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestServiceCreateRejectsBadDateTime(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))

	req := createRequest()
	req.DateTime = "next saturday"
	_, _, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDateTime)
}

func TestServiceCreateRejectsMissingFields(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))

	req := createRequest()
	req.Title = ""
	_, _, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestServiceGetByShareCode(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	got, err := svc.GetByShareCode(ctx, d.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = svc.GetByShareCode(ctx, "missing1")
	assert.ErrorIs(t, err, ErrDinnerNotFound)
}

func TestServiceUpdate(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	desc := "Bring board games"
	updated, err := svc.Update(ctx, d.ID, &UpdateDinnerRequest{
		Title:       "Game Night II",
		DateTime:    "2026-09-19T19:00:00Z",
		Location:    "14 Oak St",
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Game Night II", updated.Title)
	assert.Equal(t, "14 Oak St", updated.Location)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Bring board games", *updated.Description)
	assert.Equal(t, d.ShareCode, updated.ShareCode, "share code is immutable")
}

func TestServiceUpdateClearsEmptyDescription(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	d, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	empty := ""
	updated, err := svc.Update(ctx, d.ID, &UpdateDinnerRequest{
		Title:       d.Title,
		DateTime:    "2026-09-12T18:30:00Z",
		Location:    d.Location,
		Description: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
}
