package dinner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrShareCodeTaken is returned when an insert collides with an existing
// share code. The service retries with a fresh code.
var ErrShareCodeTaken = errors.New("share code already taken")

// Repository handles dinner data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new dinner repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a dinner together with its default categories and the host's
// guest record in a single transaction, so a failure partway through leaves
// nothing behind.
func (r *Repository) Create(ctx context.Context, req *CreateDinnerRequest, dateTime time.Time, shareCode, sessionToken string) (*Dinner, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	d := &Dinner{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		DateTime:    dateTime,
		Location:    req.Location,
		HostName:    req.HostName,
		HostPhone:   req.HostPhone,
		ShareCode:   shareCode,
		CreatedAt:   now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dinners (id, title, description, date_time, location, host_name, host_phone, share_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.Title, d.Description, d.DateTime, d.Location, d.HostName, d.HostPhone, d.ShareCode, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrShareCodeTaken
		}
		return nil, fmt.Errorf("failed to create dinner: %w", err)
	}

	for _, cat := range DefaultCategories {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO categories (id, dinner_id, name, desired_count, sort_order, created_at)
			VALUES ($1, $2, $3, NULL, $4, $5)
		`, uuid.NewString(), d.ID, cat.Name, cat.SortOrder, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create default category: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO guests (id, dinner_id, name, phone, is_host, session_token, rsvp_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
	`, uuid.NewString(), d.ID, req.HostName, req.HostPhone, sessionToken, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create host guest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dinner creation: %w", err)
	}

	return d, nil
}

// GetByShareCode retrieves a dinner by its public share code
func (r *Repository) GetByShareCode(ctx context.Context, shareCode string) (*Dinner, error) {
	return r.get(ctx, "share_code", shareCode)
}

// GetByID retrieves a dinner by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Dinner, error) {
	return r.get(ctx, "id", id)
}

func (r *Repository) get(ctx context.Context, column, value string) (*Dinner, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, date_time, location, host_name, host_phone, share_code, created_at
		FROM dinners
		WHERE %s = $1
	`, column)

	d := &Dinner{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.DateTime,
		&d.Location,
		&d.HostName,
		&d.HostPhone,
		&d.ShareCode,
		&d.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dinner: %w", err)
	}

	return d, nil
}

// Update modifies a dinner's mutable fields. The share code is immutable.
func (r *Repository) Update(ctx context.Context, id string, req *UpdateDinnerRequest, dateTime time.Time) (*Dinner, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE dinners
		SET title = $2, date_time = $3, location = $4, description = $5
		WHERE id = $1
	`, id, req.Title, dateTime, req.Location, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to update dinner: %w", err)
	}

	return r.GetByID(ctx, id)
}

// isUniqueViolation reports whether err is a unique-constraint error from
// either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
