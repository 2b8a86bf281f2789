package guest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository handles guest data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new guest repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new guest into the database
func (r *Repository) Create(ctx context.Context, dinnerID string, req *RsvpRequest, sessionToken string) (*Guest, error) {
	g := &Guest{
		ID:           uuid.NewString(),
		DinnerID:     dinnerID,
		Name:         req.Name,
		Phone:        req.Phone,
		IsHost:       false,
		SessionToken: sessionToken,
		RsvpAt:       time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guests (id, dinner_id, name, phone, is_host, session_token, rsvp_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.DinnerID, g.Name, g.Phone, g.IsHost, g.SessionToken, g.RsvpAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	return g, nil
}

// ListByDinner retrieves all guests of a dinner ordered by RSVP time ascending
func (r *Repository) ListByDinner(ctx context.Context, dinnerID string) ([]*Guest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dinner_id, name, phone, is_host, session_token, rsvp_at
		FROM guests
		WHERE dinner_id = $1
		ORDER BY rsvp_at
	`, dinnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []*Guest
	for rows.Next() {
		g := &Guest{}
		if err := rows.Scan(
			&g.ID,
			&g.DinnerID,
			&g.Name,
			&g.Phone,
			&g.IsHost,
			&g.SessionToken,
			&g.RsvpAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}

	return guests, rows.Err()
}

// GetByToken retrieves the guest of a dinner holding the given session token
func (r *Repository) GetByToken(ctx context.Context, dinnerID, sessionToken string) (*Guest, error) {
	g := &Guest{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, dinner_id, name, phone, is_host, session_token, rsvp_at
		FROM guests
		WHERE dinner_id = $1 AND session_token = $2
	`, dinnerID, sessionToken).Scan(
		&g.ID,
		&g.DinnerID,
		&g.Name,
		&g.Phone,
		&g.IsHost,
		&g.SessionToken,
		&g.RsvpAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guest by token: %w", err)
	}

	return g, nil
}

// GetByID retrieves a guest by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Guest, error) {
	g := &Guest{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, dinner_id, name, phone, is_host, session_token, rsvp_at
		FROM guests
		WHERE id = $1
	`, id).Scan(
		&g.ID,
		&g.DinnerID,
		&g.Name,
		&g.Phone,
		&g.IsHost,
		&g.SessionToken,
		&g.RsvpAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}

	return g, nil
}
