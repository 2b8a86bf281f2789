package item

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Repository handles item and dietary tag persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new item repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new item with its dietary tags in one transaction
func (r *Repository) Create(ctx context.Context, dinnerID, guestID string, req *ItemRequest) (*Item, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	it := &Item{
		ID:          uuid.NewString(),
		DinnerID:    dinnerID,
		GuestID:     guestID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
		DietaryTags: append([]string(nil), req.DietaryTags...),
	}
	// Tag order is canonical everywhere: reads sort, so writes answer sorted too.
	sort.Strings(it.DietaryTags)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, dinner_id, guest_id, category_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, it.ID, it.DinnerID, it.GuestID, it.CategoryID, it.Name, it.Description, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	if err := insertTags(ctx, tx, it.ID, it.DietaryTags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item creation: %w", err)
	}

	return it, nil
}

// Update replaces an item's mutable fields and its full dietary tag set in
// one transaction. Tags are deleted and re-inserted, never merged.
func (r *Repository) Update(ctx context.Context, id string, req *ItemRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE items SET name = $2, category_id = $3, description = $4 WHERE id = $1
	`, id, req.Name, req.CategoryID, req.Description)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM item_dietary_tags WHERE item_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear dietary tags: %w", err)
	}

	if err := insertTags(ctx, tx, id, req.DietaryTags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item update: %w", err)
	}

	return nil
}

// Delete removes an item; its tag rows cascade at the schema layer
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item not found")
	}

	return nil
}

// GetByID retrieves an item with its dietary tags
func (r *Repository) GetByID(ctx context.Context, id string) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, dinner_id, guest_id, category_id, name, description, created_at
		FROM items
		WHERE id = $1
	`, id).Scan(
		&it.ID,
		&it.DinnerID,
		&it.GuestID,
		&it.CategoryID,
		&it.Name,
		&it.Description,
		&it.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT tag FROM item_dietary_tags WHERE item_id = $1 ORDER BY tag
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dietary tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan dietary tag: %w", err)
		}
		it.DietaryTags = append(it.DietaryTags, tag)
	}

	return it, rows.Err()
}

// ListByDinner retrieves all items of a dinner ordered by creation time
// ascending, each with its dietary tags joined in.
func (r *Repository) ListByDinner(ctx context.Context, dinnerID string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dinner_id, guest_id, category_id, name, description, created_at
		FROM items
		WHERE dinner_id = $1
		ORDER BY created_at
	`, dinnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	byID := make(map[string]*Item)
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(
			&it.ID,
			&it.DinnerID,
			&it.GuestID,
			&it.CategoryID,
			&it.Name,
			&it.Description,
			&it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
		byID[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	tagRows, err := r.db.QueryContext(ctx, `
		SELECT t.item_id, t.tag
		FROM item_dietary_tags t
		JOIN items i ON i.id = t.item_id
		WHERE i.dinner_id = $1
	`, dinnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dietary tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var itemID, tag string
		if err := tagRows.Scan(&itemID, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan dietary tag: %w", err)
		}
		if it, ok := byID[itemID]; ok {
			it.DietaryTags = append(it.DietaryTags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dietary tags: %w", err)
	}

	for _, it := range items {
		sort.Strings(it.DietaryTags)
	}

	return items, nil
}

// insertTags writes one tag row per tag within the caller's transaction
func insertTags(ctx context.Context, tx *sql.Tx, itemID string, tags []string) error {
	for _, tag := range tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO item_dietary_tags (id, item_id, tag)
			VALUES ($1, $2, $3)
		`, uuid.NewString(), itemID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert dietary tag: %w", err)
		}
	}
	return nil
}
