package category

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CategoryWithCount pairs a category with its current item count
type CategoryWithCount struct {
	Category
	ItemCount int
}

// Repository handles category data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new category repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new category into the database
func (r *Repository) Create(ctx context.Context, dinnerID, name string, sortOrder int) (*Category, error) {
	c := &Category{
		ID:        uuid.NewString(),
		DinnerID:  dinnerID,
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, dinner_id, name, desired_count, sort_order, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5)
	`, c.ID, c.DinnerID, c.Name, c.SortOrder, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return c, nil
}

// ListByDinner retrieves all categories of a dinner ordered by sort position,
// each annotated with its current item count.
func (r *Repository) ListByDinner(ctx context.Context, dinnerID string) ([]*CategoryWithCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.dinner_id, c.name, c.desired_count, c.sort_order, c.created_at, COUNT(i.id)
		FROM categories c
		LEFT JOIN items i ON i.category_id = c.id
		WHERE c.dinner_id = $1
		GROUP BY c.id, c.dinner_id, c.name, c.desired_count, c.sort_order, c.created_at
		ORDER BY c.sort_order
	`, dinnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*CategoryWithCount
	for rows.Next() {
		c := &CategoryWithCount{}
		if err := rows.Scan(
			&c.ID,
			&c.DinnerID,
			&c.Name,
			&c.DesiredCount,
			&c.SortOrder,
			&c.CreatedAt,
			&c.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// GetByID retrieves a category by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, dinner_id, name, desired_count, sort_order, created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(
		&c.ID,
		&c.DinnerID,
		&c.Name,
		&c.DesiredCount,
		&c.SortOrder,
		&c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return c, nil
}

// MaxSortOrder returns the highest sort position among a dinner's categories,
// or -1 when there are none, so the next category always lands at max+1.
func (r *Repository) MaxSortOrder(ctx context.Context, dinnerID string) (int, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(sort_order) FROM categories WHERE dinner_id = $1
	`, dinnerID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max sort order: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// CountItems returns the number of items currently in a category
func (r *Repository) CountItems(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM items WHERE category_id = $1
	`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// UpdateDesiredCount sets or clears (nil) a category's quota
func (r *Repository) UpdateDesiredCount(ctx context.Context, id string, desiredCount *int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE categories SET desired_count = $2 WHERE id = $1
	`, id, desiredCount)
	if err != nil {
		return fmt.Errorf("failed to update category quota: %w", err)
	}
	return nil
}

// Delete removes a category. Items referencing it become uncategorized via
// the schema's ON DELETE SET NULL rule; they are never deleted here.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}
