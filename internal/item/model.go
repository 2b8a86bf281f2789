package item

import "time"

// Item is a contribution a guest is bringing, optionally categorized and
// tagged. A nil CategoryID means uncategorized.
type Item struct {
	ID          string    `json:"id"`
	DinnerID    string    `json:"dinner_id"`
	GuestID     string    `json:"guest_id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DietaryTags []string  `json:"dietary_tags"`
}

// GroupByCategory partitions items into per-category lists plus the
// uncategorized remainder, preserving input order. Every item lands in
// exactly one bucket.
func GroupByCategory(items []*Item) (byCategory map[string][]*Item, uncategorized []*Item) {
	byCategory = make(map[string][]*Item)
	for _, it := range items {
		if it.CategoryID == nil {
			uncategorized = append(uncategorized, it)
			continue
		}
		byCategory[*it.CategoryID] = append(byCategory[*it.CategoryID], it)
	}
	return byCategory, uncategorized
}
