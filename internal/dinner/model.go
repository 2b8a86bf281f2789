package dinner

import "time"

// Dinner represents one potluck event, publicly identified by its share code
type Dinner struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	HostName    string    `json:"host_name"`
	HostPhone   string    `json:"host_phone"`
	ShareCode   string    `json:"share_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultCategory is one entry of the fixed category set every new dinner starts with
type DefaultCategory struct {
	Name      string
	SortOrder int
}

// DefaultCategories is created alongside every dinner, in this order, with no
// fill quota.
var DefaultCategories = []DefaultCategory{
	{Name: "Appetizers", SortOrder: 0},
	{Name: "Entrées", SortOrder: 1},
	{Name: "Sides", SortOrder: 2},
	{Name: "Desserts", SortOrder: 3},
	{Name: "Drinks", SortOrder: 4},
}
