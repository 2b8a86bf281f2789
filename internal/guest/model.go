package guest

import "time"

// Guest represents a participant in a dinner. The host is a guest with the
// host flag set, created together with the dinner. The session token binds
// one browser/device to this record and is never exposed in guest lists.
type Guest struct {
	ID           string    `json:"id"`
	DinnerID     string    `json:"dinner_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	IsHost       bool      `json:"is_host"`
	SessionToken string    `json:"-"`
	RsvpAt       time.Time `json:"rsvp_at"`
}
