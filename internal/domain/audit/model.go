package audit

import "time"

// Entry is one append-only audit record. UserID is the acting user, or the
// appointment id for appointment changes.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Filter narrows GetLogs. Zero values are ignored.
type Filter struct {
	UserID int64
	// Action matches case-insensitively anywhere in the action text.
	Action string
	// Date is a YYYY-MM-DD day in UTC.
	Date string
}
