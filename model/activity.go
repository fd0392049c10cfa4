package model

import "time"

type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Item      string    `json:"description"`
	CreatedAt time.Time `json:"date"`
}

// ActivityFilter narrows the admin activity log; zero values mean no filter.
type ActivityFilter struct {
	Action string
	Date   *time.Time
}

// LogActions are the action labels the admin UI filters by.
var LogActions = []string{"Approved", "Declined", "Purchased", "Borrowed", "Return_pending", "Returned", "Pending"}
