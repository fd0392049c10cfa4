package model

import "time"

type LendingStatus string

const (
	LendingPending  LendingStatus = "pending"
	LendingBorrowed LendingStatus = "borrowed"
	LendingRejected LendingStatus = "rejected"
	LendingReturned LendingStatus = "returned"
)

type LendingRequest struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	CartID     int64         `json:"cart_id"`
	BookID     int64         `json:"book_id"`
	BookTitle  string        `json:"title,omitempty"`
	Status     LendingStatus `json:"status"`
	ApprovedBy *int64        `json:"approved_by,omitempty"`
	ApprovedAt *time.Time    `json:"approved_at,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	ReturnedAt *time.Time    `json:"returned_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

type ReturnRequest struct {
	ID          int64        `json:"id"`
	LendingID   int64        `json:"lending_id"`
	UserID      int64        `json:"user_id"`
	BookID      int64        `json:"book_id"`
	Status      ReturnStatus `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
	ProcessedBy *int64       `json:"processed_by,omitempty"`
}
