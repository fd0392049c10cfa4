package model

import (
	"fmt"
	"strings"
	"time"
)

type RequestAction string

const (
	ActionPurchase RequestAction = "purchase"
	ActionBorrow   RequestAction = "borrow"
)

func ParseRequestAction(s string) (RequestAction, error) {
	switch RequestAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionPurchase:
		return ActionPurchase, nil
	case ActionBorrow, "":
		return ActionBorrow, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// CartType is the cart an approved request of this action lands in.
func (a RequestAction) CartType() CartType {
	if a == ActionPurchase {
		return CartPurchase
	}
	return CartLending
}

type RequestStatus string

const (
	RequestPending       RequestStatus = "pending"
	RequestApproved      RequestStatus = "approved"
	RequestDeclined      RequestStatus = "declined"
	RequestPurchased     RequestStatus = "purchased"
	RequestBorrowed      RequestStatus = "borrowed"
	RequestReturnPending RequestStatus = "return_pending"
	RequestReturned      RequestStatus = "returned"
)

// ParseRequestStatus accepts the verb forms admins tend to send as well.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return RequestPending, nil
	case "approve", "approved":
		return RequestApproved, nil
	case "decline", "declined":
		return RequestDeclined, nil
	case "purchase", "purchased":
		return RequestPurchased, nil
	case "borrow", "borrowed":
		return RequestBorrowed, nil
	case "return_pending":
		return RequestReturnPending, nil
	case "returned":
		return RequestReturned, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

type PendingRequest struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	BookID    int64         `json:"book_id"`
	Action    RequestAction `json:"action"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// RequestRow is a listing row joined with its book and requester.
type RequestRow struct {
	PendingRequest
	UserName string      `json:"user"`
	Book     BookSummary `json:"book"`
}

type BookSummary struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  string `json:"price"`
}
