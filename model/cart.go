package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CartType string

const (
	CartPurchase CartType = "purchase"
	CartLending  CartType = "lending"
)

func ParseCartType(s string) (CartType, error) {
	switch CartType(s) {
	case CartPurchase, CartLending:
		return CartType(s), nil
	default:
		return "", fmt.Errorf("unknown cart type %q", s)
	}
}

type Cart struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Type       CartType   `json:"cart_type"`
	CheckedOut bool       `json:"checked_out"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []CartItem `json:"items"`
}

type CartItem struct {
	ID       int64           `json:"id"`
	CartID   int64           `json:"cart_id"`
	BookID   int64           `json:"book_id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}
