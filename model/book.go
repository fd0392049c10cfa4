package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID                    int64           `json:"id"`
	Title                 string          `json:"title"`
	Author                string          `json:"author"`
	Genre                 string          `json:"genre"`
	Description           string          `json:"description"`
	Price                 decimal.Decimal `json:"price"`
	IsAvailableForSale    bool            `json:"is_available_for_sale"`
	IsAvailableForLending bool            `json:"is_available_for_lending"`
	CopiesAvailable       int64           `json:"copies_available"`
	UploadedBy            *int64          `json:"uploaded_by,omitempty"`
	UploadedAt            time.Time       `json:"uploaded_at"`
	UpdatedAt             *time.Time      `json:"updated_at,omitempty"`
}

// AvailableFor reports whether the book may be placed in a cart of type t.
func (b Book) AvailableFor(t CartType) bool {
	switch t {
	case CartPurchase:
		return b.IsAvailableForSale
	case CartLending:
		return b.IsAvailableForLending
	default:
		return false
	}
}

// BookFilter narrows the public catalogue listing.
type BookFilter struct {
	Search     string
	Genre      string
	ForSale    *bool
	ForLending *bool
	Page       int
	PerPage    int
}

// BookPatch carries the fields an admin update may touch; nil means unchanged.
type BookPatch struct {
	Title                 *string
	Author                *string
	Genre                 *string
	Description           *string
	Price                 *decimal.Decimal
	IsAvailableForSale    *bool
	IsAvailableForLending *bool
	CopiesAvailable       *int64
}

type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
}

func NewPage[T any](items []T, total int64, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{Items: items, Total: total, Page: page, Pages: pages, PerPage: perPage}
}
