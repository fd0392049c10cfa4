package book

import "github.com/shopspring/decimal"

type CreateBookReq struct {
	Title                 string          `json:"title" validate:"required"`
	Author                string          `json:"author" validate:"required"`
	Genre                 string          `json:"genre"`
	Description           string          `json:"description"`
	Price                 decimal.Decimal `json:"price"`
	IsAvailableForSale    *bool           `json:"is_available_for_sale"`
	IsAvailableForLending *bool           `json:"is_available_for_lending"`
	CopiesAvailable       int64           `json:"copies_available" validate:"gte=0"`
}

type UpdateBookReq struct {
	Title                 *string          `json:"title"`
	Author                *string          `json:"author"`
	Genre                 *string          `json:"genre"`
	Description           *string          `json:"description"`
	Price                 *decimal.Decimal `json:"price"`
	IsAvailableForSale    *bool            `json:"is_available_for_sale"`
	IsAvailableForLending *bool            `json:"is_available_for_lending"`
	CopiesAvailable       *int64           `json:"copies_available" validate:"omitempty,gte=0"`
}

type AdjustCopiesReq struct {
	Delta int64 `json:"delta" validate:"required"`
}
