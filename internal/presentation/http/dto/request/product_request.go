package request

import (
	"github.com/sangkips/invoicer-api/pkg/optional"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request. Price accepts a
// JSON number or a decimal string.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name        optional.Optional[string]          `json:"name"`
	Description optional.Optional[*string]         `json:"description"`
	Price       optional.Optional[decimal.Decimal] `json:"price"`
}
