package request

import "github.com/sangkips/invoicer-api/pkg/optional"

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Email   string  `json:"email" binding:"required"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	Name    optional.Optional[string]  `json:"name"`
	Email   optional.Optional[string]  `json:"email"`
	Phone   optional.Optional[*string] `json:"phone"`
	Address optional.Optional[*string] `json:"address"`
}
