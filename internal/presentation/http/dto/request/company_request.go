package request

import "github.com/sangkips/invoicer-api/pkg/optional"

type CreateCompanyRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Address   *string `json:"address"`
	TaxNumber *string `json:"tax_number" binding:"omitempty,max=100"`
	Currency  string  `json:"currency"`
}

// UpdateCompanyRequest only touches the fields present in the body.
type UpdateCompanyRequest struct {
	Name      optional.Optional[string]  `json:"name"`
	Email     optional.Optional[*string] `json:"email"`
	Phone     optional.Optional[*string] `json:"phone"`
	Address   optional.Optional[*string] `json:"address"`
	TaxNumber optional.Optional[*string] `json:"tax_number"`
	Currency  optional.Optional[string]  `json:"currency"`
}
