package request

import "github.com/sangkips/invoicer-api/pkg/optional"

type CreateInvoiceRequest struct {
	ClientID  string            `json:"client_id" binding:"required,uuid"`
	IssueDate Date              `json:"issue_date"`
	DueDate   Date              `json:"due_date"`
	Notes     *string           `json:"notes"`
	Items     []LineItemRequest `json:"items" binding:"dive"`
	Notify    bool              `json:"notify"`
}

// UpdateInvoiceRequest replaces the line items only when "items" is present;
// an empty list clears them.
type UpdateInvoiceRequest struct {
	ClientID  optional.Optional[string]            `json:"client_id"`
	IssueDate optional.Optional[Date]              `json:"issue_date"`
	DueDate   optional.Optional[Date]              `json:"due_date"`
	Notes     optional.Optional[*string]           `json:"notes"`
	Items     optional.Optional[[]LineItemRequest] `json:"items"`
}
