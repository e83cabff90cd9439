package request

import (
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/optional"
)

type CreateEstimateRequest struct {
	ClientID   string              `json:"client_id" binding:"required,uuid"`
	IssueDate  Date                `json:"issue_date"`
	ExpiryDate *Date               `json:"expiry_date"`
	Notes      *string             `json:"notes"`
	Status     enum.EstimateStatus `json:"status"`
	Items      []LineItemRequest   `json:"items" binding:"dive"`
}

type UpdateEstimateRequest struct {
	ClientID   optional.Optional[string]              `json:"client_id"`
	IssueDate  optional.Optional[Date]                `json:"issue_date"`
	ExpiryDate optional.Optional[Date]                `json:"expiry_date"`
	Notes      optional.Optional[*string]             `json:"notes"`
	Status     optional.Optional[enum.EstimateStatus] `json:"status"`
	Items      optional.Optional[[]LineItemRequest]   `json:"items"`
}

// UpdateEstimateStatusRequest accepts the status name or its number.
type UpdateEstimateStatusRequest struct {
	Status *enum.EstimateStatus `json:"status" binding:"required"`
}

// ConvertEstimateRequest dates the invoice created from an estimate.
type ConvertEstimateRequest struct {
	IssueDate Date `json:"issue_date"`
	DueDate   Date `json:"due_date"`
}
