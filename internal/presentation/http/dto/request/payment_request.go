package request

import "github.com/shopspring/decimal"

// RecordPaymentRequest appends one payment to an invoice's ledger.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidOn Date            `json:"paid_on"`
	Notes  *string         `json:"notes" binding:"omitempty,max=1000"`
}
