package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
)

// LedgerRow is one payment joined with the client it was billed to.
type LedgerRow struct {
	PaymentID  uuid.UUID
	ClientID   uuid.UUID
	ClientName string
	Amount     decimal.Decimal
	PaidOn     time.Time
}

// StatusCount is the number of invoices in one status.
type StatusCount struct {
	Status enum.InvoiceStatus
	Count  int64
}

// AnalyticsRepository defines the read-only queries behind the dashboard.
// Every query is restricted to one company.
type AnalyticsRepository interface {
	LedgerRows(ctx context.Context, companyID uuid.UUID) ([]LedgerRow, error)
	InvoiceStatusCounts(ctx context.Context, companyID uuid.UUID) ([]StatusCount, error)
}
