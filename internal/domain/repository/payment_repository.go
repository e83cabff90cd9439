package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
)

// PaymentRepository defines the interface for payment ledger rows
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GetByID only finds a payment that belongs to invoiceID.
	GetByID(ctx context.Context, invoiceID, id uuid.UUID) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}
