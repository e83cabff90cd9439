package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// ComputeStatus derives an invoice's status from its totals.
// Nothing paid is Unpaid, paying at least the due amount is Paid (so a
// zero-due invoice with any payment is Paid), anything between is Partial.
func ComputeStatus(totalDue, totalPaid decimal.Decimal) enum.InvoiceStatus {
	switch {
	case totalPaid.LessThanOrEqual(decimal.Zero):
		return enum.InvoiceStatusUnpaid
	case totalPaid.GreaterThanOrEqual(totalDue):
		return enum.InvoiceStatusPaid
	default:
		return enum.InvoiceStatusPartial
	}
}

// PaymentInput is a payment to append to a ledger.
type PaymentInput struct {
	Amount decimal.Decimal
	PaidOn time.Time
	Notes  *string
}

// PaymentLedger appends and removes payments and keeps Invoice.Status equal
// to ComputeStatus over the stored rows. It must run inside a transaction.
type PaymentLedger struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	productRepo repository.ProductRepository
}

// NewPaymentLedger creates a new payment ledger
func NewPaymentLedger(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
) *PaymentLedger {
	return &PaymentLedger{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		productRepo: productRepo,
	}
}

// RecordPayment appends a payment. Amounts above the balance are accepted.
func (l *PaymentLedger) RecordPayment(ctx context.Context, invoice *entity.Invoice, input PaymentInput) (*entity.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "must be greater than zero")
	}
	if input.PaidOn.IsZero() {
		return nil, apperror.NewFieldError("paid_on", "is required")
	}

	payment := &entity.Payment{
		ID:        uuid.New(),
		InvoiceID: invoice.ID,
		CompanyID: invoice.CompanyID,
		Amount:    input.Amount,
		PaidOn:    input.PaidOn,
		Notes:     input.Notes,
	}
	if err := l.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if _, err := l.Recompute(ctx, invoice); err != nil {
		return nil, err
	}
	return payment, nil
}

// DeletePayment removes a payment of this invoice and recomputes the status
// over what is left.
func (l *PaymentLedger) DeletePayment(ctx context.Context, invoice *entity.Invoice, paymentID uuid.UUID) error {
	payment, err := l.paymentRepo.GetByID(ctx, invoice.ID, paymentID)
	if err != nil {
		return err
	}
	if payment == nil || payment.CompanyID != invoice.CompanyID {
		return apperror.ErrPaymentNotFound
	}

	if err := l.paymentRepo.Delete(ctx, payment.ID); err != nil {
		return err
	}

	_, err = l.Recompute(ctx, invoice)
	return err
}

// Recompute reloads items and payments from the store, derives the status
// from scratch and persists it. invoice is refreshed in place.
func (l *PaymentLedger) Recompute(ctx context.Context, invoice *entity.Invoice) (enum.InvoiceStatus, error) {
	items, err := l.invoiceRepo.ListItems(ctx, invoice.ID)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := l.productRepo.GetByIDs(ctx, invoice.CompanyID, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}

	payments, err := l.paymentRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return 0, err
	}

	invoice.Items = items
	invoice.Payments = payments
	status := ComputeStatus(invoice.TotalDue(), invoice.TotalPaid())

	if err := l.invoiceRepo.UpdateStatus(ctx, invoice.ID, status); err != nil {
		return 0, err
	}
	invoice.Status = status
	return status, nil
}
