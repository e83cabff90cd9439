package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/metrics"
	"github.com/sangkips/invoicer-api/pkg/logger"
)

// PaymentService exposes the payment ledger as tenant-scoped commands
type PaymentService struct {
	tx        repository.TxManager
	scope     *TenantScope
	ledger    *PaymentLedger
	dashboard DashboardInvalidator
}

// NewPaymentService creates a new payment service
func NewPaymentService(tx repository.TxManager, scope *TenantScope, ledger *PaymentLedger, dashboard DashboardInvalidator) *PaymentService {
	if dashboard == nil {
		dashboard = noopInvalidator{}
	}
	return &PaymentService{tx: tx, scope: scope, ledger: ledger, dashboard: dashboard}
}

// LedgerState is an invoice's ledger after a command.
type LedgerState struct {
	Payment   *entity.Payment    `json:"payment,omitempty"`
	Status    enum.InvoiceStatus `json:"status"`
	TotalDue  decimal.Decimal    `json:"total_due"`
	TotalPaid decimal.Decimal    `json:"total_paid"`
	Balance   decimal.Decimal    `json:"balance"`
}

func ledgerState(invoice *entity.Invoice, payment *entity.Payment) *LedgerState {
	due, paid := invoice.TotalDue(), invoice.TotalPaid()
	return &LedgerState{
		Payment:   payment,
		Status:    invoice.Status,
		TotalDue:  due,
		TotalPaid: paid,
		Balance:   due.Sub(paid),
	}
}

// RecordPaymentInput represents the input for recording a payment
type RecordPaymentInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	InvoiceID   uuid.UUID
	PaymentInput
}

// RecordPayment appends a payment and re-derives the invoice status
func (s *PaymentService) RecordPayment(ctx context.Context, input *RecordPaymentInput) (*LedgerState, error) {
	var state *LedgerState
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		_, invoice, err := s.scope.Invoice(ctx, input.PrincipalID, input.CompanyID, input.InvoiceID)
		if err != nil {
			return err
		}
		payment, err := s.ledger.RecordPayment(ctx, invoice, input.PaymentInput)
		if err != nil {
			return err
		}
		state = ledgerState(invoice, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.Inc()
	s.dashboard.Invalidate(ctx, input.CompanyID)
	logger.Info(ctx, "payment recorded",
		"invoice_id", input.InvoiceID,
		"payment_id", state.Payment.ID,
		"status", state.Status.String())
	return state, nil
}

// DeletePayment removes a payment and re-derives the invoice status
func (s *PaymentService) DeletePayment(ctx context.Context, principalID, companyID, invoiceID, paymentID uuid.UUID) (*LedgerState, error) {
	var state *LedgerState
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		_, invoice, err := s.scope.Invoice(ctx, principalID, companyID, invoiceID)
		if err != nil {
			return err
		}
		if err := s.ledger.DeletePayment(ctx, invoice, paymentID); err != nil {
			return err
		}
		state = ledgerState(invoice, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsDeleted.Inc()
	s.dashboard.Invalidate(ctx, companyID)
	logger.Info(ctx, "payment deleted",
		"invoice_id", invoiceID,
		"payment_id", paymentID,
		"status", state.Status.String())
	return state, nil
}

// ListPayments returns an invoice's ledger, oldest first
func (s *PaymentService) ListPayments(ctx context.Context, principalID, companyID, invoiceID uuid.UUID) ([]entity.Payment, error) {
	_, invoice, err := s.scope.Invoice(ctx, principalID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	return invoice.Payments, nil
}
