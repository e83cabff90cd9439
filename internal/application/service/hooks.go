package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/pkg/email"
)

// DashboardInvalidator is told after a commit that changed billing figures.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, companyID uuid.UUID)
}

// InvoiceNotifier delivers "invoice ready" notices. It is only called after
// the invoice is committed.
type InvoiceNotifier interface {
	SendInvoiceReady(to string, notice email.InvoiceNotice) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uuid.UUID) {}
