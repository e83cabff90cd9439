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
	"github.com/sangkips/invoicer-api/pkg/email"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/optional"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// InvoiceService handles invoice commands. Each command is one transaction.
type InvoiceService struct {
	tx          repository.TxManager
	scope       *TenantScope
	numbers     *DocumentNumberAllocator
	items       *LineItemSetReconciler
	ledger      *PaymentLedger
	invoiceRepo repository.InvoiceRepository
	notifier    InvoiceNotifier
	dashboard   DashboardInvalidator
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	tx repository.TxManager,
	scope *TenantScope,
	numbers *DocumentNumberAllocator,
	items *LineItemSetReconciler,
	ledger *PaymentLedger,
	invoiceRepo repository.InvoiceRepository,
	notifier InvoiceNotifier,
	dashboard DashboardInvalidator,
) *InvoiceService {
	if dashboard == nil {
		dashboard = noopInvalidator{}
	}
	return &InvoiceService{
		tx:          tx,
		scope:       scope,
		numbers:     numbers,
		items:       items,
		ledger:      ledger,
		invoiceRepo: invoiceRepo,
		notifier:    notifier,
		dashboard:   dashboard,
	}
}

// CreateInvoiceInput represents the input for creating an invoice
type CreateInvoiceInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	ClientID    uuid.UUID
	IssueDate   time.Time
	DueDate     time.Time
	Notes       *string
	Items       []LineItemInput
	// Notify sends the "invoice ready" notice after commit. A failed send is
	// logged and does not undo the invoice.
	Notify bool
}

func validateDates(issue, due time.Time) error {
	if issue.IsZero() {
		return apperror.NewFieldError("issue_date", "is required")
	}
	if due.IsZero() {
		return apperror.NewFieldError("due_date", "is required")
	}
	if due.Before(issue) {
		return apperror.NewFieldError("due_date", "must not be before issue_date")
	}
	return nil
}

// CreateInvoice numbers, prices and stores a new invoice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if err := validateDates(input.IssueDate, input.DueDate); err != nil {
		return nil, err
	}

	var company *entity.Company
	var invoice *entity.Invoice
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		company, err = s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
		if err != nil {
			return err
		}
		client, err := s.scope.ClientOf(ctx, company, input.ClientID)
		if err != nil {
			return err
		}
		lines, err := s.items.Price(ctx, company.ID, input.Items)
		if err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, company, enum.DocumentKindInvoice)
		if err != nil {
			return err
		}

		invoice = &entity.Invoice{
			ID:            uuid.New(),
			CompanyID:     company.ID,
			ClientID:      client.ID,
			InvoiceNumber: number,
			IssueDate:     input.IssueDate,
			DueDate:       input.DueDate,
			Notes:         input.Notes,
			Status:        enum.InvoiceStatusUnpaid,
		}
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}
		if err := s.items.ReplaceInvoiceItems(ctx, invoice, lines); err != nil {
			return err
		}
		_, err = s.ledger.Recompute(ctx, invoice)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dashboard.Invalidate(ctx, company.ID)
	logger.Info(ctx, "invoice created",
		"company_id", company.ID,
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber)

	created, err := s.invoiceRepo.GetByID(ctx, company.ID, invoice.ID)
	if err != nil {
		return nil, err
	}
	if input.Notify {
		if err := s.notify(ctx, company, created); err != nil {
			logger.Warn(ctx, "invoice notification failed", "invoice_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// GetInvoice retrieves an invoice with items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, principalID, companyID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	_, invoice, err := s.scope.Invoice(ctx, principalID, companyID, invoiceID)
	return invoice, err
}

// ListInvoicesInput represents the input for listing invoices
type ListInvoicesInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Pagination  *pagination.PaginationParams
	Status      *enum.InvoiceStatus
	ClientID    *uuid.UUID
	SortBy      string
	SortOrder   string
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	invoices, total, err := s.invoiceRepo.List(ctx, company.ID, &repository.InvoiceFilterParams{
		Pagination: input.Pagination,
		Status:     input.Status,
		ClientID:   input.ClientID,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// UpdateInvoiceInput leaves every unset field untouched. A set Items replaces
// the whole line-item set, even when it is empty.
type UpdateInvoiceInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	InvoiceID   uuid.UUID
	ClientID    optional.Optional[uuid.UUID]
	IssueDate   optional.Optional[time.Time]
	DueDate     optional.Optional[time.Time]
	Notes       optional.Optional[*string]
	Items       optional.Optional[[]LineItemInput]
}

// UpdateInvoice updates an invoice. Everything is validated before anything is written.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	var company *entity.Company
	var invoice *entity.Invoice
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		company, invoice, err = s.scope.Invoice(ctx, input.PrincipalID, input.CompanyID, input.InvoiceID)
		if err != nil {
			return err
		}

		if clientID, ok := input.ClientID.Get(); ok {
			client, err := s.scope.ClientOf(ctx, company, clientID)
			if err != nil {
				return err
			}
			invoice.ClientID = client.ID
			invoice.Client = client
		}
		input.IssueDate.ApplyTo(&invoice.IssueDate)
		input.DueDate.ApplyTo(&invoice.DueDate)
		input.Notes.ApplyTo(&invoice.Notes)
		if err := validateDates(invoice.IssueDate, invoice.DueDate); err != nil {
			return err
		}

		var lines []PricedLine
		targets, replace := input.Items.Get()
		if replace {
			lines, err = s.items.Price(ctx, company.ID, targets)
			if err != nil {
				return err
			}
		}

		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}
		if !replace {
			return nil
		}
		if err := s.items.ReplaceInvoiceItems(ctx, invoice, lines); err != nil {
			return err
		}
		_, err = s.ledger.Recompute(ctx, invoice)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dashboard.Invalidate(ctx, company.ID)
	return s.invoiceRepo.GetByID(ctx, company.ID, invoice.ID)
}

// DeleteInvoice deletes an invoice together with its items and payments.
// Its number is not reused.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, principalID, companyID, invoiceID uuid.UUID) error {
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, invoice, err := s.scope.Invoice(ctx, principalID, companyID, invoiceID)
		if err != nil {
			return err
		}
		return s.invoiceRepo.Delete(ctx, company.ID, invoice.ID)
	})
	if err != nil {
		return err
	}

	s.dashboard.Invalidate(ctx, companyID)
	logger.Info(ctx, "invoice deleted", "company_id", companyID, "invoice_id", invoiceID)
	return nil
}

// SendInvoice notifies the invoice's client. Billing state is never touched,
// whatever the outcome.
func (s *InvoiceService) SendInvoice(ctx context.Context, principalID, companyID, invoiceID uuid.UUID) error {
	company, invoice, err := s.scope.Invoice(ctx, principalID, companyID, invoiceID)
	if err != nil {
		return err
	}
	if err := s.notify(ctx, company, invoice); err != nil {
		return apperror.NewNotificationError(err)
	}
	return nil
}

func (s *InvoiceService) notify(ctx context.Context, company *entity.Company, invoice *entity.Invoice) error {
	if s.notifier == nil {
		return nil
	}
	if invoice.Client == nil {
		client, err := s.scope.ClientOf(ctx, company, invoice.ClientID)
		if err != nil {
			return err
		}
		invoice.Client = client
	}

	balance := invoice.TotalDue().Sub(invoice.TotalPaid())
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	notice := email.InvoiceNotice{
		CompanyName:   company.Name,
		ClientName:    invoice.Client.Name,
		InvoiceNumber: invoice.InvoiceNumber,
		AmountDue:     balance.StringFixed(2),
		Currency:      company.Currency,
		DueDate:       invoice.DueDate.Format("2006-01-02"),
	}
	return s.notifier.SendInvoiceReady(invoice.Client.Email, notice)
}
