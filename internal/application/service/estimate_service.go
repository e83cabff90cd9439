package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/optional"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// EstimateService handles estimate commands
type EstimateService struct {
	tx           repository.TxManager
	scope        *TenantScope
	numbers      *DocumentNumberAllocator
	items        *LineItemSetReconciler
	ledger       *PaymentLedger
	estimateRepo repository.EstimateRepository
	invoiceRepo  repository.InvoiceRepository
	dashboard    DashboardInvalidator
}

// NewEstimateService creates a new estimate service
func NewEstimateService(
	tx repository.TxManager,
	scope *TenantScope,
	numbers *DocumentNumberAllocator,
	items *LineItemSetReconciler,
	ledger *PaymentLedger,
	estimateRepo repository.EstimateRepository,
	invoiceRepo repository.InvoiceRepository,
	dashboard DashboardInvalidator,
) *EstimateService {
	if dashboard == nil {
		dashboard = noopInvalidator{}
	}
	return &EstimateService{
		tx:           tx,
		scope:        scope,
		numbers:      numbers,
		items:        items,
		ledger:       ledger,
		estimateRepo: estimateRepo,
		invoiceRepo:  invoiceRepo,
		dashboard:    dashboard,
	}
}

// CreateEstimateInput represents the input for creating an estimate
type CreateEstimateInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	ClientID    uuid.UUID
	IssueDate   time.Time
	ExpiryDate  *time.Time
	Notes       *string
	Status      enum.EstimateStatus
	Items       []LineItemInput
}

func validateEstimateDates(issue time.Time, expiry *time.Time) error {
	if issue.IsZero() {
		return apperror.NewFieldError("issue_date", "is required")
	}
	if expiry != nil && expiry.Before(issue) {
		return apperror.NewFieldError("expiry_date", "must not be before issue_date")
	}
	return nil
}

// CreateEstimate numbers, prices and stores a new estimate.
func (s *EstimateService) CreateEstimate(ctx context.Context, input *CreateEstimateInput) (*entity.Estimate, error) {
	if err := validateEstimateDates(input.IssueDate, input.ExpiryDate); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, apperror.NewFieldError("status", "is not a valid estimate status")
	}

	var company *entity.Company
	var estimate *entity.Estimate
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

		number, err := s.numbers.Next(ctx, company, enum.DocumentKindEstimate)
		if err != nil {
			return err
		}

		estimate = &entity.Estimate{
			ID:             uuid.New(),
			CompanyID:      company.ID,
			ClientID:       client.ID,
			EstimateNumber: number,
			IssueDate:      input.IssueDate,
			ExpiryDate:     input.ExpiryDate,
			Notes:          input.Notes,
			Status:         input.Status,
		}
		if err := s.estimateRepo.Create(ctx, estimate); err != nil {
			return err
		}
		_, err = s.items.ReplaceEstimateItems(ctx, estimate, lines)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "estimate created",
		"company_id", company.ID,
		"estimate_id", estimate.ID,
		"estimate_number", estimate.EstimateNumber)

	return s.estimateRepo.GetByID(ctx, company.ID, estimate.ID)
}

// GetEstimate retrieves an estimate with its items
func (s *EstimateService) GetEstimate(ctx context.Context, principalID, companyID, estimateID uuid.UUID) (*entity.Estimate, error) {
	_, estimate, err := s.scope.Estimate(ctx, principalID, companyID, estimateID)
	return estimate, err
}

// ListEstimatesInput represents the input for listing estimates
type ListEstimatesInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Pagination  *pagination.PaginationParams
	Status      *enum.EstimateStatus
	ClientID    *uuid.UUID
}

// ListEstimates lists estimates with filtering
func (s *EstimateService) ListEstimates(ctx context.Context, input *ListEstimatesInput) (*pagination.PaginatedResult[entity.Estimate], error) {
	company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	estimates, total, err := s.estimateRepo.List(ctx, company.ID, &repository.EstimateFilterParams{
		Pagination: input.Pagination,
		Status:     input.Status,
		ClientID:   input.ClientID,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(estimates, pag), nil
}

// UpdateEstimateInput leaves every unset field untouched. A set Items replaces
// the whole line-item set and re-snapshots prices.
type UpdateEstimateInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	EstimateID  uuid.UUID
	ClientID    optional.Optional[uuid.UUID]
	IssueDate   optional.Optional[time.Time]
	ExpiryDate  optional.Optional[*time.Time]
	Notes       optional.Optional[*string]
	Status      optional.Optional[enum.EstimateStatus]
	Items       optional.Optional[[]LineItemInput]
}

// UpdateEstimate updates an estimate
func (s *EstimateService) UpdateEstimate(ctx context.Context, input *UpdateEstimateInput) (*entity.Estimate, error) {
	var company *entity.Company
	var estimate *entity.Estimate
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		company, estimate, err = s.scope.Estimate(ctx, input.PrincipalID, input.CompanyID, input.EstimateID)
		if err != nil {
			return err
		}

		if clientID, ok := input.ClientID.Get(); ok {
			client, err := s.scope.ClientOf(ctx, company, clientID)
			if err != nil {
				return err
			}
			estimate.ClientID = client.ID
			estimate.Client = client
		}
		if status, ok := input.Status.Get(); ok {
			if !status.Valid() {
				return apperror.NewFieldError("status", "is not a valid estimate status")
			}
			estimate.Status = status
		}
		input.IssueDate.ApplyTo(&estimate.IssueDate)
		input.ExpiryDate.ApplyTo(&estimate.ExpiryDate)
		input.Notes.ApplyTo(&estimate.Notes)
		if err := validateEstimateDates(estimate.IssueDate, estimate.ExpiryDate); err != nil {
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

		if err := s.estimateRepo.Update(ctx, estimate); err != nil {
			return err
		}
		if replace {
			_, err = s.items.ReplaceEstimateItems(ctx, estimate, lines)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.estimateRepo.GetByID(ctx, company.ID, estimate.ID)
}

// UpdateEstimateStatus sets the caller-chosen status of an estimate
func (s *EstimateService) UpdateEstimateStatus(ctx context.Context, principalID, companyID, estimateID uuid.UUID, status enum.EstimateStatus) (*entity.Estimate, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldError("status", "is not a valid estimate status")
	}

	var estimate *entity.Estimate
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		_, estimate, err = s.scope.Estimate(ctx, principalID, companyID, estimateID)
		if err != nil {
			return err
		}
		if err := s.estimateRepo.UpdateStatus(ctx, estimate.ID, status); err != nil {
			return err
		}
		estimate.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

// DeleteEstimate deletes an estimate and its items. Its number is not reused.
func (s *EstimateService) DeleteEstimate(ctx context.Context, principalID, companyID, estimateID uuid.UUID) error {
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, estimate, err := s.scope.Estimate(ctx, principalID, companyID, estimateID)
		if err != nil {
			return err
		}
		return s.estimateRepo.Delete(ctx, company.ID, estimate.ID)
	})
}

// ConvertEstimateInput represents the input for turning an estimate into an invoice
type ConvertEstimateInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	EstimateID  uuid.UUID
	IssueDate   time.Time
	DueDate     time.Time
}

// ConvertToInvoice creates a new invoice for the estimate's client holding the
// estimate's (product, quantity) pairs. Invoice lines read live product
// prices, so the invoice total can differ from the estimate's snapshot.
// The estimate itself is left as is.
func (s *EstimateService) ConvertToInvoice(ctx context.Context, input *ConvertEstimateInput) (*entity.Invoice, error) {
	if err := validateDates(input.IssueDate, input.DueDate); err != nil {
		return nil, err
	}

	var company *entity.Company
	var invoice *entity.Invoice
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var (
			estimate *entity.Estimate
			err      error
		)
		company, estimate, err = s.scope.Estimate(ctx, input.PrincipalID, input.CompanyID, input.EstimateID)
		if err != nil {
			return err
		}

		targets := make([]LineItemInput, 0, len(estimate.Items))
		for _, it := range estimate.Items {
			targets = append(targets, LineItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		lines, err := s.items.Price(ctx, company.ID, targets)
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
			ClientID:      estimate.ClientID,
			InvoiceNumber: number,
			IssueDate:     input.IssueDate,
			DueDate:       input.DueDate,
			Notes:         estimate.Notes,
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
	logger.Info(ctx, "estimate converted",
		"company_id", company.ID,
		"estimate_id", input.EstimateID,
		"invoice_number", invoice.InvoiceNumber)

	return s.invoiceRepo.GetByID(ctx, company.ID, invoice.ID)
}
