package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// TenantScope resolves a principal to entities it owns. Commands only mutate
// what came back from here, never something re-fetched by a raw id.
//
// A company owned by someone else is reported exactly like a missing one,
// and the same holds for every nested entity.
type TenantScope struct {
	userRepo     repository.UserRepository
	companyRepo  repository.CompanyRepository
	clientRepo   repository.ClientRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	estimateRepo repository.EstimateRepository
	paymentRepo  repository.PaymentRepository
}

// NewTenantScope creates a new tenant scope resolver
func NewTenantScope(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	estimateRepo repository.EstimateRepository,
	paymentRepo repository.PaymentRepository,
) *TenantScope {
	return &TenantScope{
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		clientRepo:   clientRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		estimateRepo: estimateRepo,
		paymentRepo:  paymentRepo,
	}
}

// User resolves the principal.
func (s *TenantScope) User(ctx context.Context, principalID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}
	return user, nil
}

// Company resolves principal, then a company it owns.
func (s *TenantScope) Company(ctx context.Context, principalID, companyID uuid.UUID) (*entity.Company, error) {
	user, err := s.User(ctx, principalID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByOwner(ctx, user.ID, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.ErrCompanyNotFound
	}
	return company, nil
}

// ClientOf returns a client of an already resolved company.
func (s *TenantScope) ClientOf(ctx context.Context, company *entity.Company, clientID uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, company.ID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.ErrClientNotFound
	}
	return client, nil
}

// ProductOf returns a product of an already resolved company.
func (s *TenantScope) ProductOf(ctx context.Context, company *entity.Company, productID uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, company.ID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.ErrProductNotFound
	}
	return product, nil
}

// InvoiceOf returns a fully loaded invoice of an already resolved company.
func (s *TenantScope) InvoiceOf(ctx context.Context, company *entity.Company, invoiceID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, company.ID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.ErrInvoiceNotFound
	}
	return invoice, nil
}

// EstimateOf returns a fully loaded estimate of an already resolved company.
func (s *TenantScope) EstimateOf(ctx context.Context, company *entity.Company, estimateID uuid.UUID) (*entity.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, company.ID, estimateID)
	if err != nil {
		return nil, err
	}
	if estimate == nil {
		return nil, apperror.ErrEstimateNotFound
	}
	return estimate, nil
}

// PaymentOf returns a payment that belongs to invoice.
func (s *TenantScope) PaymentOf(ctx context.Context, invoice *entity.Invoice, paymentID uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, invoice.ID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.CompanyID != invoice.CompanyID {
		return nil, apperror.ErrPaymentNotFound
	}
	return payment, nil
}

// Client resolves principal, company and client in that order.
func (s *TenantScope) Client(ctx context.Context, principalID, companyID, clientID uuid.UUID) (*entity.Company, *entity.Client, error) {
	company, err := s.Company(ctx, principalID, companyID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.ClientOf(ctx, company, clientID)
	if err != nil {
		return nil, nil, err
	}
	return company, client, nil
}

// Product resolves principal, company and product in that order.
func (s *TenantScope) Product(ctx context.Context, principalID, companyID, productID uuid.UUID) (*entity.Company, *entity.Product, error) {
	company, err := s.Company(ctx, principalID, companyID)
	if err != nil {
		return nil, nil, err
	}
	product, err := s.ProductOf(ctx, company, productID)
	if err != nil {
		return nil, nil, err
	}
	return company, product, nil
}

// Invoice resolves principal, company and invoice in that order.
func (s *TenantScope) Invoice(ctx context.Context, principalID, companyID, invoiceID uuid.UUID) (*entity.Company, *entity.Invoice, error) {
	company, err := s.Company(ctx, principalID, companyID)
	if err != nil {
		return nil, nil, err
	}
	invoice, err := s.InvoiceOf(ctx, company, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return company, invoice, nil
}

// Estimate resolves principal, company and estimate in that order.
func (s *TenantScope) Estimate(ctx context.Context, principalID, companyID, estimateID uuid.UUID) (*entity.Company, *entity.Estimate, error) {
	company, err := s.Company(ctx, principalID, companyID)
	if err != nil {
		return nil, nil, err
	}
	estimate, err := s.EstimateOf(ctx, company, estimateID)
	if err != nil {
		return nil, nil, err
	}
	return company, estimate, nil
}
