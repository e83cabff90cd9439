package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/optional"
)

// CompanyService handles company-related operations
type CompanyService struct {
	tx          repository.TxManager
	scope       *TenantScope
	companyRepo repository.CompanyRepository
}

// NewCompanyService creates a new company service
func NewCompanyService(tx repository.TxManager, scope *TenantScope, companyRepo repository.CompanyRepository) *CompanyService {
	return &CompanyService{tx: tx, scope: scope, companyRepo: companyRepo}
}

// CreateCompanyInput represents the input for creating a company
type CreateCompanyInput struct {
	PrincipalID uuid.UUID
	Name        string
	Email       *string
	Phone       *string
	Address     *string
	TaxNumber   *string
	Currency    string
}

// CreateCompany creates a company owned by the principal with both counters at zero.
func (s *CompanyService) CreateCompany(ctx context.Context, input *CreateCompanyInput) (*entity.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, apperror.NewFieldError("currency", "must be a 3-letter code")
	}

	var company *entity.Company
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.scope.User(ctx, input.PrincipalID)
		if err != nil {
			return err
		}
		company = &entity.Company{
			ID:        uuid.New(),
			UserID:    user.ID,
			Name:      name,
			Email:     input.Email,
			Phone:     input.Phone,
			Address:   input.Address,
			TaxNumber: input.TaxNumber,
			Currency:  currency,
		}
		return s.companyRepo.Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "company created", "company_id", company.ID)
	return company, nil
}

// GetCompany retrieves a company the principal owns
func (s *CompanyService) GetCompany(ctx context.Context, principalID, companyID uuid.UUID) (*entity.Company, error) {
	return s.scope.Company(ctx, principalID, companyID)
}

// ListCompanies lists the principal's companies
func (s *CompanyService) ListCompanies(ctx context.Context, principalID uuid.UUID) ([]entity.Company, error) {
	user, err := s.scope.User(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.ListByOwner(ctx, user.ID)
}

// UpdateCompanyInput leaves every unset field untouched.
type UpdateCompanyInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Name        optional.Optional[string]
	Email       optional.Optional[*string]
	Phone       optional.Optional[*string]
	Address     optional.Optional[*string]
	TaxNumber   optional.Optional[*string]
	Currency    optional.Optional[string]
}

// UpdateCompany updates the billing fields of a company. Counters are not editable.
func (s *CompanyService) UpdateCompany(ctx context.Context, input *UpdateCompanyInput) (*entity.Company, error) {
	var company *entity.Company
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		company, err = s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
		if err != nil {
			return err
		}

		if name, ok := input.Name.Get(); ok {
			if strings.TrimSpace(name) == "" {
				return apperror.NewFieldError("name", "cannot be empty")
			}
			company.Name = strings.TrimSpace(name)
		}
		if cur, ok := input.Currency.Get(); ok {
			cur = strings.ToUpper(strings.TrimSpace(cur))
			if len(cur) != 3 {
				return apperror.NewFieldError("currency", "must be a 3-letter code")
			}
			company.Currency = cur
		}
		input.Email.ApplyTo(&company.Email)
		input.Phone.ApplyTo(&company.Phone)
		input.Address.ApplyTo(&company.Address)
		input.TaxNumber.ApplyTo(&company.TaxNumber)

		return s.companyRepo.Update(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}
