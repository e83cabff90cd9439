package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/optional"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// ProductService handles product-related operations
type ProductService struct {
	tx          repository.TxManager
	scope       *TenantScope
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(tx repository.TxManager, scope *TenantScope, productRepo repository.ProductRepository) *ProductService {
	return &ProductService{tx: tx, scope: scope, productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Name        string
	Description *string
	Price       decimal.Decimal
}

func validatePrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Zero, apperror.NewFieldError("price", "cannot be negative")
	}
	return p.Round(2), nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	price, err := validatePrice(input.Price)
	if err != nil {
		return nil, err
	}

	var product *entity.Product
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
		if err != nil {
			return err
		}
		product = &entity.Product{
			ID:          uuid.New(),
			CompanyID:   company.ID,
			Name:        name,
			Description: input.Description,
			Price:       price,
		}
		return s.productRepo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, principalID, companyID, productID uuid.UUID) (*entity.Product, error) {
	_, product, err := s.scope.Product(ctx, principalID, companyID, productID)
	return product, err
}

// ListProductsInput represents the input for listing products
type ListProductsInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Pagination  *pagination.PaginationParams
	Search      string
}

// ListProducts lists a company's products
func (s *ProductService) ListProducts(ctx context.Context, input *ListProductsInput) (*pagination.PaginatedResult[entity.Product], error) {
	company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	products, total, err := s.productRepo.List(ctx, company.ID, &repository.ProductFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput leaves every unset field untouched.
type UpdateProductInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	ProductID   uuid.UUID
	Name        optional.Optional[string]
	Description optional.Optional[*string]
	Price       optional.Optional[decimal.Decimal]
}

// UpdateProduct updates a product. A new price flows into invoice totals on
// the next read but never into existing estimate rows.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	var product *entity.Product
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		_, product, err = s.scope.Product(ctx, input.PrincipalID, input.CompanyID, input.ProductID)
		if err != nil {
			return err
		}

		if name, ok := input.Name.Get(); ok {
			if strings.TrimSpace(name) == "" {
				return apperror.NewFieldError("name", "cannot be empty")
			}
			product.Name = strings.TrimSpace(name)
		}
		if p, ok := input.Price.Get(); ok {
			price, err := validatePrice(p)
			if err != nil {
				return err
			}
			product.Price = price
		}
		input.Description.ApplyTo(&product.Description)

		return s.productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product that no line item references
func (s *ProductService) DeleteProduct(ctx context.Context, principalID, companyID, productID uuid.UUID) error {
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, product, err := s.scope.Product(ctx, principalID, companyID, productID)
		if err != nil {
			return err
		}
		return s.productRepo.Delete(ctx, company.ID, product.ID)
	})
	if errors.Is(err, repository.ErrReferenced) {
		return apperror.ErrConflict.WithCause(err)
	}
	return err
}
