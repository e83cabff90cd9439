package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// EstimateRepository defines the interface for estimate data operations
type EstimateRepository interface {
	Create(ctx context.Context, estimate *entity.Estimate) error
	Update(ctx context.Context, estimate *entity.Estimate) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Estimate, error)
	List(ctx context.Context, companyID uuid.UUID, params *EstimateFilterParams) ([]entity.Estimate, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error

	ListItems(ctx context.Context, estimateID uuid.UUID) ([]entity.EstimateItem, error)
	// ApplyItems deletes and inserts rows and stores total as the estimate's TotalAmount.
	ApplyItems(ctx context.Context, estimateID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.EstimateItem, total decimal.Decimal) error
}

// EstimateFilterParams contains filtering parameters for estimate queries
type EstimateFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.EstimateStatus
	ClientID   *uuid.UUID
}
