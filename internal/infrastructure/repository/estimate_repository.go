package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type estimateRepository struct {
	db *gorm.DB
}

// NewEstimateRepository creates a new estimate repository
func NewEstimateRepository(db *gorm.DB) domainRepo.EstimateRepository {
	return &estimateRepository{db: db}
}

func (r *estimateRepository) Create(ctx context.Context, estimate *entity.Estimate) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(estimate).Error)
}

func (r *estimateRepository) Update(ctx context.Context, estimate *entity.Estimate) error {
	return conn(ctx, r.db).Model(estimate).
		Omit(clause.Associations).
		Select("client_id", "issue_date", "expiry_date", "notes", "status").
		Updates(estimate).Error
}

func (r *estimateRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("estimate_id = ?", id).Delete(&entity.EstimateItem{}).Error; err != nil {
		return err
	}
	return db.Scopes(CompanyScope(companyID)).Delete(&entity.Estimate{}, "id = ?", id).Error
}

func (r *estimateRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Estimate, error) {
	var estimate entity.Estimate
	err := conn(ctx, r.db).Scopes(CompanyScope(companyID)).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&estimate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &estimate, err
}

func (r *estimateRepository) List(ctx context.Context, companyID uuid.UUID, params *domainRepo.EstimateFilterParams) ([]entity.Estimate, int64, error) {
	var estimates []entity.Estimate
	var total int64

	query := conn(ctx, r.db).Model(&entity.Estimate{}).Scopes(CompanyScope(companyID))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Client").
		Order("created_at DESC").
		Find(&estimates).Error

	return estimates, total, err
}

func (r *estimateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error {
	return conn(ctx, r.db).Model(&entity.Estimate{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *estimateRepository) ListItems(ctx context.Context, estimateID uuid.UUID) ([]entity.EstimateItem, error) {
	var items []entity.EstimateItem
	err := conn(ctx, r.db).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *estimateRepository) ApplyItems(ctx context.Context, estimateID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.EstimateItem, total decimal.Decimal) error {
	db := conn(ctx, r.db)
	if len(deleteIDs) > 0 {
		err := db.Where("estimate_id = ? AND id IN ?", estimateID, deleteIDs).
			Delete(&entity.EstimateItem{}).Error
		if err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		if err := db.Omit(clause.Associations).Create(&inserts).Error; err != nil {
			return err
		}
	}
	return db.Model(&entity.Estimate{}).
		Where("id = ?", estimateID).
		Update("total_amount", total).Error
}
