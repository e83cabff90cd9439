package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) domainRepo.CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	return conn(ctx, r.db).Create(company).Error
}

// Update never touches the counters; those only move through NextDocumentNumber.
func (r *companyRepository) Update(ctx context.Context, company *entity.Company) error {
	return conn(ctx, r.db).Model(company).
		Select("name", "email", "phone", "address", "tax_number", "currency").
		Updates(company).Error
}

func (r *companyRepository) GetByOwner(ctx context.Context, userID, companyID uuid.UUID) (*entity.Company, error) {
	var company entity.Company
	err := conn(ctx, r.db).
		First(&company, "id = ? AND user_id = ?", companyID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &company, err
}

func (r *companyRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]entity.Company, error) {
	var companies []entity.Company
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&companies).Error
	return companies, err
}

func (r *companyRepository) NextDocumentNumber(ctx context.Context, companyID uuid.UUID, kind enum.DocumentKind) (int, error) {
	column, err := counterColumn(kind)
	if err != nil {
		return 0, err
	}

	var company entity.Company
	res := nextNumberQuery(conn(ctx, r.db), companyID, column, &company)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	if kind == enum.DocumentKindEstimate {
		return company.NextEstimateNumber, nil
	}
	return company.NextInvoiceNumber, nil
}

// nextNumberQuery bumps one counter and reads it back in a single
// UPDATE ... RETURNING. The row lock taken by UPDATE serializes concurrent
// allocators, so no two callers see the same value.
func nextNumberQuery(db *gorm.DB, companyID uuid.UUID, column string, company *entity.Company) *gorm.DB {
	return db.Model(company).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: column}}}).
		Where("id = ?", companyID).
		UpdateColumns(map[string]interface{}{
			column:       gorm.Expr(column + " + 1"),
			"updated_at": gorm.Expr("NOW()"),
		})
}

// counterColumn maps a document kind to its counter column. The column name
// is interpolated into SQL, so only these fixed values may come back.
func counterColumn(kind enum.DocumentKind) (string, error) {
	switch kind {
	case enum.DocumentKindInvoice:
		return "next_invoice_number", nil
	case enum.DocumentKindEstimate:
		return "next_estimate_number", nil
	}
	return "", fmt.Errorf("unknown document kind %q", kind)
}
