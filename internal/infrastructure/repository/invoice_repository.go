package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(invoice).Error)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Model(invoice).
		Omit(clause.Associations).
		Select("client_id", "issue_date", "due_date", "notes").
		Updates(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&entity.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", id).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Scopes(CompanyScope(companyID)).Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).Scopes(CompanyScope(companyID)).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_on ASC") }).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

var invoiceSortColumns = map[string]bool{
	"created_at":     true,
	"issue_date":     true,
	"due_date":       true,
	"invoice_number": true,
}

func (r *invoiceRepository) List(ctx context.Context, companyID uuid.UUID, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(CompanyScope(companyID))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if invoiceSortColumns[params.SortBy] {
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Client").
		Preload("Items.Product").
		Preload("Payments").
		Order(sortBy + " " + sortOrder).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *invoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	var items []entity.InvoiceItem
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *invoiceRepository) ApplyItems(ctx context.Context, invoiceID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.InvoiceItem) error {
	db := conn(ctx, r.db)
	if len(deleteIDs) > 0 {
		err := db.Where("invoice_id = ? AND id IN ?", invoiceID, deleteIDs).
			Delete(&entity.InvoiceItem{}).Error
		if err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		return db.Omit(clause.Associations).Create(&inserts).Error
	}
	return nil
}
