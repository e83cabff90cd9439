package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts the invoice row only; items go through ApplyItems.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update writes scalar columns and leaves associations alone.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// Delete removes the invoice with its items and payments.
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	// GetByID loads the invoice with client, items (with product) and payments.
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error

	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error)
	// ApplyItems deletes the rows in deleteIDs and inserts inserts, in that order.
	ApplyItems(ctx context.Context, invoiceID uuid.UUID, deleteIDs []uuid.UUID, inserts []entity.InvoiceItem) error
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.InvoiceStatus
	ClientID   *uuid.UUID
	SortBy     string
	SortOrder  string
}
