package repository

import (
	"context"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) LedgerRows(ctx context.Context, companyID uuid.UUID) ([]domainRepo.LedgerRow, error) {
	var rows []domainRepo.LedgerRow

	// Both sides are filtered by company so a payment row pointing at another
	// tenant's invoice can never leak in.
	err := conn(ctx, r.db).Raw(`
		SELECT
			p.id AS payment_id,
			c.id AS client_id,
			c.name AS client_name,
			p.amount AS amount,
			p.paid_on AS paid_on
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id AND i.company_id = p.company_id
		JOIN clients c ON c.id = i.client_id AND c.company_id = i.company_id
		WHERE p.company_id = ?
		ORDER BY p.paid_on ASC, p.id ASC
	`, companyID).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *analyticsRepository) InvoiceStatusCounts(ctx context.Context, companyID uuid.UUID) ([]domainRepo.StatusCount, error) {
	var counts []domainRepo.StatusCount

	err := conn(ctx, r.db).Raw(`
		SELECT status, COUNT(*) AS count
		FROM invoices
		WHERE company_id = ?
		GROUP BY status
		ORDER BY status ASC
	`, companyID).Scan(&counts).Error

	if err != nil {
		return nil, err
	}

	return counts, nil
}
