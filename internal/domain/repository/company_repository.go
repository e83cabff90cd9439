package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
)

// CompanyRepository defines the interface for company data operations.
// Lookups are always by owner so that a foreign company reads as missing.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	Update(ctx context.Context, company *entity.Company) error
	GetByOwner(ctx context.Context, userID, companyID uuid.UUID) (*entity.Company, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]entity.Company, error)

	// NextDocumentNumber advances the counter for kind by one in a single
	// atomic statement and returns the new value. Returns (0, nil) when the
	// company does not exist.
	NextDocumentNumber(ctx context.Context, companyID uuid.UUID, kind enum.DocumentKind) (int, error)
}
