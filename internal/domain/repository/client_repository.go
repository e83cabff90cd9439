package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	// Create returns ErrDuplicate when the email is taken within the company.
	Create(ctx context.Context, client *entity.Client) error
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Client, error)
	GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*entity.Client, error)
	List(ctx context.Context, companyID uuid.UUID, params *ClientFilterParams) ([]entity.Client, int64, error)
}

// ClientFilterParams contains filtering parameters for client queries
type ClientFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
