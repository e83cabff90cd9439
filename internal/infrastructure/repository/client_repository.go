package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return translate(conn(ctx, r.db).Create(client).Error)
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	err := conn(ctx, r.db).Model(client).
		Select("name", "email", "phone", "address").
		Updates(client).Error
	return translate(err)
}

func (r *clientRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	err := conn(ctx, r.db).Scopes(CompanyScope(companyID)).
		Delete(&entity.Client{}, "id = ?", id).Error
	return translate(err)
}

func (r *clientRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := conn(ctx, r.db).Scopes(CompanyScope(companyID)).
		First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*entity.Client, error) {
	var client entity.Client
	err := conn(ctx, r.db).Scopes(CompanyScope(companyID)).
		First(&client, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) List(ctx context.Context, companyID uuid.UUID, params *domainRepo.ClientFilterParams) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := conn(ctx, r.db).Model(&entity.Client{}).Scopes(CompanyScope(companyID))

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("name ASC").
		Find(&clients).Error

	return clients, total, err
}
