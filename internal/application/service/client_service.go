package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/optional"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	tx         repository.TxManager
	scope      *TenantScope
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(tx repository.TxManager, scope *TenantScope, clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{tx: tx, scope: scope, clientRepo: clientRepo}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Name        string
	Email       string
	Phone       *string
	Address     *string
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := mail.ParseAddress(s); err != nil {
		return "", apperror.NewFieldError("email", "must be a valid email address")
	}
	return s, nil
}

// CreateClient creates a client. The email must be unused within the company.
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	var client *entity.Client
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
		if err != nil {
			return err
		}

		existing, err := s.clientRepo.GetByEmail(ctx, company.ID, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.ErrClientAlreadyExists
		}

		client = &entity.Client{
			ID:        uuid.New(),
			CompanyID: company.ID,
			Name:      name,
			Email:     email,
			Phone:     input.Phone,
			Address:   input.Address,
		}
		return s.clientRepo.Create(ctx, client)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent create; the unique index caught it.
		return nil, apperror.ErrClientAlreadyExists.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, principalID, companyID, clientID uuid.UUID) (*entity.Client, error) {
	_, client, err := s.scope.Client(ctx, principalID, companyID, clientID)
	return client, err
}

// ListClientsInput represents the input for listing clients
type ListClientsInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	Pagination  *pagination.PaginationParams
	Search      string
}

// ListClients lists a company's clients
func (s *ClientService) ListClients(ctx context.Context, input *ListClientsInput) (*pagination.PaginatedResult[entity.Client], error) {
	company, err := s.scope.Company(ctx, input.PrincipalID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	clients, total, err := s.clientRepo.List(ctx, company.ID, &repository.ClientFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput leaves every unset field untouched.
type UpdateClientInput struct {
	PrincipalID uuid.UUID
	CompanyID   uuid.UUID
	ClientID    uuid.UUID
	Name        optional.Optional[string]
	Email       optional.Optional[string]
	Phone       optional.Optional[*string]
	Address     optional.Optional[*string]
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	var client *entity.Client
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		_, client, err = s.scope.Client(ctx, input.PrincipalID, input.CompanyID, input.ClientID)
		if err != nil {
			return err
		}

		if name, ok := input.Name.Get(); ok {
			if strings.TrimSpace(name) == "" {
				return apperror.NewFieldError("name", "cannot be empty")
			}
			client.Name = strings.TrimSpace(name)
		}
		if raw, ok := input.Email.Get(); ok {
			email, err := normalizeEmail(raw)
			if err != nil {
				return err
			}
			client.Email = email
		}
		input.Phone.ApplyTo(&client.Phone)
		input.Address.ApplyTo(&client.Address)

		return s.clientRepo.Update(ctx, client)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.ErrClientAlreadyExists.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient deletes a client that no document references
func (s *ClientService) DeleteClient(ctx context.Context, principalID, companyID, clientID uuid.UUID) error {
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		company, client, err := s.scope.Client(ctx, principalID, companyID, clientID)
		if err != nil {
			return err
		}
		return s.clientRepo.Delete(ctx, company.ID, client.ID)
	})
	if errors.Is(err, repository.ErrReferenced) {
		return apperror.ErrConflict.WithCause(err)
	}
	return err
}
