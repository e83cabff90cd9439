package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/logger"
)

// UserService exposes the authenticated principal
type UserService struct {
	scope    *TenantScope
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(scope *TenantScope, userRepo repository.UserRepository) *UserService {
	return &UserService{scope: scope, userRepo: userRepo}
}

// GetProfile returns the principal. An unknown principal is UserNotFound.
func (s *UserService) GetProfile(ctx context.Context, principalID uuid.UUID) (*entity.User, error) {
	return s.scope.User(ctx, principalID)
}

// EnsureUser returns the user with email, creating it first when missing.
// Users normally come from the identity provider; this serves seeding.
func (s *UserService) EnsureUser(ctx context.Context, email, name string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.NewFieldError("email", "is required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user := &entity.User{ID: uuid.New(), Email: email, Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// Lost a race with a concurrent provision of the same email.
		return s.userRepo.GetByEmail(ctx, email)
	}
	logger.Info(ctx, "user provisioned", "user_id", user.ID, "email", user.Email)
	return user, nil
}
