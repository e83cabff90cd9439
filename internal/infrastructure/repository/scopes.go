package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"gorm.io/gorm"
)

type txKey struct{}

// withTx stores an open transaction in ctx.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom returns the transaction carried by ctx, if any.
func txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// conn returns the handle a repository call should use: the transaction in
// ctx when there is one, otherwise the pool.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// CompanyScope restricts a query to rows owned by companyID.
// A zero id matches nothing.
func CompanyScope(companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if companyID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("company_id = ?", companyID)
	}
}

// Paginate applies offset/limit. A nil params falls back to the defaults.
func Paginate(p *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p == nil {
			p = pagination.DefaultPagination()
		}
		p.Validate()
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// translate maps gorm's dialect-neutral constraint errors to domain errors.
// Requires gorm.Config{TranslateError: true}.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domainRepo.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domainRepo.ErrReferenced, err)
	}
	return err
}
