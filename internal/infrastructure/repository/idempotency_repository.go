package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Get(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	var record entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where("user_id = ? AND key = ?", userID, key).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *idempotencyRepository) Claim(ctx context.Context, record *entity.IdempotencyKey, now time.Time) (bool, error) {
	res := claimQuery(conn(ctx, r.db), record, now)
	return res.RowsAffected > 0, res.Error
}

// claimQuery inserts the pending record. On a (user, key) clash the old row is
// overwritten only if it has expired; otherwise nothing is written and no row
// is affected.
func claimQuery(db *gorm.DB, record *entity.IdempotencyKey, now time.Time) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"id", "endpoint", "request_hash", "response_code", "response_body", "created_at", "expires_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lt{Column: clause.Column{Table: record.TableName(), Name: "expires_at"}, Value: now},
		}},
	}).Create(record)
}

func (r *idempotencyRepository) Complete(ctx context.Context, record *entity.IdempotencyKey) error {
	return conn(ctx, r.db).Model(&entity.IdempotencyKey{}).
		Where("user_id = ? AND key = ?", record.UserID, record.Key).
		Updates(map[string]interface{}{
			"response_code": record.ResponseCode,
			"response_body": record.ResponseBody,
			"expires_at":    record.ExpiresAt,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, userID uuid.UUID, key string) error {
	return conn(ctx, r.db).
		Where("user_id = ? AND key = ? AND response_code = 0", userID, key).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := conn(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
