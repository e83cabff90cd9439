package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses for retried commands
type IdempotencyRepository interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	// Claim inserts a pending record for (user, key), taking over an existing
	// record only when it expired before now. It reports whether the caller
	// now owns the key.
	Claim(ctx context.Context, record *entity.IdempotencyKey, now time.Time) (bool, error)
	// Complete stores the response on a claimed record.
	Complete(ctx context.Context, record *entity.IdempotencyKey) error
	// Release drops a claim that is still pending.
	Release(ctx context.Context, userID uuid.UUID, key string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
