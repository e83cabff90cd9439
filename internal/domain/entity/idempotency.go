package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey remembers the response to a command so a retry with the same
// Idempotency-Key header replays it instead of executing again.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_user_key,priority:1"`
	Key          string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_user_key,priority:2"`
	Endpoint     string    `gorm:"size:255;not null"`
	RequestHash  string    `gorm:"size:64;not null"`
	ResponseCode int       `gorm:"not null"`
	ResponseBody []byte    `gorm:"type:bytea"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Pending reports whether the request holding this key has not finished yet.
func (i *IdempotencyKey) Pending() bool {
	return i.ResponseCode == 0
}

// Matches reports whether a retry targets the same endpoint with the same body.
func (i *IdempotencyKey) Matches(endpoint, requestHash string) bool {
	return i.Endpoint == endpoint && i.RequestHash == requestHash
}
