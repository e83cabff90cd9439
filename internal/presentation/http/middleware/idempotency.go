package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/logger"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from a stored record.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyLockTTL bounds how long an unfinished request holds its key.
	// A claim left behind by a crashed process becomes reusable after it.
	IdempotencyLockTTL = 5 * time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo    repository.IdempotencyRepository
	TTL     time.Duration
	LockTTL time.Duration
	Now     func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func hashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency replays the stored response when a POST or PUT is retried with
// the same Idempotency-Key, so a retried payment is not recorded twice. The key
// is claimed before the handler runs; a retry arriving while the first attempt
// is still running gets 409. Only successful responses are stored; a failed
// attempt releases the key so it may be retried for real.
// Must run after AuthMiddleware because keys are scoped per user.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = IdempotencyKeyTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = IdempotencyLockTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 255 {
			response.Error(c, apperror.NewFieldError(IdempotencyKeyHeader, "must be at most 255 characters"))
			c.Abort()
			return
		}

		v, _ := c.Get(UserIDKey)
		userID, ok := v.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		now := cfg.Now()
		claim := &entity.IdempotencyKey{
			ID:          uuid.New(),
			Key:         key,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.Request.URL.Path,
			RequestHash: hashRequest(body),
			ExpiresAt:   now.Add(cfg.LockTTL),
		}

		claimed, err := cfg.Repo.Claim(ctx, claim, now)
		if err != nil {
			// Without the store the request runs unguarded rather than failing.
			logger.Warn(ctx, "idempotency claim failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !claimed {
			replay(c, cfg.Repo, claim)
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// The client may be gone by now; the record must still be settled.
		ctx = context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := cfg.Repo.Release(ctx, userID, key); err != nil {
				logger.Warn(ctx, "idempotency key not released", "key", key, "error", err)
			}
			return
		}

		claim.ResponseCode = status
		claim.ResponseBody = blw.body.Bytes()
		claim.ExpiresAt = cfg.Now().Add(cfg.TTL)
		if err := cfg.Repo.Complete(ctx, claim); err != nil {
			logger.Warn(ctx, "idempotency record not saved", "key", key, "error", err)
		}
	}
}

// replay answers a request whose key is already held by another attempt.
func replay(c *gin.Context, repo repository.IdempotencyRepository, claim *entity.IdempotencyKey) {
	ctx := c.Request.Context()
	existing, err := repo.Get(ctx, claim.UserID, claim.Key)
	if err != nil {
		logger.Warn(ctx, "idempotency lookup failed", "key", claim.Key, "error", err)
		response.Error(c, err)
		c.Abort()
		return
	}

	switch {
	case existing == nil:
		// Released between our claim and the lookup; the caller may retry.
		response.Error(c, apperror.ErrRequestInProgress)
	case !existing.Matches(claim.Endpoint, claim.RequestHash):
		response.Error(c, apperror.NewFieldError(IdempotencyKeyHeader, "key was already used for a different request"))
	case existing.Pending():
		response.Error(c, apperror.ErrRequestInProgress)
	default:
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", existing.ResponseBody)
	}
	c.Abort()
}
