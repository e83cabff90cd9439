package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sangkips/invoicer-api/internal/config"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memIdempotency struct {
	mu      sync.Mutex
	records map[string]*entity.IdempotencyKey
	err     error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{records: map[string]*entity.IdempotencyKey{}}
}

func memKey(userID uuid.UUID, key string) string {
	return userID.String() + "/" + key
}

func (m *memIdempotency) Get(_ context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.records[memKey(userID, key)], nil
}

func (m *memIdempotency) Claim(_ context.Context, record *entity.IdempotencyKey, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := memKey(record.UserID, record.Key)
	if existing, ok := m.records[k]; ok && !existing.ExpiresAt.Before(now) {
		return false, nil
	}
	cp := *record
	m.records[k] = &cp
	return true, nil
}

func (m *memIdempotency) Complete(_ context.Context, record *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[memKey(record.UserID, record.Key)]; ok {
		existing.ResponseCode = record.ResponseCode
		existing.ResponseBody = record.ResponseBody
		existing.ExpiresAt = record.ExpiresAt
	}
	return nil
}

func (m *memIdempotency) Release(_ context.Context, userID uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[memKey(userID, key)]; ok && existing.Pending() {
		delete(m.records, memKey(userID, key))
	}
	return nil
}

func (m *memIdempotency) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", "invoicer-api", time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "owner@acme.test")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": c.MustGet(UserIDKey), "email": c.GetString(UserEmailKey)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), body["user_id"])
				assert.Equal(t, "owner@acme.test", body["email"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["kind"])
			}
		})
	}
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggerMiddleware(logger.Nop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(200, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestCompanyRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewCompanyRateLimiter(ctx, RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Hour,
	})

	r := gin.New()
	r.GET("/companies/:companyId", rl.Middleware(), func(c *gin.Context) { c.Status(200) })

	hit := func(company string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/companies/"+company, nil))
		return w.Code
	}

	assert.Equal(t, 200, hit("a"))
	assert.Equal(t, 200, hit("a"))
	assert.Equal(t, http.StatusTooManyRequests, hit("a"))
	assert.Equal(t, 200, hit("b"), "other companies have their own bucket")
	assert.Equal(t, 2, rl.Stats()["active_buckets"])

	rl.cleanup(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, rl.Stats()["active_buckets"])
	assert.Equal(t, 200, hit("a"))
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(&config.RateLimitConfig{Requests: 120, Duration: 60})
	assert.InDelta(t, 2.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 120, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFrom(&config.RateLimitConfig{}))
}

func idempotentRouter(repo *memIdempotency, userID uuid.UUID, now func() time.Time) (*gin.Engine, *int) {
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(UserIDKey, userID) })
	r.Use(Idempotency(IdempotencyConfig{Repo: repo, Now: now}))
	r.POST("/payments", func(c *gin.Context) {
		calls++
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil || body["amount"] == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls, "amount": body["amount"]})
	})
	return r, &calls
}

func post(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	repo := newMemIdempotency()
	r, calls := idempotentRouter(repo, uuid.New(), time.Now)

	first := post(r, "k1", `{"amount":"20"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := post(r, "k1", `{"amount":"20"}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *calls)

	post(r, "", `{"amount":"20"}`)
	post(r, "", `{"amount":"20"}`)
	assert.Equal(t, 3, *calls, "requests without a key are never deduplicated")
}

func TestIdempotency_KeyReusedForDifferentBody(t *testing.T) {
	repo := newMemIdempotency()
	r, calls := idempotentRouter(repo, uuid.New(), time.Now)

	require.Equal(t, http.StatusCreated, post(r, "k1", `{"amount":"20"}`).Code)

	w := post(r, "k1", `{"amount":"25"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["kind"])
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	repo := newMemIdempotency()
	r, calls := idempotentRouter(repo, uuid.New(), time.Now)

	assert.Equal(t, http.StatusUnprocessableEntity, post(r, "k1", `{}`).Code)
	assert.Empty(t, repo.records)

	assert.Equal(t, http.StatusUnprocessableEntity, post(r, "k1", `{}`).Code)
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ExpiredKeyRunsAgain(t *testing.T) {
	repo := newMemIdempotency()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r, calls := idempotentRouter(repo, uuid.New(), func() time.Time { return now })

	require.Equal(t, http.StatusCreated, post(r, "k1", `{"amount":"20"}`).Code)
	now = now.Add(IdempotencyKeyTTL + time.Minute)

	w := post(r, "k1", `{"amount":"20"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_KeysArePerUser(t *testing.T) {
	repo := newMemIdempotency()
	alice, aliceCalls := idempotentRouter(repo, uuid.New(), time.Now)
	bob, bobCalls := idempotentRouter(repo, uuid.New(), time.Now)

	post(alice, "shared", `{"amount":"1"}`)
	w := post(bob, "shared", `{"amount":"1"}`)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, 1, *aliceCalls)
	assert.Equal(t, 1, *bobCalls)
}

func TestIdempotency_StoreDownRunsUnguarded(t *testing.T) {
	repo := newMemIdempotency()
	repo.err = assert.AnError
	r, calls := idempotentRouter(repo, uuid.New(), time.Now)

	assert.Equal(t, http.StatusCreated, post(r, "k1", `{"amount":"1"}`).Code)
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_ConcurrentRetryRunsOnce(t *testing.T) {
	repo := newMemIdempotency()
	userID := uuid.New()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(UserIDKey, userID) })
	r.Use(Idempotency(IdempotencyConfig{Repo: repo}))
	r.POST("/payments", func(c *gin.Context) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		c.JSON(http.StatusCreated, gin.H{"payment": "recorded"})
	})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- post(r, "k1", `{"amount":"20"}`) }()
	<-entered

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = post(r, "k1", `{"amount":"20"}`).Code
		}(i)
	}
	wg.Wait()
	for _, code := range codes {
		assert.Equal(t, http.StatusConflict, code)
	}

	w := post(r, "k1", `{"amount":"20"}`)
	assert.Equal(t, "CONFLICT", decode(t, w)["kind"])

	close(release)
	require.Equal(t, http.StatusCreated, (<-first).Code)

	again := post(r, "k1", `{"amount":"20"}`)
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, "true", again.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, int32(1), calls.Load(), "one key, one ledger write")
}

func TestIdempotency_AbandonedClaimExpires(t *testing.T) {
	repo := newMemIdempotency()
	userID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r, calls := idempotentRouter(repo, userID, func() time.Time { return now })

	repo.records[memKey(userID, "k1")] = &entity.IdempotencyKey{
		UserID:      userID,
		Key:         "k1",
		Endpoint:    "POST /payments",
		RequestHash: hashRequest([]byte(`{"amount":"20"}`)),
		ExpiresAt:   now.Add(IdempotencyLockTTL),
	}

	assert.Equal(t, http.StatusConflict, post(r, "k1", `{"amount":"20"}`).Code)
	assert.Equal(t, 0, *calls)

	now = now.Add(IdempotencyLockTTL + time.Second)
	w := post(r, "k1", `{"amount":"20"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.False(t, repo.records[memKey(userID, "k1")].Pending())
}

func TestIdempotency_DifferentBodyWhileInFlight(t *testing.T) {
	repo := newMemIdempotency()
	userID := uuid.New()
	r, calls := idempotentRouter(repo, userID, time.Now)

	repo.records[memKey(userID, "k1")] = &entity.IdempotencyKey{
		UserID:      userID,
		Key:         "k1",
		Endpoint:    "POST /payments",
		RequestHash: hashRequest([]byte(`{"amount":"20"}`)),
		ExpiresAt:   time.Now().Add(IdempotencyLockTTL),
	}

	w := post(r, "k1", `{"amount":"99"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, *calls)
}
