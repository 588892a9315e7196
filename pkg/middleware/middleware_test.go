package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeRedis is an in-memory RedisClient
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdempotentRouter(rdb RedisClient, requireKey bool, calls *int, status int) *gin.Engine {
	r := gin.New()
	r.Use(Idempotency(&IdempotencyConfig{Redis: rdb, RequireKey: requireKey}))
	r.POST("/api/v1/scores", func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func post(r http.Handler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scores", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), false, &calls, http.StatusCreated)

	first := post(r, `{"score":10}`, "k-1")
	second := post(r, `{"score":10}`, "k-1")

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), false, &calls, http.StatusCreated)

	post(r, `{"score":10}`, "k-2")
	w := post(r, `{"score":99}`, "k-2")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	r := newIdempotentRouter(rdb, false, &calls, http.StatusCreated)

	hash := hashRequest(http.MethodPost, "/api/v1/scores", []byte(`{"score":1}`))
	require.NoError(t, saveIdempotencyRecord(context.Background(), rdb, IdempotencyKeyPrefix+"k-3",
		&IdempotencyRecord{Key: "k-3", Status: StatusProcessing, RequestHash: hash}, time.Minute))

	w := post(r, `{"score":1}`, "k-3")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

// vanishingRedis loses every SETNX race but never finds the winner's record
type vanishingRedis struct {
	*fakeRedis
}

func (v vanishingRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(false, nil)
}

func TestIdempotency_LostRaceWithVanishedRecord(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(vanishingRedis{newFakeRedis()}, false, &calls, http.StatusCreated)

	w := post(r, `{"score":1}`, "k-5")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Equal(t, 0, calls)
}

func TestIdempotency_WithoutKey(t *testing.T) {
	calls := 0
	optional := newIdempotentRouter(newFakeRedis(), false, &calls, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, post(optional, `{}`, "").Code)
	assert.Equal(t, http.StatusCreated, post(optional, `{}`, "").Code)
	assert.Equal(t, 2, calls)

	required := newIdempotentRouter(newFakeRedis(), true, &calls, http.StatusCreated)
	w := post(required, `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDEMPOTENCY_KEY")
}

func TestIdempotency_ServerErrorNotCached(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	r := newIdempotentRouter(rdb, false, &calls, http.StatusInternalServerError)

	post(r, `{}`, "k-4")
	post(r, `{}`, "k-4")

	assert.Equal(t, 2, calls)
	assert.Empty(t, rdb.data)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(logger.New(zap.New(core))))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
