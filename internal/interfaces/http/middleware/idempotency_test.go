package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type failingStore struct{}

func (failingStore) Claim(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) Release(context.Context, string) error { return nil }
func (failingStore) Close() error                          { return nil }

func idempotentRouter(cfg IdempotencyConfig, status *int) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Tenant(DefaultTenantConfig()), Idempotency(cfg))
	r.POST("/api/v1/commission/payments", func(c *gin.Context) { c.Status(*status) })
	r.PUT("/api/v1/commission/payments/:id/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func send(r http.Handler, method, path string, tenant uuid.UUID, key string) int {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(TenantHeaderKey, tenant.String())
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestIdempotency(t *testing.T) {
	const path = "/api/v1/commission/payments"

	t.Run("reused key is rejected", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		status := http.StatusCreated
		r := idempotentRouter(IdempotencyConfig{Store: store, TTL: time.Hour}, &status)
		tenant := uuid.New()

		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, tenant, "k1"))
		assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, path, tenant, "k1"))
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, tenant, "k2"))
	})

	t.Run("keys are scoped per tenant", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		status := http.StatusCreated
		r := idempotentRouter(IdempotencyConfig{Store: store}, &status)

		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, uuid.New(), "k1"))
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, uuid.New(), "k1"))
	})

	t.Run("failed request releases its key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		status := http.StatusUnprocessableEntity
		r := idempotentRouter(IdempotencyConfig{Store: store}, &status)
		tenant := uuid.New()

		assert.Equal(t, http.StatusUnprocessableEntity, send(r, http.MethodPost, path, tenant, "k1"))
		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, tenant, "k1"))
	})

	t.Run("no header and non post pass", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		status := http.StatusCreated
		r := idempotentRouter(IdempotencyConfig{Store: store}, &status)
		tenant := uuid.New()

		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, tenant, ""))
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, tenant, ""))
		put := "/api/v1/commission/payments/" + uuid.NewString() + "/items"
		assert.Equal(t, http.StatusOK, send(r, http.MethodPut, put, tenant, "k1"))
		assert.Equal(t, http.StatusOK, send(r, http.MethodPut, put, tenant, "k1"))
	})

	t.Run("store failure fails open", func(t *testing.T) {
		status := http.StatusCreated
		r := idempotentRouter(IdempotencyConfig{Store: failingStore{}}, &status)
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, path, uuid.New(), "k1"))
	})
}
