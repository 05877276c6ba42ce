package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/auth"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantRouter(pre ...gin.HandlerFunc) (*gin.Engine, *uuid.UUID, *string) {
	var got uuid.UUID
	var logged string
	r := gin.New()
	r.Use(RequestID())
	r.Use(pre...)
	r.Use(Tenant(DefaultTenantConfig()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/x", func(c *gin.Context) {
		got, _ = GetTenantID(c)
		logged = logger.GetTenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r, &got, &logged
}

func TestTenant(t *testing.T) {
	t.Run("header names the tenant", func(t *testing.T) {
		r, got, logged := tenantRouter()
		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
		req.Header.Set(TenantHeaderKey, id.String())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, *got)
		assert.Equal(t, id.String(), *logged)
	})

	t.Run("missing tenant is rejected", func(t *testing.T) {
		r, _, _ := tenantRouter()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/x", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "TENANT_REQUIRED")
	})

	t.Run("malformed tenant is rejected", func(t *testing.T) {
		r, _, _ := tenantRouter()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
		req.Header.Set(TenantHeaderKey, "acme")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("health skips tenant", func(t *testing.T) {
		r, _, _ := tenantRouter()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("jwt claim wins over header", func(t *testing.T) {
		svc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "comtrack"})
		claimTenant := uuid.New()
		token, err := svc.IssueToken(claimTenant, "ops", time.Hour)
		require.NoError(t, err)

		r, got, _ := tenantRouter(JWTAuth(JWTMiddlewareConfig{Validator: svc, SkipPaths: []string{"/health"}}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		req.Header.Set(TenantHeaderKey, uuid.NewString())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, claimTenant, *got)
	})
}

func TestJWTAuth(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "comtrack"})
	r := gin.New()
	r.Use(JWTAuth(JWTMiddlewareConfig{Validator: svc, SkipPaths: []string{"/health"}}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		c.String(http.StatusOK, claims.Subject)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.IssueToken(uuid.New(), "ops", -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.IssueToken(uuid.New(), "ops", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ops", w.Body.String())
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
