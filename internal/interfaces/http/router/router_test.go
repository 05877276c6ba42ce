package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/cache"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	calls := 0
	r := NewRouter(engine, WithAPIMiddleware(func(c *gin.Context) {
		calls++
		c.Next()
	}))

	group := NewDomainGroup("ping", "/ping")
	group.GET("", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("commission", "/commission")
		assert.Equal(t, "commission", g.Name())
		assert.Equal(t, "/commission", g.Prefix())
	})

	t.Run("registers every verb", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("orders", "/orders")
		g.GET("/:id", ok).POST("", ok).PUT("/:id", ok).DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/orders/1"},
			{http.MethodPost, "/api/v1/orders"},
			{http.MethodPut, "/api/v1/orders/1"},
			{http.MethodDelete, "/api/v1/orders/1"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
		}
	})

	t.Run("group middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("commission", "/commission").Use(func(c *gin.Context) {
			c.Header("X-Group", "commission")
			c.Next()
		})
		g.Group("suppliers", "/suppliers").GET("/:id", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("id"))
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commission/suppliers/42", nil))

		assert.Equal(t, "42", w.Body.String())
		assert.Equal(t, "commission", w.Header().Get("X-Group"))
	})
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := NewEngine(EngineConfig{
		Config:      cfg,
		Logger:      zap.NewNop(),
		Idempotency: store,
		Handlers: Handlers{
			System:      handler.NewSystemHandler("comtrack", "test", nil),
			SalesOrders: handler.NewSalesOrderHandler(nil),
			Commission:  handler.NewCommissionHandler(nil, nil, nil),
			Exports:     handler.NewExportHandler(nil),
		},
	})
	require.NoError(t, err)
	return engine
}

func TestNewEngine_Routes(t *testing.T) {
	engine := newTestEngine(t)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/system/info",
		"GET /api/v1/sales-orders",
		"POST /api/v1/sales-orders",
		"GET /api/v1/sales-orders/:id",
		"PUT /api/v1/sales-orders/:id",
		"DELETE /api/v1/sales-orders/:id",
		"GET /api/v1/commission/payments",
		"POST /api/v1/commission/payments",
		"GET /api/v1/commission/payments/:id",
		"DELETE /api/v1/commission/payments/:id",
		"PUT /api/v1/commission/payments/:id/items",
		"POST /api/v1/commission/payments/:id/items",
		"PUT /api/v1/commission/payments/:id/items/:itemId",
		"DELETE /api/v1/commission/payments/:id/items/:itemId",
		"GET /api/v1/commission/payments/:id/allocations",
		"POST /api/v1/commission/allocations",
		"POST /api/v1/commission/payment-items/:id/auto-allocate",
		"GET /api/v1/commission/payment-items/:id/allocations",
		"GET /api/v1/commission/outstanding",
		"GET /api/v1/commission/outstanding/export",
		"GET /api/v1/commission/suppliers/:id/outstanding",
		"GET /api/v1/commission/suppliers/:id/summary",
		"GET /api/v1/commission/suppliers/:id/payments",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestNewEngine_Middleware(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("health needs no tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("system info needs no tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ledger routes require a tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commission/outstanding", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "TENANT_REQUIRED")
	})
}
