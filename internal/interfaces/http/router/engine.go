package router

import (
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/auth"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/handler"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served by the engine
type Handlers struct {
	System      *handler.SystemHandler
	SalesOrders *handler.SalesOrderHandler
	Commission  *handler.CommissionHandler
	Exports     *handler.ExportHandler
}

// EngineConfig carries everything NewEngine wires together
type EngineConfig struct {
	Config      *config.Config
	Logger      *zap.Logger
	Meter       metric.Meter
	Idempotency shared.IdempotencyStore
	Handlers    Handlers
}

// NewEngine builds the gin engine with the global middleware chain, the
// health endpoints and the tenant scoped /api/v1 routes
func NewEngine(ec EngineConfig) (*gin.Engine, error) {
	cfg := ec.Config
	log := ec.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	metrics, err := middleware.HTTPMetrics(ec.Meter)
	if err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		metrics,
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", ec.Handlers.System.Health)
	engine.GET("/ready", ec.Handlers.System.Ready)

	var api []gin.HandlerFunc
	if cfg.JWT.Enabled {
		api = append(api, middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			Validator: auth.NewJWTService(cfg.JWT),
			Logger:    log,
		}))
	}
	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.SkipPaths = []string{"/api/v1/system"}
	api = append(api,
		middleware.Tenant(tenantCfg),
		middleware.SpanEnricher(),
		middleware.Idempotency(middleware.IdempotencyConfig{
			Store: ec.Idempotency,
			TTL:   cfg.Commission.IdempotencyTTL,
		}),
	)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", ec.Handlers.System.Info)

	NewRouter(engine, WithAPIMiddleware(api...)).
		Register(system).
		Register(SalesOrderRoutes(ec.Handlers.SalesOrders)).
		Register(CommissionRoutes(ec.Handlers.Commission, ec.Handlers.Exports)).
		Setup()

	return engine, nil
}
