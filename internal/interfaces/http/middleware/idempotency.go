package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client chosen request key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
}

// Idempotency rejects a POST whose Idempotency-Key was already used by the
// same tenant on the same route within TTL. Keys of failed requests are
// released so the client can retry. Requests without the header pass.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if cfg.Store == nil || c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeInvalidInput, "Idempotency-Key is too long")
			return
		}

		tenantID, _ := GetTenantID(c)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		scoped := tenantID.String() + ":" + route + ":" + key

		ctx := c.Request.Context()
		claimed, err := cfg.Store.Claim(ctx, scoped, ttl)
		if err != nil {
			// An unavailable store must not block ledger writes
			logger.L(ctx).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, dto.ErrCodeConflict, "Idempotency-Key has already been used")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
