package integration

import (
	"context"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/cache"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisIdempotencyStore(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	store, err := cache.NewIdempotencyStoreFactory(cfg, cache.WithLogger(zap.NewNop()), cache.WithInMemoryFallback(false)).CreateStore(ctx)
	require.NoError(t, err)
	redisStore, ok := store.(*cache.RedisIdempotencyStore)
	require.True(t, ok, "expected the redis store, got %T", store)
	t.Cleanup(func() { _ = redisStore.Close() })
	require.NoError(t, redisStore.Ping(ctx))

	claimed, err := store.Claim(ctx, "tenant:/api/v1/commission/payments:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.Claim(ctx, "tenant:/api/v1/commission/payments:k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "a second claim must lose")

	require.NoError(t, store.Release(ctx, "tenant:/api/v1/commission/payments:k1"))
	claimed, err = store.Claim(ctx, "tenant:/api/v1/commission/payments:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "a released key can be claimed again")

	t.Run("keys expire", func(t *testing.T) {
		claimed, err := store.Claim(ctx, "short", time.Second)
		require.NoError(t, err)
		require.True(t, claimed)

		require.Eventually(t, func() bool {
			again, err := store.Claim(ctx, "short", time.Second)
			return err == nil && again
		}, 5*time.Second, 100*time.Millisecond)
	})
}
