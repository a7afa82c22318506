//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BradenHooton/srm/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *store.RedisStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := store.NewRedisClient(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedisStore(client, "srm-test")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := setupRedis(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	value, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	ttl, ok, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Incr(t *testing.T) {
	s := setupRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := s.Incr(ctx, "counter", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	require.NoError(t, s.Set(ctx, "text", "abc", time.Minute))
	_, err := s.Incr(ctx, "text", time.Minute)
	assert.ErrorIs(t, err, store.ErrNotInteger)
}
