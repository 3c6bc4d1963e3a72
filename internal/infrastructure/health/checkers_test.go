package health_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/cache"
	infraDB "github.com/avatarctic/quantum-studio/internal/infrastructure/db"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/health"
	tmocks "github.com/avatarctic/quantum-studio/test/mocks"
)

func TestRedisHealthChecker(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hc := health.NewRedisHealthChecker(client)
	require.Equal(t, "redis", hc.Name())
	require.True(t, hc.(ports.OptionalDependency).Optional())
	require.NoError(t, hc.Check(context.Background()))

	srv.Close()
	require.Error(t, hc.Check(context.Background()))
}

func TestCacheHealthChecker(t *testing.T) {
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	hc := health.NewCacheHealthChecker(mem)
	require.Equal(t, "cache:memory", hc.Name())
	require.True(t, hc.(ports.OptionalDependency).Optional())
	require.NoError(t, hc.Check(context.Background()))

	failing := health.NewCacheHealthChecker(tmocks.FailingCache())
	require.Equal(t, "cache:mock", failing.Name())
	require.ErrorIs(t, failing.Check(context.Background()), tmocks.ErrBackendDown)
}

func TestDBHealthChecker_UnreachableDatabase(t *testing.T) {
	dbx, err := sqlx.Open("postgres", "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbx.Close() })

	hc := health.NewDBHealthChecker(infraDB.NewFromSQLX(dbx))
	require.Equal(t, "database", hc.Name())
	_, optional := hc.(ports.OptionalDependency)
	require.False(t, optional)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.Error(t, hc.Check(ctx))
}
