package alarmcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

func newRedisRepository(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisRepository(client, "cofrn:alarms"), server
}

// TestRedisRepository_NotFound verifies an absent hash yields ErrNotFound.
func TestRedisRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRedisRepository(t)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestRedisRepository_SaveLoad checks the version counter advances on every save.
func TestRedisRepository_SaveLoad(t *testing.T) {
	t.Parallel()
	repo, server := newRedisRepository(t)
	ctx := context.Background()

	want := sampleCache(time.UnixMilli(1_700_000_000_000))
	doc := &domain.Document{Cache: want}
	require.NoError(t, repo.Save(ctx, doc))
	require.Equal(t, "1", doc.Version)
	require.Equal(t, "1", server.HGet("cofrn:alarms", "version"))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got.Cache)

	require.NoError(t, repo.Save(ctx, got))
	require.Equal(t, "2", got.Version)
}

// TestRedisRepository_Conflict refuses a save built on an old version.
func TestRedisRepository_Conflict(t *testing.T) {
	t.Parallel()
	repo, _ := newRedisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Document{Cache: domain.Cache{}}))

	first, err := repo.Load(ctx)
	require.NoError(t, err)
	second, err := repo.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	require.ErrorIs(t, repo.Save(ctx, second), ErrConflict)
	require.ErrorIs(t, repo.Save(ctx, &domain.Document{}), ErrConflict)
}

// TestRedisRepository_CorruptData replaces undecodable data under its version.
func TestRedisRepository_CorruptData(t *testing.T) {
	t.Parallel()
	repo, server := newRedisRepository(t)
	ctx := context.Background()

	server.HSet("cofrn:alarms", "data", "{broken", "version", "3")

	doc, err := repo.Load(ctx)
	require.ErrorIs(t, err, ErrCorrupt)
	require.NotNil(t, doc)
	require.Equal(t, "3", doc.Version)

	require.NoError(t, repo.Save(ctx, doc))
	require.Equal(t, "4", doc.Version)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Cache)
}

// TestConnectRedis covers both a reachable and an unreachable server.
func TestConnectRedis(t *testing.T) {
	t.Parallel()
	server := miniredis.RunT(t)

	addr := server.Addr()

	client, err := ConnectRedis(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	server.Close()

	_, err = ConnectRedis(context.Background(), addr)
	require.Error(t, err)
}
