package dedup

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, zap.NewNop().Sugar())
}

func TestMarkSeen_FirstTimeIsFresh(t *testing.T) {
	t.Parallel()

	s := newRedisStore(t)
	ctx := context.Background()

	require.True(t, s.MarkSeen(ctx, "https://example.org/post/1"))
	require.False(t, s.MarkSeen(ctx, "https://example.org/post/1"))
	require.True(t, s.MarkSeen(ctx, "https://example.org/post/2"))
}

func TestForget(t *testing.T) {
	t.Parallel()

	s := newRedisStore(t)
	ctx := context.Background()

	require.True(t, s.MarkSeen(ctx, "https://example.org/post/1"))
	require.NoError(t, s.Forget(ctx, "https://example.org/post/1"))
	require.True(t, s.MarkSeen(ctx, "https://example.org/post/1"))
}

func TestMarkSeen_NilClientAlwaysFresh(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, zap.NewNop().Sugar())
	ctx := context.Background()

	require.True(t, s.MarkSeen(ctx, "https://example.org/post/1"))
	require.True(t, s.MarkSeen(ctx, "https://example.org/post/1"))
	require.NoError(t, s.Forget(ctx, "https://example.org/post/1"))
}
