package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, ttl time.Duration) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	g, err := Connect(context.Background(), mr.Addr(), "", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g, mr
}

func TestSeen(t *testing.T) {
	ctx := context.Background()
	g, mr := newGuard(t, time.Minute)

	seen, err := g.Seen(ctx, "mid.1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = g.Seen(ctx, "mid.1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = g.Seen(ctx, "mid.2")
	require.NoError(t, err)
	assert.False(t, seen)

	mr.FastForward(2 * time.Minute)
	seen, err = g.Seen(ctx, "mid.1")
	require.NoError(t, err)
	assert.False(t, seen, "expired ids are processed again")
}

func TestEmptyMIDIsNeverDuplicate(t *testing.T) {
	g, _ := newGuard(t, time.Minute)
	for i := 0; i < 2; i++ {
		seen, err := g.Seen(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, seen)
	}
}

func TestNilGuard(t *testing.T) {
	g, err := Connect(context.Background(), "", "", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, g)

	seen, err := g.Seen(context.Background(), "mid.1")
	assert.NoError(t, err)
	assert.False(t, seen)
	assert.NoError(t, g.Ping(context.Background()))
	assert.NoError(t, g.Close())
}

func TestRedisDown(t *testing.T) {
	g, mr := newGuard(t, time.Minute)
	mr.Close()

	_, err := g.Seen(context.Background(), "mid.1")
	assert.Error(t, err)
}
