package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "advocate:mid:"

// Guard remembers message ids so a redelivered webhook does not run a turn
// twice. A nil *Guard lets everything through.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect opens and pings a Redis client. An empty addr disables the guard.
func Connect(ctx context.Context, addr, password string, ttl time.Duration) (*Guard, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(client, ttl), nil
}

func New(client *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{client: client, ttl: ttl}
}

// Seen marks mid as processed and reports whether it had been marked before.
// Events without a mid are never considered duplicates.
func (g *Guard) Seen(ctx context.Context, mid string) (bool, error) {
	if g == nil || mid == "" {
		return false, nil
	}
	fresh, err := g.client.SetNX(ctx, keyPrefix+mid, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe %s: %w", mid, err)
	}
	return !fresh, nil
}

func (g *Guard) Ping(ctx context.Context) error {
	if g == nil {
		return nil
	}
	return g.client.Ping(ctx).Err()
}

func (g *Guard) Close() error {
	if g == nil {
		return nil
	}
	return g.client.Close()
}
