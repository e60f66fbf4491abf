// README: Redis client initialization for the geocode cache.
package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects and pings; the caller decides whether a failure is fatal.
func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
