package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the server described by a redis:// URL and
// pings it, retrying transient failures.
func NewRedisClient(ctx context.Context, url string, l *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	if err := withRetry(ctx, "ping redis", l, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
