package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ratelimit:submit:"

// Limiter bounds public submissions per source address.
type Limiter interface {
	// Allow increments the caller's counter and reports whether the request
	// is within the daily cap.
	Allow(ctx context.Context, addr string) (bool, error)
}

// DailyLimiter counts requests per source address per UTC calendar day in
// Redis. INCR is atomic, so concurrent requests from the same address cannot
// lose updates; the key expires shortly after the day it covers.
type DailyLimiter struct {
	client *redis.Client
	limit  int
	logger *zap.Logger
}

// NewDailyLimiter creates a limiter with the given daily cap.
func NewDailyLimiter(client *redis.Client, limit int, logger *zap.Logger) *DailyLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyLimiter{client: client, limit: limit, logger: logger}
}

// Key returns the counter key for a source address on a given day.
func Key(day time.Time, addr string) string {
	return keyPrefix + day.UTC().Format("2006-01-02") + ":" + addr
}

// Allow implements Limiter.
func (l *DailyLimiter) Allow(ctx context.Context, addr string) (bool, error) {
	key := Key(time.Now(), addr)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr: %w", err)
	}
	if n == 1 {
		// First hit of the day sets the expiry; 48h covers timezone skew.
		if err := l.client.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
			l.logger.Warn("set rate limit expiry failed", zap.Error(err), zap.String("key", key))
		}
	}
	return n <= int64(l.limit), nil
}
