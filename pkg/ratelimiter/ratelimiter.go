package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces per-subject cooldowns for an action. A nil client disables
// limiting.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Allow claims the cooldown slot for subject and action. It returns false and
// the remaining wait when the slot is already taken.
func (l *Limiter) Allow(ctx context.Context, subject, action string, cooldown time.Duration) (bool, time.Duration, error) {
	if l == nil || l.rdb == nil || cooldown <= 0 {
		return true, 0, nil
	}

	key := limitKey(subject, action)
	wasSet, err := l.rdb.SetNX(ctx, key, "locked", cooldown).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	return false, ttl, nil
}

// Clear releases the slot, used when the limited action did not happen.
func (l *Limiter) Clear(ctx context.Context, subject, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, limitKey(subject, action)).Err()
}

func limitKey(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", subject, action)
}

// UserSubject and IPSubject namespace the two kinds of callers.
func UserSubject(id uint) string { return fmt.Sprintf("user:%d", id) }

func IPSubject(ip string) string { return "ip:" + ip }

// Connect parses a redis URL and pings the server. An empty URL yields a nil
// client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
