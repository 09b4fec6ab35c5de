package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AttemptRepository counts events per key inside a fixed window in Redis.
// A nil client disables counting: every call reports zero.
type AttemptRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewAttemptRepository constructs the repository.
func NewAttemptRepository(client *redis.Client, prefix string, logger *zap.Logger) *AttemptRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttemptRepository{client: client, prefix: prefix, logger: logger}
}

func (r *AttemptRepository) key(k string) string {
	return fmt.Sprintf("%s:%s", r.prefix, k)
}

// Count returns the current number of recorded attempts for k.
func (r *AttemptRepository) Count(ctx context.Context, k string) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	n, err := r.client.Get(ctx, r.key(k)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", k, err)
	}
	return n, nil
}

// Increment records an attempt; the window starts at the first attempt.
func (r *AttemptRepository) Increment(ctx context.Context, k string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	key := r.key(k)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", k, err)
	}
	return incr.Val(), nil
}

// Reset clears the counter for k.
func (r *AttemptRepository) Reset(ctx context.Context, k string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, r.key(k)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", k, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *AttemptRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
