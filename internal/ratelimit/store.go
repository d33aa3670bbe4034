package ratelimit

import (
	"context"
	"time"

	"github.com/yungbote/mentamind-backend/internal/domain"
)

// Store persists one RateLimitRecord per key. Every mutating method must be a
// single atomic operation against the backing store.
type Store interface {
	// Get returns nil, nil when the key has no record.
	Get(ctx context.Context, key string) (*domain.RateLimitRecord, error)
	// StartWindow writes count=1 with the given reset time, but only when the
	// key is absent or its window ended at or before now.
	StartWindow(ctx context.Context, key string, now, resetAt time.Time) (bool, error)
	// Increment bumps the count of a current record whose count is below
	// limit, returning the updated record.
	Increment(ctx context.Context, key string, now time.Time, limit int) (*domain.RateLimitRecord, bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}
