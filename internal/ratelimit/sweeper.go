package ratelimit

import (
	"context"
	"time"

	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically removes records whose window has ended.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *logger.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewSweeper(store Store, interval time.Duration, log *logger.Logger, m *observability.Metrics) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log.With("component", "RateLimitSweeper"),
		metrics:  m,
		now:      time.Now,
	}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("rate limit sweep failed", "error", err)
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.metrics.AddRateLimitSwept(n)
	if n > 0 {
		s.log.Debug("swept expired rate limits", "count", n)
	}
	return n, nil
}
