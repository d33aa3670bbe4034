package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Now().UTC().Truncate(time.Millisecond)}
}

type storeFactory func(t *testing.T) Store

func stores(t *testing.T) map[string]storeFactory {
	out := map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"gorm": func(t *testing.T) Store {
			return NewGormStore(testutil.DB(t), testutil.Logger(t))
		},
	}
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		out["redis"] = func(t *testing.T) Store {
			rdb := redis.NewClient(&redis.Options{Addr: addr})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisStore(rdb, fmt.Sprintf("mm:test:%d:", time.Now().UnixNano()))
		}
	}
	return out
}

func TestLimiterSequence(t *testing.T) {
	cases := []struct {
		action Action
		limit  int
		window time.Duration
	}{
		{ActionPost, 5, time.Hour},
		{ActionReply, 20, time.Hour},
		{ActionChat, 10, time.Minute},
	}
	for name, mk := range stores(t) {
		for _, tc := range cases {
			t.Run(name+"/"+string(tc.action), func(t *testing.T) {
				clock := newClock()
				l := New(mk(t), nil, testutil.Logger(t), WithClock(clock.Now))
				ctx := context.Background()

				for i := 0; i < tc.limit; i++ {
					d, err := l.Check(ctx, "anon-1", tc.action)
					require.NoError(t, err)
					require.True(t, d.Allowed, "attempt %d", i+1)
					assert.Equal(t, tc.limit-1-i, d.Remaining, "attempt %d", i+1)
					assert.Equal(t, tc.limit, d.Limit)
				}
				d, err := l.Check(ctx, "anon-1", tc.action)
				require.NoError(t, err)
				assert.False(t, d.Allowed)
				assert.Equal(t, 0, d.Remaining)
				assert.True(t, d.ResetIn > 0 && d.ResetIn <= tc.window, "resetIn=%s", d.ResetIn)

				clock.Advance(d.ResetIn)
				d, err = l.Check(ctx, "anon-1", tc.action)
				require.NoError(t, err)
				assert.True(t, d.Allowed)
				assert.Equal(t, tc.limit-1, d.Remaining)
				assert.Equal(t, tc.window, d.ResetIn)
			})
		}
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	for name, mk := range stores(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			l := New(mk(t), nil, testutil.Logger(t), WithClock(clock.Now))
			ctx := context.Background()

			for i := 0; i < 10; i++ {
				d, err := l.Check(ctx, "a", ActionChat)
				require.NoError(t, err)
				require.True(t, d.Allowed)
			}
			d, _ := l.Check(ctx, "a", ActionChat)
			assert.False(t, d.Allowed)

			other, _ := l.Check(ctx, "b", ActionChat)
			assert.True(t, other.Allowed)
			post, _ := l.Check(ctx, "a", ActionPost)
			assert.True(t, post.Allowed)
		})
	}
}

func TestLimiterConcurrentChecksNeverExceedLimit(t *testing.T) {
	racing := stores(t)
	racing["gorm"] = func(t *testing.T) Store {
		return NewGormStore(testutil.ConcurrentDB(t, 8), testutil.Logger(t))
	}
	for name, mk := range racing {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			l := New(mk(t), nil, testutil.Logger(t), WithClock(clock.Now))
			ctx := context.Background()
			key := fmt.Sprintf("racer-%d", time.Now().UnixNano())

			var allowed, failOpen int64
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < 25; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					d, err := l.Check(ctx, key, ActionChat)
					if err != nil || !d.Allowed {
						return
					}
					if d.FailOpen {
						atomic.AddInt64(&failOpen, 1)
						return
					}
					atomic.AddInt64(&allowed, 1)
				}()
			}
			close(start)
			wg.Wait()
			assert.Equal(t, int64(0), failOpen)
			assert.Equal(t, int64(10), allowed)
		})
	}
}

func TestLimiterUnknownAction(t *testing.T) {
	l := New(NewMemoryStore(), nil, nil)
	_, err := l.Check(context.Background(), "a", Action("vote"))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = l.Check(context.Background(), "  ", ActionChat)
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

type brokenStore struct{ MemoryStore }

var errStoreDown = errors.New("store down")

func (*brokenStore) Increment(context.Context, string, time.Time, int) (*domain.RateLimitRecord, bool, error) {
	return nil, false, errStoreDown
}

func TestLimiterFailsOpen(t *testing.T) {
	m := observability.New()
	l := New(&brokenStore{}, nil, testutil.Logger(t), WithMetrics(m))

	d, err := l.Check(context.Background(), "a", ActionPost)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.FailOpen)
	assert.Equal(t, 5, d.Remaining)
	assert.Equal(t, time.Hour, d.ResetIn)
	assert.Equal(t, float64(1), m.RateLimitDecisions("post", "fail_open"))
}

func TestActiveCountAndSweep(t *testing.T) {
	for name, mk := range stores(t) {
		if name == "redis" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			store := mk(t)
			l := New(store, nil, testutil.Logger(t), WithClock(clock.Now))
			ctx := context.Background()

			_, _ = l.Check(ctx, "a", ActionChat)
			_, _ = l.Check(ctx, "b", ActionChat)
			_, _ = l.Check(ctx, "a", ActionPost)

			n, err := l.ActiveCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			clock.Advance(2 * time.Minute)
			n, err = l.ActiveCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			sw := NewSweeper(store, time.Minute, testutil.Logger(t), nil)
			sw.now = clock.Now
			removed, err := sw.SweepOnce(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			rec, err := store.Get(ctx, Key("a", ActionPost))
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, 1, rec.Count)
		})
	}
}

func TestRulesFromPolicyDefaults(t *testing.T) {
	rules := RulesFromPolicy(nil)
	assert.Equal(t, Rule{Limit: 20, Window: time.Hour}, rules[ActionReply])
}
