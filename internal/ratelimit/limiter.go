// Package ratelimit implements fixed-window, per-identity action limits that
// stay correct when several server processes share one store.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/policy"
)

type Action string

const (
	ActionPost  Action = "post"
	ActionReply Action = "reply"
	ActionChat  Action = "chat"
)

var (
	ErrUnknownAction   = errors.New("ratelimit: unknown action")
	ErrMissingIdentity = errors.New("ratelimit: identity required")
)

// maxAttempts bounds the increment/start/read loop when concurrent callers
// keep moving the record between states.
const maxAttempts = 3

type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules are used when no policy is supplied.
var DefaultRules = map[Action]Rule{
	ActionPost:  {Limit: 5, Window: time.Hour},
	ActionReply: {Limit: 20, Window: time.Hour},
	ActionChat:  {Limit: 10, Window: time.Minute},
}

func RulesFromPolicy(p *policy.Policy) map[Action]Rule {
	if p == nil {
		return DefaultRules
	}
	out := make(map[Action]Rule, len(p.RateLimits))
	for k, v := range p.RateLimits {
		out[Action(k)] = Rule{Limit: v.Limit, Window: v.Window}
	}
	return out
}

// Decision is the outcome of one Check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
	// FailOpen is set when the store could not be consulted and the request
	// was let through.
	FailOpen bool
}

type Limiter struct {
	store   Store
	rules   map[Action]Rule
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

func New(store Store, rules map[Action]Rule, log *logger.Logger, opts ...Option) *Limiter {
	if rules == nil {
		rules = DefaultRules
	}
	if log == nil {
		log = logger.Nop()
	}
	l := &Limiter{
		store: store,
		rules: rules,
		log:   log.With("component", "RateLimiter"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Rule(action Action) (Rule, bool) {
	r, ok := l.rules[action]
	return r, ok
}

func Key(identity string, action Action) string {
	return identity + ":" + string(action)
}

// Check counts one attempt of action by identity and reports whether it is
// allowed. Store failures never block the caller: the decision fails open.
func (l *Limiter) Check(ctx context.Context, identity string, action Action) (Decision, error) {
	rule, ok := l.rules[action]
	if !ok || rule.Limit <= 0 || rule.Window <= 0 {
		return Decision{}, ErrUnknownAction
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Decision{}, ErrMissingIdentity
	}
	key := Key(identity, action)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		now := l.now().UTC()

		rec, ok, err := l.store.Increment(ctx, key, now, rule.Limit)
		if err != nil {
			return l.failOpen(action, rule, key, err), nil
		}
		if ok {
			return l.allowed(action, rule, rec.Count, rec.ResetTime.Sub(now)), nil
		}

		started, err := l.store.StartWindow(ctx, key, now, now.Add(rule.Window))
		if err != nil {
			return l.failOpen(action, rule, key, err), nil
		}
		if started {
			return l.allowed(action, rule, 1, rule.Window), nil
		}

		cur, err := l.store.Get(ctx, key)
		if err != nil {
			return l.failOpen(action, rule, key, err), nil
		}
		if cur.Current(now) && cur.Count >= rule.Limit {
			l.metrics.ObserveRateLimit(string(action), "rejected")
			return Decision{
				Allowed:   false,
				Limit:     rule.Limit,
				Remaining: 0,
				ResetIn:   cur.ResetTime.Sub(now),
			}, nil
		}
		// The record changed state between calls; go around again.
	}
	return l.failOpen(action, rule, key, errors.New("record kept changing under contention")), nil
}

func (l *Limiter) allowed(action Action, rule Rule, count int, resetIn time.Duration) Decision {
	l.metrics.ObserveRateLimit(string(action), "allowed")
	remaining := rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	if resetIn < 0 {
		resetIn = 0
	}
	return Decision{Allowed: true, Limit: rule.Limit, Remaining: remaining, ResetIn: resetIn}
}

func (l *Limiter) failOpen(action Action, rule Rule, key string, err error) Decision {
	l.log.Warn("rate limit store unavailable; allowing request", "key", key, "error", err)
	l.metrics.ObserveRateLimit(string(action), "fail_open")
	return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit, ResetIn: rule.Window, FailOpen: true}
}

// ActiveCount is the number of unexpired records, used as an activity signal.
func (l *Limiter) ActiveCount(ctx context.Context) (int64, error) {
	return l.store.CountActive(ctx, l.now().UTC())
}
