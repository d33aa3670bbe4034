package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/mentamind-backend/internal/domain"
)

const defaultRedisPrefix = "mm:rl:"

// Each key is a hash {c: count, r: reset time in unix ms} that redis expires
// at r, so DeleteExpired has nothing to do.
var (
	incrementScript = redis.NewScript(`
local c = redis.call('HGET', KEYS[1], 'c')
local r = redis.call('HGET', KEYS[1], 'r')
if not c or not r then return false end
if tonumber(r) <= tonumber(ARGV[1]) then return false end
if tonumber(c) >= tonumber(ARGV[2]) then return false end
local n = redis.call('HINCRBY', KEYS[1], 'c', 1)
return {n, r}
`)
	startWindowScript = redis.NewScript(`
local r = redis.call('HGET', KEYS[1], 'r')
if r and tonumber(r) > tonumber(ARGV[1]) then return 0 end
redis.call('HSET', KEYS[1], 'c', 1, 'r', ARGV[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[2])
return 1
`)
)

type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	vals, err := s.rdb.HMGet(ctx, s.prefix+key, "c", "r").Result()
	if err != nil {
		return nil, err
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, nil
	}
	count, err := strconv.Atoi(fmt.Sprint(vals[0]))
	if err != nil {
		return nil, fmt.Errorf("ratelimit: bad count for %s: %w", key, err)
	}
	reset, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: bad reset for %s: %w", key, err)
	}
	return &domain.RateLimitRecord{Key: key, Count: count, ResetTime: time.UnixMilli(reset).UTC()}, nil
}

func (s *RedisStore) StartWindow(ctx context.Context, key string, now, resetAt time.Time) (bool, error) {
	n, err := startWindowScript.Run(ctx, s.rdb, []string{s.prefix + key}, now.UnixMilli(), resetAt.UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, now time.Time, limit int) (*domain.RateLimitRecord, bool, error) {
	vals, err := incrementScript.Run(ctx, s.rdb, []string{s.prefix + key}, now.UnixMilli(), limit).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(vals) != 2 {
		return nil, false, fmt.Errorf("ratelimit: unexpected increment reply %v", vals)
	}
	count, ok := vals[0].(int64)
	if !ok {
		return nil, false, fmt.Errorf("ratelimit: unexpected count %T", vals[0])
	}
	reset, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return nil, false, err
	}
	return &domain.RateLimitRecord{
		Key:       key,
		Count:     int(count),
		ResetTime: time.UnixMilli(reset).UTC(),
		UpdatedAt: now,
	}, true, nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (s *RedisStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+"*", 500).Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}
