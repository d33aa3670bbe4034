package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/mentamind-backend/internal/domain"
)

// MemoryStore keeps records in process. It is only correct for a single
// server instance.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.RateLimitRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]domain.RateLimitRecord{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) StartWindow(ctx context.Context, key string, now, resetAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if ok && rec.Current(now) {
		return false, nil
	}
	if !ok {
		rec = domain.RateLimitRecord{Key: key, CreatedAt: now}
	}
	rec.Count = 1
	rec.ResetTime = resetAt
	rec.UpdatedAt = now
	s.records[key] = rec
	return true, nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string, now time.Time, limit int) (*domain.RateLimitRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || !rec.Current(now) || rec.Count >= limit {
		return nil, false, nil
	}
	rec.Count++
	rec.UpdatedAt = now
	s.records[key] = rec
	out := rec
	return &out, true, nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, rec := range s.records {
		if !rec.Current(now) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.records {
		if rec.Current(now) {
			n++
		}
	}
	return n, nil
}
