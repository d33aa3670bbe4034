package ratelimit

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

// GormStore keeps records in the rate_limits table. Each operation is one
// conditional statement, so concurrent processes never lose an increment.
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) *GormStore {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &GormStore{db: db, log: baseLog.With("repo", "RateLimitStore")}
}

func (s *GormStore) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	var rec domain.RateLimitRecord
	err := s.db.WithContext(ctx).Where("rate_key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// StartWindow is INSERT ... ON CONFLICT (rate_key) DO UPDATE ... WHERE the
// stored window has ended. A live window makes the statement a no-op.
func (s *GormStore) StartWindow(ctx context.Context, key string, now, resetAt time.Time) (bool, error) {
	rec := domain.RateLimitRecord{
		Key:       key,
		Count:     1,
		ResetTime: resetAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rate_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      1,
			"reset_time": resetAt,
			"updated_at": now,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "rate_limits.reset_time <= ?", Vars: []interface{}{now}},
		}},
	}).Create(&rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Increment(ctx context.Context, key string, now time.Time, limit int) (*domain.RateLimitRecord, bool, error) {
	var rows []domain.RateLimitRecord
	res := s.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("rate_key = ? AND reset_time > ? AND count < ?", key, now, limit).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 || len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("reset_time <= ?", now).Delete(&domain.RateLimitRecord{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.RateLimitRecord{}).Where("reset_time > ?", now).Count(&n).Error
	return n, err
}
