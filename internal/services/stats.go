package services

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/yungbote/mentamind-backend/internal/data/repos"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	onlineBaseline = 150
	onlineJitter   = 20
)

// ActivityCounter reports how many identities acted recently.
type ActivityCounter interface {
	ActiveCount(ctx context.Context) (int64, error)
}

type CommunityStats struct {
	OnlineCount int64 `json:"onlineCount"`
	PostsToday  int64 `json:"postsToday"`
}

type StatsService interface {
	Community(dbc dbctx.Context) (*CommunityStats, error)
}

type statsService struct {
	log      *logger.Logger
	posts    repos.PostRepo
	activity ActivityCounter
	loc      *time.Location
	now      func() time.Time
	jitter   func() int64
}

// NewStatsService counts "today" in loc; nil means UTC.
func NewStatsService(baseLog *logger.Logger, postRepo repos.PostRepo, activity ActivityCounter, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{
		log:      baseLog.With("service", "StatsService"),
		posts:    postRepo,
		activity: activity,
		loc:      loc,
		now:      time.Now,
		jitter:   func() int64 { return rand.Int64N(onlineJitter) },
	}
}

// Community returns a softened online estimate and the number of posts since
// local midnight. Activity lookup failures count as zero active identities.
func (s *statsService) Community(dbc dbctx.Context) (*CommunityStats, error) {
	now := s.now().In(s.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	postsToday, err := s.posts.CountSince(dbc, midnight.UTC())
	if err != nil {
		return nil, err
	}

	var active int64
	if s.activity != nil {
		if active, err = s.activity.ActiveCount(contextOf(dbc)); err != nil {
			s.log.Warn("active identity count unavailable", "error", err)
			active = 0
		}
	}
	return &CommunityStats{
		OnlineCount: onlineBaseline + 2*active + s.jitter(),
		PostsToday:  postsToday,
	}, nil
}
