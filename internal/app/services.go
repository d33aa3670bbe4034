package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/policy"
	"github.com/yungbote/mentamind-backend/internal/ratelimit"
	"github.com/yungbote/mentamind-backend/internal/safety"
	"github.com/yungbote/mentamind-backend/internal/services"
)

type Services struct {
	Policy     *policy.Policy
	Classifier *safety.Classifier
	Limiter    *ratelimit.Limiter
	Sweeper    *ratelimit.Sweeper
	Queue      *analysis.Queue

	Chat      services.ChatService
	Forum     services.ForumService
	Stats     services.StatsService
	Summary   services.SummaryService
	AdminAuth services.AdminAuthService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, m *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	pol := policy.Load(log)
	classifier := safety.NewClassifier(pol, cfg.CrisisRegion)
	log.Info("Crisis resources selected", "region", classifier.Region())

	store, err := rateLimitStore(db, log, cfg, clients)
	if err != nil {
		return Services{}, err
	}
	limiter := ratelimit.New(store, ratelimit.RulesFromPolicy(pol), log, ratelimit.WithMetrics(m))
	sweeper := ratelimit.NewSweeper(store, cfg.SweepInterval, log, m)

	analyzer := analysis.NewAnalyzer(clients.LLM, log, m)
	queue := analysis.NewQueue(analyzer, reposet.Analyses, cfg.AnalysisWorkers, cfg.AnalysisQueueSize, log, m)
	summarizer := analysis.NewSummarizer(clients.LLM, pol.Crisis.HighRiskThemes, log, m)

	loc, err := time.LoadLocation(cfg.StatsTZ)
	if err != nil {
		log.Warn("unknown STATS_TIMEZONE; counting in UTC", "tz", cfg.StatsTZ, "error", err)
		loc = time.UTC
	}

	return Services{
		Policy:     pol,
		Classifier: classifier,
		Limiter:    limiter,
		Sweeper:    sweeper,
		Queue:      queue,

		Chat:    services.NewChatService(log, classifier, clients.LLM, queue, m, cfg.ChatTemperature),
		Forum:   services.NewForumService(db, log, reposet.Posts, reposet.Likes, reposet.Replies, classifier, m),
		Stats:   services.NewStatsService(log, reposet.Posts, limiter, loc),
		Summary: services.NewSummaryService(log, reposet.Analyses, summarizer, pol.Crisis.HighRiskThemes),
		AdminAuth: services.NewAdminAuthService(log, services.AdminAuthConfig{
			APIKey:     cfg.AdminAPIKey,
			APIKeyHash: cfg.AdminAPIKeyHash,
			JWTSecret:  cfg.AdminJWTSecret,
		}),
	}, nil
}

func rateLimitStore(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients) (ratelimit.Store, error) {
	switch cfg.RateLimitStore {
	case RateLimitStoreMemory:
		log.Warn("in-memory rate limits are per process; use db or redis when running more than one instance")
		return ratelimit.NewMemoryStore(), nil
	case RateLimitStoreDB, "":
		return ratelimit.NewGormStore(db, log), nil
	case RateLimitStoreRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("redis rate limit store requires REDIS_ADDR")
		}
		return ratelimit.NewRedisStore(clients.Redis, ""), nil
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_STORE %q", cfg.RateLimitStore)
	}
}
