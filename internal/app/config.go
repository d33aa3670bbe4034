package app

import (
	"strings"
	"time"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/data/db"
	"github.com/yungbote/mentamind-backend/internal/platform/envutil"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/ratelimit"
	"github.com/yungbote/mentamind-backend/internal/services"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreDB     = "db"
	RateLimitStoreRedis  = "redis"

	LLMModeLive = "live"
	LLMModeMock = "mock"

	defaultAdminAPIKey = "mentamind-admin-key"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	DB db.Config

	RateLimitStore string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SweepInterval  time.Duration

	LLMMode         string
	LLM             llm.Config
	ChatTemperature float64

	AnalysisWorkers   int
	AnalysisQueueSize int

	AdminAPIKey     string
	AdminAPIKeyHash string
	AdminJWTSecret  string

	CrisisRegion string
	StatsTZ      string

	CORSOrigins []string
	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "mentamind"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "mentamind.db"),
		},

		RateLimitStore: strings.ToLower(envutil.String("RATE_LIMIT_STORE", RateLimitStoreDB)),
		RedisAddr:      envutil.String("REDIS_ADDR", ""),
		RedisPassword:  envutil.String("REDIS_PASSWORD", ""),
		RedisDB:        envutil.Int("REDIS_DB", 0),
		SweepInterval:  envutil.Seconds("RATE_LIMIT_SWEEP_SECONDS", ratelimit.DefaultSweepInterval),

		LLMMode: strings.ToLower(envutil.String("LLM_MODE", LLMModeLive)),
		LLM: llm.Config{
			APIKey:     envutil.String("OPENROUTER_API_KEY", ""),
			BaseURL:    envutil.String("OPENROUTER_BASE_URL", llm.DefaultBaseURL),
			Model:      envutil.String("OPENROUTER_MODEL", llm.DefaultModel),
			SiteURL:    envutil.String("OPENROUTER_SITE_URL", "http://localhost:3000"),
			SiteName:   envutil.String("OPENROUTER_SITE_NAME", "MentaMind"),
			Timeout:    envutil.Seconds("LLM_TIMEOUT_SECONDS", 30*time.Second),
			MaxRetries: envutil.Int("LLM_MAX_RETRIES", 2),
		},
		ChatTemperature: envutil.Float("CHAT_TEMPERATURE", services.DefaultTemperature),

		AnalysisWorkers:   envutil.Int("ANALYSIS_WORKERS", analysis.DefaultQueueWorkers),
		AnalysisQueueSize: envutil.Int("ANALYSIS_QUEUE_SIZE", analysis.DefaultQueueSize),

		AdminAPIKey:     envutil.String("ADMIN_API_KEY", defaultAdminAPIKey),
		AdminAPIKeyHash: envutil.String("ADMIN_API_KEY_BCRYPT", ""),
		AdminJWTSecret:  envutil.String("ADMIN_JWT_SECRET", ""),

		CrisisRegion: envutil.String("CRISIS_REGION", ""),
		StatsTZ:      envutil.String("STATS_TIMEZONE", "UTC"),

		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil),
		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}

	if cfg.AdminAPIKey == defaultAdminAPIKey && cfg.AdminAPIKeyHash == "" {
		log.Warn("ADMIN_API_KEY is the built-in default; set it before exposing clinician routes")
	}
	if cfg.LLMMode == LLMModeLive && cfg.LLM.APIKey == "" {
		log.Warn("OPENROUTER_API_KEY not set; chat will serve fallback replies")
	}
	return cfg
}
