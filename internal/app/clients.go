package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type Clients struct {
	Redis redis.UniversalClient
	LLM   llm.Completer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		out.Redis = rdb
	} else if cfg.RateLimitStore == RateLimitStoreRedis {
		return Clients{}, fmt.Errorf("RATE_LIMIT_STORE=redis requires REDIS_ADDR")
	}

	// LLM
	switch cfg.LLMMode {
	case LLMModeMock:
		log.Warn("LLM_MODE=mock; completions are canned")
		out.LLM = llm.NewMock()
	case LLMModeLive, "":
		out.LLM = llm.New(cfg.LLM, log)
	default:
		return Clients{}, fmt.Errorf("unknown LLM_MODE %q", cfg.LLMMode)
	}
	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
