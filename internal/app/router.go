package app

import (
	"github.com/yungbote/mentamind-backend/internal/http"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, m *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:         log,
		Metrics:     m,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		RateLimit: middleware.RateLimit,
		Admin:     middleware.Admin,

		HealthHandler:  handlers.Health,
		ChatHandler:    handlers.Chat,
		PostHandler:    handlers.Post,
		StatsHandler:   handlers.Stats,
		SummaryHandler: handlers.Summary,
	})
}
