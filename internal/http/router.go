package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mentamind-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentamind-backend/internal/http/middleware"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/ratelimit"
)

type RouterConfig struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	ServiceName  string
	CORSOrigins  []string
	MaxBodyBytes int64

	RateLimit *httpMW.RateLimitMiddleware
	Admin     *httpMW.AdminMiddleware

	HealthHandler  *httpH.HealthHandler
	ChatHandler    *httpH.ChatHandler
	PostHandler    *httpH.PostHandler
	StatsHandler   *httpH.StatsHandler
	SummaryHandler *httpH.SummaryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.MaxBodyBytes(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	identified := httpMW.RequireAnonymousID()
	limit := func(action ratelimit.Action) gin.HandlerFunc {
		if cfg.RateLimit == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return cfg.RateLimit.Limit(action)
	}

	// Chat
	if cfg.ChatHandler != nil {
		api.POST("/chat", identified, limit(ratelimit.ActionChat), cfg.ChatHandler.Send)
	}

	// Community
	if cfg.PostHandler != nil {
		api.GET("/posts", httpMW.OptionalAnonymousID(), cfg.PostHandler.List)
		api.POST("/posts", identified, limit(ratelimit.ActionPost), cfg.PostHandler.Create)
		api.POST("/posts/:id/like", identified, cfg.PostHandler.ToggleLike)
		api.GET("/posts/:id/replies", cfg.PostHandler.ListReplies)
		api.POST("/posts/:id/replies", identified, limit(ratelimit.ActionReply), cfg.PostHandler.CreateReply)
	}
	if cfg.StatsHandler != nil {
		api.GET("/stats", cfg.StatsHandler.Community)
	}

	// Clinician
	if cfg.SummaryHandler != nil && cfg.Admin != nil {
		admin := api.Group("/analysis", cfg.Admin.RequireAdmin())
		admin.GET("/summary", cfg.SummaryHandler.Get)
		admin.GET("/summary/export", cfg.SummaryHandler.Export)
	}

	return r
}
