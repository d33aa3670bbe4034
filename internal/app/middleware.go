package app

import (
	httpMW "github.com/yungbote/mentamind-backend/internal/http/middleware"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type Middleware struct {
	RateLimit *httpMW.RateLimitMiddleware
	Admin     *httpMW.AdminMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		RateLimit: httpMW.NewRateLimitMiddleware(log, serviceset.Limiter),
		Admin:     httpMW.NewAdminMiddleware(log, serviceset.AdminAuth),
	}
}
