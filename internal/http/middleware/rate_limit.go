package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/pkg/httpx"
	"github.com/yungbote/mentamind-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/ratelimit"
)

// Limiter is the subset of *ratelimit.Limiter the middleware needs.
type Limiter interface {
	Check(ctx context.Context, identity string, action ratelimit.Action) (ratelimit.Decision, error)
}

type rateLimitBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type RateLimitMiddleware struct {
	log     *logger.Logger
	limiter Limiter
}

func NewRateLimitMiddleware(log *logger.Logger, limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{log: log.With("Middleware", "RateLimitMiddleware"), limiter: limiter}
}

// Limit counts one attempt of action for the caller. It must run after
// RequireAnonymousID.
func (m *RateLimitMiddleware) Limit(action ratelimit.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ctxutil.AnonymousID(c.Request.Context())
		if identity == "" {
			c.Abort()
			response.RespondError(c, http.StatusUnauthorized, "anonymous_id_required", errAnonymousIDRequired)
			return
		}

		d, err := m.limiter.Check(c.Request.Context(), identity, action)
		if err != nil {
			m.log.Error("rate limit misconfigured", "action", action, "error", err)
			c.Abort()
			response.RespondServiceError(c, err, "rate_limit_failed")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			secs := httpx.RetryAfterSeconds(d.ResetIn)
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitBody{
				Error:      "Rate limit exceeded",
				Message:    "Please wait before trying again",
				RetryAfter: secs,
			})
			return
		}
		c.Next()
	}
}
