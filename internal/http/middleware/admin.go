package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/services"
)

type AdminMiddleware struct {
	log  *logger.Logger
	auth services.AdminAuthService
}

func NewAdminMiddleware(log *logger.Logger, auth services.AdminAuthService) *AdminMiddleware {
	return &AdminMiddleware{log: log.With("Middleware", "AdminMiddleware"), auth: auth}
}

func (am *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := am.auth.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			am.log.Warn("admin request rejected", "path", c.FullPath(), "error", err)
			c.Abort()
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
