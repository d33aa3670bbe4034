package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/platform/ctxutil"
)

const (
	HeaderAnonymousID = "X-Anonymous-Id"
	maxAnonymousIDLen = 255
)

// RequireAnonymousID rejects requests without the client's anonymous token.
func RequireAnonymousID() gin.HandlerFunc {
	return anonymousID(true)
}

// OptionalAnonymousID records the token when present so reads can be
// personalized, but never rejects.
func OptionalAnonymousID() gin.HandlerFunc {
	return anonymousID(false)
}

func anonymousID(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderAnonymousID))
		if len(id) > maxAnonymousIDLen {
			c.Abort()
			response.RespondError(c, http.StatusBadRequest, "invalid_anonymous_id", errInvalidAnonymousID)
			return
		}
		if id == "" {
			if required {
				c.Abort()
				response.RespondError(c, http.StatusUnauthorized, "anonymous_id_required", errAnonymousIDRequired)
				return
			}
			c.Next()
			return
		}
		rd := &ctxutil.RequestData{AnonymousID: id}
		if prev := ctxutil.GetRequestData(c.Request.Context()); prev != nil {
			rd.Principal, rd.Role = prev.Principal, prev.Role
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
