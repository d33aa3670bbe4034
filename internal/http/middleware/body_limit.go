package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
)

// DefaultMaxBodyBytes caps request bodies, chat history included.
const DefaultMaxBodyBytes = 512 << 10

func MaxBodyBytes(n int64) gin.HandlerFunc {
	if n <= 0 {
		n = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.Abort()
			response.RespondError(c, http.StatusBadRequest, "body_too_large", errBodyTooLarge)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
