package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
)

var (
	errInvalidBody  = errors.New("Invalid request body")
	errBodyTooLarge = errors.New("Request body too large")
	errPostNotFound = errors.New("Post not found")
)

// respondBindError answers a failed JSON bind. Bodies cut off by the size
// limit get the same answer as the middleware's Content-Length check.
func respondBindError(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		response.RespondError(c, http.StatusBadRequest, "body_too_large", errBodyTooLarge)
		return
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidBody)
}
