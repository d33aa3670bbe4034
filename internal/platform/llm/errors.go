package llm

import (
	"errors"
	"fmt"
)

var ErrMissingAPIKey = errors.New("llm: api key not configured")

// HTTPError is a non-2xx reply from the completion endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "llm: upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("llm: upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("llm: upstream http error: status=%d body=%s", e.StatusCode, truncate(e.Body, 512))
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
