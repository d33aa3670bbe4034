package middleware

import "errors"

var (
	errAnonymousIDRequired = errors.New("Anonymous ID required")
	errInvalidAnonymousID  = errors.New("Anonymous ID too long")
	errUnauthorized        = errors.New("Unauthorized")
	errBodyTooLarge        = errors.New("Request body too large")
)
