package services

import (
	"strings"
	"unicode/utf8"

	"github.com/yungbote/mentamind-backend/internal/platform/apierr"
)

// MaxContentLength caps chat messages, posts and replies, in characters.
const MaxContentLength = 2000

// validateContent trims text and enforces the shared length cap. label is
// the user-facing noun ("Message", "Content").
func validateContent(label, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apierr.BadRequest(strings.ToLower(label)+"_required", label+" is required")
	}
	if utf8.RuneCountInString(text) > MaxContentLength {
		return "", apierr.BadRequest(strings.ToLower(label)+"_too_long", label+" too long (max 2000 characters)")
	}
	return trimmed, nil
}
