// Package safety detects crisis language in user text and supplies the
// resource message shown instead of a generated reply.
package safety

import (
	"strings"

	"github.com/yungbote/mentamind-backend/internal/policy"
)

type Classifier struct {
	phrases  []string
	response string
	region   string
}

// NewClassifier uses the policy's phrases and the resource message for region.
// An unknown or empty region falls back to the policy default.
func NewClassifier(p *policy.Policy, region string) *Classifier {
	if p == nil {
		p = policy.Default()
	}
	region = strings.ToLower(strings.TrimSpace(region))
	msg, ok := p.Crisis.Resources[region]
	if !ok || strings.TrimSpace(msg) == "" {
		region = p.Crisis.DefaultRegion
		msg = p.Crisis.Resources[region]
	}
	phrases := make([]string, 0, len(p.Crisis.Phrases))
	for _, ph := range p.Crisis.Phrases {
		if ph = strings.ToLower(strings.TrimSpace(ph)); ph != "" {
			phrases = append(phrases, ph)
		}
	}
	return &Classifier{phrases: phrases, response: msg, region: region}
}

// CheckForCrisis is a case-insensitive substring match with no word
// boundaries, so "cutting" also matches inside longer words.
func (c *Classifier) CheckForCrisis(text string) bool {
	return c.MatchedPhrase(text) != ""
}

// MatchedPhrase returns the first configured phrase found in text, or "".
func (c *Classifier) MatchedPhrase(text string) string {
	if c == nil || text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

func (c *Classifier) Response() string {
	return c.response
}

func (c *Classifier) Region() string {
	return c.region
}
