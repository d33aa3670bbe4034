package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPolicyMatchesDefaults(t *testing.T) {
	data, err := policyFS.ReadFile("safety_policy.yaml")
	require.NoError(t, err)

	p, err := Parse(data)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.RateLimits, p.RateLimits)
	assert.Equal(t, def.Crisis.Phrases, p.Crisis.Phrases)
	assert.Equal(t, def.Crisis.HighRiskThemes, p.Crisis.HighRiskThemes)
	assert.Equal(t, def.Crisis.Resources["in"], p.Crisis.Resources["in"])
	assert.Equal(t, def.Crisis.Resources["us"], p.Crisis.Resources["us"])
}

func TestParseRejectsIncompletePolicy(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			name: "wrong_name",
			yaml: "policy: other\n",
		},
		{
			name: "missing_chat_rule",
			yaml: `policy: safety
rate_limits:
  post: {limit: 5, window: 1h}
  reply: {limit: 20, window: 1h}
crisis:
  default_region: in
  phrases: [suicide]
  resources: {in: help}
`,
		},
		{
			name: "zero_window",
			yaml: `policy: safety
rate_limits:
  post: {limit: 5, window: 0s}
  reply: {limit: 20, window: 1h}
  chat: {limit: 10, window: 1m}
crisis:
  default_region: in
  phrases: [suicide]
  resources: {in: help}
`,
		},
		{
			name: "missing_default_region_resources",
			yaml: `policy: safety
rate_limits:
  post: {limit: 5, window: 1h}
  reply: {limit: 20, window: 1h}
  chat: {limit: 10, window: 1m}
crisis:
  default_region: us
  phrases: [suicide]
  resources: {in: help}
`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestParseNormalizesCase(t *testing.T) {
	p, err := Parse([]byte(`policy: safety
rate_limits:
  POST: {limit: 1, window: 2h}
  reply: {limit: 2, window: 1h}
  chat: {limit: 3, window: 30s}
crisis:
  default_region: IN
  phrases: ["Kill Myself", "kill myself", " Suicide "]
  resources: {IN: help}
`))
	require.NoError(t, err)
	assert.Equal(t, RateRule{Limit: 1, Window: 2 * time.Hour}, p.RateLimits["post"])
	assert.Equal(t, []string{"kill myself", "suicide"}, p.Crisis.Phrases)
	assert.Equal(t, "help", p.Crisis.Resources["in"])
}
