// Package policy loads the safety policy: per-action rate limits, crisis
// phrases, high-risk analysis themes and crisis resource messages.
package policy

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const policyPathEnv = "MENTAMIND_POLICY_YAML"

//go:embed safety_policy.yaml
var policyFS embed.FS

type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Crisis struct {
	DefaultRegion  string            `yaml:"default_region"`
	Phrases        []string          `yaml:"phrases"`
	HighRiskThemes []string          `yaml:"high_risk_themes"`
	Resources      map[string]string `yaml:"resources"`
}

type Policy struct {
	Name       string              `yaml:"policy"`
	Version    int                 `yaml:"version"`
	RateLimits map[string]RateRule `yaml:"rate_limits"`
	Crisis     Crisis              `yaml:"crisis"`
}

// Load reads the policy from MENTAMIND_POLICY_YAML when set, otherwise the
// embedded file. A policy that fails validation is replaced by Default().
func Load(log *logger.Logger) *Policy {
	data, err := read()
	if err == nil {
		var p *Policy
		if p, err = Parse(data); err == nil {
			return p
		}
	}
	if log != nil {
		log.Warn("safety policy load failed; using compiled defaults", "error", err)
	}
	return Default()
}

func read() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(policyPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return Embedded()
}

// Embedded returns the raw policy file compiled into the binary.
func Embedded() ([]byte, error) {
	return policyFS.ReadFile("safety_policy.yaml")
}

func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) normalize() {
	rules := make(map[string]RateRule, len(p.RateLimits))
	for k, v := range p.RateLimits {
		rules[strings.ToLower(strings.TrimSpace(k))] = v
	}
	p.RateLimits = rules
	p.Crisis.DefaultRegion = strings.ToLower(strings.TrimSpace(p.Crisis.DefaultRegion))
	p.Crisis.Phrases = lowerDedupe(p.Crisis.Phrases)
	p.Crisis.HighRiskThemes = lowerDedupe(p.Crisis.HighRiskThemes)
	res := make(map[string]string, len(p.Crisis.Resources))
	for k, v := range p.Crisis.Resources {
		res[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	p.Crisis.Resources = res
}

func (p *Policy) Validate() error {
	if p == nil {
		return errors.New("missing policy")
	}
	if strings.TrimSpace(p.Name) != "safety" {
		return fmt.Errorf("unexpected policy: %q", p.Name)
	}
	for _, kind := range []string{"post", "reply", "chat"} {
		rule, ok := p.RateLimits[kind]
		if !ok {
			return fmt.Errorf("rate_limits.%s is required", kind)
		}
		if rule.Limit <= 0 {
			return fmt.Errorf("rate_limits.%s.limit must be positive", kind)
		}
		if rule.Window <= 0 {
			return fmt.Errorf("rate_limits.%s.window must be positive", kind)
		}
	}
	if len(p.Crisis.Phrases) == 0 {
		return errors.New("crisis.phrases must not be empty")
	}
	if p.Crisis.DefaultRegion == "" {
		return errors.New("crisis.default_region is required")
	}
	if strings.TrimSpace(p.Crisis.Resources[p.Crisis.DefaultRegion]) == "" {
		return fmt.Errorf("crisis.resources.%s is required", p.Crisis.DefaultRegion)
	}
	return nil
}

// Default is the compiled copy of the embedded policy.
func Default() *Policy {
	return &Policy{
		Name:    "safety",
		Version: 1,
		RateLimits: map[string]RateRule{
			"post":  {Limit: 5, Window: time.Hour},
			"reply": {Limit: 20, Window: time.Hour},
			"chat":  {Limit: 10, Window: time.Minute},
		},
		Crisis: Crisis{
			DefaultRegion: "in",
			Phrases: []string{
				"suicide", "suicidal", "kill myself", "end my life", "want to die",
				"self-harm", "hurt myself", "cutting", "overdose", "no reason to live",
				"better off dead", "can't go on", "end it all",
			},
			HighRiskThemes: []string{"suicide", "self-harm", "hopelessness", "crisis"},
			Resources: map[string]string{
				"in": defaultIndiaResources,
				"us": defaultUSResources,
			},
		},
	}
}

const defaultIndiaResources = `I'm really sorry you're carrying this much right now. You are not alone, and help is available. Please talk to someone you trust or a mental health professional as soon as you can.

**Please reach out immediately (India):**
• **iCall:** 9152987821
• **Vandrevala Foundation:** 1860-2662-345 (24/7)
• **NIMHANS:** 080-46110007
• **Snehi:** 044-24640050

You don't have to face this alone. Would you like to talk more about what you're going through?`

const defaultUSResources = `I'm really sorry you're carrying this much right now. You are not alone, and help is available. Please talk to someone you trust or a mental health professional as soon as you can.

**Please reach out immediately (United States):**
• **988 Suicide & Crisis Lifeline:** call or text 988 (24/7)
• **Crisis Text Line:** text HOME to 741741

You don't have to face this alone. Would you like to talk more about what you're going through?`

func lowerDedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
