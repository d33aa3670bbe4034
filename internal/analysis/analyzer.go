// Package analysis turns chat transcripts into structured emotion snapshots
// and rolls stored snapshots up into clinician-facing summaries.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	minUserTurns        = 3
	analysisEvery       = 5
	analysisMaxTokens   = 200
	analysisTemperature = 0.1
)

var errNoJSONObject = errors.New("no JSON object in completion")

// ShouldRunAnalysis reports whether the n-th user message triggers a
// background analysis.
func ShouldRunAnalysis(userMessageCount int) bool {
	return userMessageCount > 0 && userMessageCount%analysisEvery == 0
}

type Analyzer struct {
	llm     llm.Completer
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewAnalyzer(c llm.Completer, log *logger.Logger, m *observability.Metrics) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{llm: c, log: log.With("component", "EmotionAnalyzer"), metrics: m, now: time.Now}
}

type rawAnalysis struct {
	PrimaryEmotions   []string `json:"primary_emotions"`
	SecondaryEmotions []string `json:"secondary_emotions"`
	Themes            []string `json:"themes"`
	PossibleCoreIssue string   `json:"possible_core_issue"`
	Intensity         string   `json:"intensity"`
}

// Analyze returns nil when the conversation is too short or the model's
// reply cannot be used. It never returns an error; failures are logged.
func (a *Analyzer) Analyze(ctx context.Context, sessionID string, turns []llm.Message) *domain.EmotionAnalysis {
	userTurns := countUserTurns(turns)
	if userTurns < minUserTurns {
		return nil
	}
	start := a.now()

	prompt := strings.Replace(emotionAnalysisPrompt, conversationPlaceholder, transcript(turns), 1)
	reply, err := a.llm.Complete(ctx, llm.CompletionRequest{
		History:     []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		a.log.Warn("emotion analysis completion failed", "session_id", sessionID, "error", err)
		a.metrics.ObserveAnalysis("completion_error", a.now().Sub(start))
		return nil
	}

	var raw rawAnalysis
	if err := decodeFirstObject(reply, &raw); err != nil {
		a.log.Warn("emotion analysis reply unparseable", "session_id", sessionID, "error", err)
		a.metrics.ObserveAnalysis("parse_error", a.now().Sub(start))
		return nil
	}
	if raw.PrimaryEmotions == nil || strings.TrimSpace(raw.Intensity) == "" {
		a.log.Warn("emotion analysis missing required fields", "session_id", sessionID)
		a.metrics.ObserveAnalysis("invalid", a.now().Sub(start))
		return nil
	}
	intensity, ok := domain.ParseIntensity(raw.Intensity)
	if !ok {
		a.log.Warn("emotion analysis unknown intensity", "session_id", sessionID, "intensity", raw.Intensity)
		a.metrics.ObserveAnalysis("invalid", a.now().Sub(start))
		return nil
	}

	core := strings.TrimSpace(raw.PossibleCoreIssue)
	if core == "" {
		core = domain.UnspecifiedCoreIssue
	}
	a.metrics.ObserveAnalysis("ok", a.now().Sub(start))
	return &domain.EmotionAnalysis{
		SessionID:         sessionID,
		PrimaryEmotions:   cleanList(raw.PrimaryEmotions),
		SecondaryEmotions: cleanList(raw.SecondaryEmotions),
		Themes:            cleanList(raw.Themes),
		PossibleCoreIssue: core,
		Intensity:         intensity,
		MessageCount:      userTurns,
		CreatedAt:         a.now().UTC(),
	}
}

// SanitizeAnalysis lower-cases and trims free-text fields before storage.
// The input is not modified.
func SanitizeAnalysis(in *domain.EmotionAnalysis) *domain.EmotionAnalysis {
	if in == nil {
		return nil
	}
	out := *in
	themes := make(datatypes.JSONSlice[string], 0, len(in.Themes))
	for _, t := range in.Themes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			themes = append(themes, t)
		}
	}
	out.Themes = themes
	out.PossibleCoreIssue = strings.ToLower(strings.TrimSpace(in.PossibleCoreIssue))
	if out.PossibleCoreIssue == "" {
		out.PossibleCoreIssue = domain.UnspecifiedCoreIssue
	}
	return &out
}

func countUserTurns(turns []llm.Message) int {
	n := 0
	for _, t := range turns {
		if t.Role == llm.RoleUser {
			n++
		}
	}
	return n
}

func transcript(turns []llm.Message) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, strings.ToUpper(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// decodeFirstObject decodes the span from the first '{' to the last '}',
// which tolerates code fences and chatter around the JSON.
func decodeFirstObject(text string, out any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return errNoJSONObject
	}
	return json.Unmarshal([]byte(text[start:end+1]), out)
}

func cleanList(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
