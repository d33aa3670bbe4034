package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	summaryMaxTokens   = 300
	summaryTemperature = 0.2

	summaryUnavailable = "Summary not available."
)

// PsychologistSummary is derived on demand and never stored.
type PsychologistSummary struct {
	Summary         string           `json:"summary"`
	Recommendations []string         `json:"recommendations"`
	RiskLevel       domain.RiskLevel `json:"risk_level"`
	GeneratedAt     time.Time        `json:"generated_at"`
	AnalysisCount   int              `json:"analysis_count"`
}

type Summarizer struct {
	llm            llm.Completer
	log            *logger.Logger
	metrics        *observability.Metrics
	highRiskThemes []string
	now            func() time.Time
}

func NewSummarizer(c llm.Completer, highRiskThemes []string, log *logger.Logger, m *observability.Metrics) *Summarizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Summarizer{
		llm:            c,
		log:            log.With("component", "Summarizer"),
		metrics:        m,
		highRiskThemes: highRiskThemes,
		now:            time.Now,
	}
}

type rawSummary struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	RiskLevel       string   `json:"risk_level"`
}

// Generate returns nil for empty input or when the model's reply is
// unusable. A missing or invalid model risk level falls back to the
// computed one.
func (s *Summarizer) Generate(ctx context.Context, analyses []*domain.EmotionAnalysis) *PsychologistSummary {
	if len(analyses) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(Aggregate(analyses), "", "  ")
	if err != nil {
		s.log.Error("summary aggregate encode failed", "error", err)
		s.metrics.IncSummary("encode_error")
		return nil
	}
	prompt := strings.Replace(summaryPrompt, analysisDataPlaceholder, string(data), 1)

	reply, err := s.llm.Complete(ctx, llm.CompletionRequest{
		History:     []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.log.Warn("summary completion failed", "error", err)
		s.metrics.IncSummary("completion_error")
		return nil
	}

	var raw rawSummary
	if err := decodeFirstObject(reply, &raw); err != nil {
		s.log.Warn("summary reply unparseable", "error", err)
		s.metrics.IncSummary("parse_error")
		return nil
	}

	out := &PsychologistSummary{
		Summary:         strings.TrimSpace(raw.Summary),
		Recommendations: cleanList(raw.Recommendations),
		GeneratedAt:     s.now().UTC(),
		AnalysisCount:   len(analyses),
	}
	if out.Summary == "" {
		out.Summary = summaryUnavailable
	}
	if risk, ok := domain.ParseRiskLevel(raw.RiskLevel); ok {
		out.RiskLevel = risk
	} else {
		out.RiskLevel = CalculateRiskLevel(analyses, s.highRiskThemes...)
	}
	s.metrics.IncSummary("ok")
	return out
}
