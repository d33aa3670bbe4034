package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/data/repos"
	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/apierr"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	DefaultSummaryHours = 24
	MaxSummaryHours     = 24 * 30
	overviewLimit       = 50

	noAnalysesMessage = "No analyses found for this session"
)

// AnalysisView is a stored analysis as shown to clinicians.
type AnalysisView struct {
	ID                uuid.UUID `json:"id"`
	PrimaryEmotions   []string  `json:"primaryEmotions"`
	SecondaryEmotions []string  `json:"secondaryEmotions"`
	Themes            []string  `json:"themes"`
	PossibleCoreIssue string    `json:"possibleCoreIssue"`
	Intensity         string    `json:"intensity"`
	MessageCount      int       `json:"messageCount"`
	CreatedAt         time.Time `json:"createdAt"`
}

type SessionSummary struct {
	SessionID         string                        `json:"sessionId"`
	Message           string                        `json:"message,omitempty"`
	AnalysisCount     int                           `json:"analysisCount,omitempty"`
	Summary           *analysis.PsychologistSummary `json:"summary,omitempty"`
	ComputedRiskLevel types.RiskLevel               `json:"computedRiskLevel,omitempty"`
	Analyses          []AnalysisView                `json:"analyses"`
}

type SessionActivity struct {
	SessionID       string    `json:"sessionId"`
	AnalysisCount   int       `json:"analysisCount"`
	LatestIntensity string    `json:"latestIntensity"`
	LatestCoreIssue string    `json:"latestCoreIssue"`
	PrimaryEmotions []string  `json:"primaryEmotions"`
	LastActivity    time.Time `json:"lastActivity"`
}

type HighIntensityOverview struct {
	Hours              int               `json:"hours"`
	TotalHighIntensity int               `json:"totalHighIntensity"`
	UniqueSessions     int               `json:"uniqueSessions"`
	Sessions           []SessionActivity `json:"sessions"`
}

// SummaryGenerator turns a session's analyses into a clinician summary.
type SummaryGenerator interface {
	Generate(ctx context.Context, analyses []*types.EmotionAnalysis) *analysis.PsychologistSummary
}

type SummaryService interface {
	SessionSummary(dbc dbctx.Context, sessionID string) (*SessionSummary, error)
	HighIntensity(dbc dbctx.Context, hours int) (*HighIntensityOverview, error)
	// Export renders the session summary as plain text. It fails with 404
	// when the session has no analyses.
	Export(dbc dbctx.Context, sessionID string) (string, error)
}

type summaryService struct {
	log            *logger.Logger
	analyses       repos.EmotionAnalysisRepo
	summarizer     SummaryGenerator
	highRiskThemes []string
	now            func() time.Time
}

func NewSummaryService(
	baseLog *logger.Logger,
	analysisRepo repos.EmotionAnalysisRepo,
	summarizer SummaryGenerator,
	highRiskThemes []string,
) SummaryService {
	return &summaryService{
		log:            baseLog.With("service", "SummaryService"),
		analyses:       analysisRepo,
		summarizer:     summarizer,
		highRiskThemes: highRiskThemes,
		now:            time.Now,
	}
}

func (s *summaryService) SessionSummary(dbc dbctx.Context, sessionID string) (*SessionSummary, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apierr.BadRequest("session_id_required", "sessionId is required")
	}
	rows, err := s.analyses.ListBySession(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &SessionSummary{SessionID: sessionID, Message: noAnalysesMessage, Analyses: []AnalysisView{}}, nil
	}

	out := &SessionSummary{
		SessionID:         sessionID,
		AnalysisCount:     len(rows),
		ComputedRiskLevel: analysis.CalculateRiskLevel(rows, s.highRiskThemes...),
		Analyses:          make([]AnalysisView, 0, len(rows)),
	}
	if s.summarizer != nil {
		out.Summary = s.summarizer.Generate(contextOf(dbc), rows)
	}
	for _, a := range rows {
		out.Analyses = append(out.Analyses, toAnalysisView(a))
	}
	return out, nil
}

func (s *summaryService) HighIntensity(dbc dbctx.Context, hours int) (*HighIntensityOverview, error) {
	if hours <= 0 {
		hours = DefaultSummaryHours
	}
	if hours > MaxSummaryHours {
		hours = MaxSummaryHours
	}
	since := s.now().UTC().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.analyses.ListByIntensitySince(dbc,
		[]types.Intensity{types.IntensityHigh, types.IntensityCrisis}, since, overviewLimit)
	if err != nil {
		return nil, err
	}

	// rows are newest first, so the first row seen per session is its latest.
	bySession := map[string]*SessionActivity{}
	seenEmotion := map[string]map[string]bool{}
	order := []string{}
	for _, a := range rows {
		act, ok := bySession[a.SessionID]
		if !ok {
			act = &SessionActivity{
				SessionID:       a.SessionID,
				LatestIntensity: string(a.Intensity),
				LatestCoreIssue: a.PossibleCoreIssue,
				PrimaryEmotions: []string{},
				LastActivity:    a.CreatedAt,
			}
			bySession[a.SessionID] = act
			seenEmotion[a.SessionID] = map[string]bool{}
			order = append(order, a.SessionID)
		}
		act.AnalysisCount++
		for _, e := range a.PrimaryEmotions {
			if !seenEmotion[a.SessionID][e] {
				seenEmotion[a.SessionID][e] = true
				act.PrimaryEmotions = append(act.PrimaryEmotions, e)
			}
		}
	}

	sessions := make([]SessionActivity, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, *bySession[id])
	}
	return &HighIntensityOverview{
		Hours:              hours,
		TotalHighIntensity: len(rows),
		UniqueSessions:     len(sessions),
		Sessions:           sessions,
	}, nil
}

func (s *summaryService) Export(dbc dbctx.Context, sessionID string) (string, error) {
	sum, err := s.SessionSummary(dbc, sessionID)
	if err != nil {
		return "", err
	}
	if sum.AnalysisCount == 0 {
		return "", apierr.NotFound("no_analyses", noAnalysesMessage)
	}
	report := sum.Summary
	if report == nil {
		s.log.Warn("summary unavailable; exporting computed risk only", "session_id", sum.SessionID)
		report = &analysis.PsychologistSummary{
			Summary:         "Summary not available.",
			Recommendations: []string{},
			RiskLevel:       sum.ComputedRiskLevel,
			GeneratedAt:     s.now().UTC(),
			AnalysisCount:   sum.AnalysisCount,
		}
	}
	return analysis.FormatSummaryForExport(report, sum.SessionID), nil
}

func toAnalysisView(a *types.EmotionAnalysis) AnalysisView {
	return AnalysisView{
		ID:                a.ID,
		PrimaryEmotions:   nonNil(a.PrimaryEmotions),
		SecondaryEmotions: nonNil(a.SecondaryEmotions),
		Themes:            nonNil(a.Themes),
		PossibleCoreIssue: a.PossibleCoreIssue,
		Intensity:         string(a.Intensity),
		MessageCount:      a.MessageCount,
		CreatedAt:         a.CreatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func contextOf(dbc dbctx.Context) context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return dbc.Ctx
}
