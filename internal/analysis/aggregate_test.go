package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
)

func ea(intensity domain.Intensity, themes []string, core string, primary ...string) *domain.EmotionAnalysis {
	return &domain.EmotionAnalysis{
		PrimaryEmotions:   primary,
		Themes:            themes,
		PossibleCoreIssue: core,
		Intensity:         intensity,
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate([]*domain.EmotionAnalysis{
		ea(domain.IntensityLow, []string{"work stress", "family"}, "unspecified", "anxiety"),
		ea(domain.IntensityHigh, []string{"work stress"}, "burnout", "anxiety", "sadness"),
		ea(domain.IntensityMedium, []string{"family", "work stress", "sleep"}, "burnout", "anger"),
	})
	assert.Equal(t, []string{"work stress", "family", "sleep"}, got.RecurringThemes)
	assert.Equal(t, []string{"anxiety", "sadness", "anger"}, got.DominantEmotions)
	assert.Equal(t, []string{"burnout"}, got.PotentialCoreIssues)
	assert.Equal(t, "high", got.PeakIntensity)
	assert.Equal(t, "low -> high -> medium", got.Progression)
	assert.Empty(t, got.UnderlyingEmotions)
}

func TestAggregateThemesOrdering(t *testing.T) {
	got := Aggregate([]*domain.EmotionAnalysis{
		ea(domain.IntensityLow, []string{"work stress"}, ""),
		ea(domain.IntensityLow, []string{"family", "work stress"}, ""),
	})
	assert.Equal(t, []string{"work stress", "family"}, got.RecurringThemes)
	assert.Equal(t, "low", got.PeakIntensity)
}

func TestCalculateRiskLevel(t *testing.T) {
	low := func() *domain.EmotionAnalysis { return ea(domain.IntensityLow, nil, "") }
	cases := []struct {
		name string
		in   []*domain.EmotionAnalysis
		want domain.RiskLevel
	}{
		{"crisis", []*domain.EmotionAnalysis{ea(domain.IntensityCrisis, nil, "")}, domain.RiskHigh},
		{"risky theme", []*domain.EmotionAnalysis{ea(domain.IntensityLow, []string{"Hopelessness"}, "")}, domain.RiskHigh},
		{"high", []*domain.EmotionAnalysis{ea(domain.IntensityHigh, nil, ""), low()}, domain.RiskElevated},
		{"four low", []*domain.EmotionAnalysis{low(), low(), low(), low()}, domain.RiskModerate},
		{"three low", []*domain.EmotionAnalysis{low(), low(), low()}, domain.RiskLow},
		{"one low", []*domain.EmotionAnalysis{low()}, domain.RiskLow},
	}
	for _, tc := range cases {
		if got := CalculateRiskLevel(tc.in); got != tc.want {
			t.Fatalf("%s: got=%s want=%s", tc.name, got, tc.want)
		}
	}
	if got := CalculateRiskLevel([]*domain.EmotionAnalysis{ea(domain.IntensityLow, []string{"grief"}, "")}, "grief"); got != domain.RiskHigh {
		t.Fatalf("custom themes: got=%s want=high", got)
	}
}

func TestSummarizerGenerate(t *testing.T) {
	mock := llm.NewMock("```{\"summary\":\"The user expresses anxiety.\",\"recommendations\":[\"Explore work boundaries\"],\"risk_level\":\"Moderate\"}```")
	s := NewSummarizer(mock, nil, nil, nil)
	fixed := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	in := []*domain.EmotionAnalysis{ea(domain.IntensityMedium, []string{"work stress"}, "burnout", "anxiety")}
	got := s.Generate(context.Background(), in)
	require.NotNil(t, got)
	assert.Equal(t, "The user expresses anxiety.", got.Summary)
	assert.Equal(t, domain.RiskModerate, got.RiskLevel)
	assert.Equal(t, 1, got.AnalysisCount)
	assert.Equal(t, fixed, got.GeneratedAt)

	call := mock.Calls()[0]
	assert.Equal(t, 300, call.MaxTokens)
	assert.Equal(t, 0.2, call.Temperature)
	prompt := call.History[0].Content
	assert.NotContains(t, prompt, analysisDataPlaceholder)
	assert.Contains(t, prompt, "\"recurring_themes\": [\n    \"work stress\"\n  ]")
}

func TestSummarizerDefaults(t *testing.T) {
	s := NewSummarizer(llm.NewMock(`{"risk_level":"catastrophic"}`), nil, nil, nil)
	in := []*domain.EmotionAnalysis{ea(domain.IntensityCrisis, nil, "")}
	got := s.Generate(context.Background(), in)
	require.NotNil(t, got)
	assert.Equal(t, "Summary not available.", got.Summary)
	assert.Empty(t, got.Recommendations)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"recommendations":[]`)
}

func TestSummarizerNilCases(t *testing.T) {
	s := NewSummarizer(llm.NewMock("no json here"), nil, nil, nil)
	assert.Nil(t, s.Generate(context.Background(), nil))
	assert.Nil(t, s.Generate(context.Background(), []*domain.EmotionAnalysis{ea(domain.IntensityLow, nil, "")}))
}

func TestFormatSummaryForExport(t *testing.T) {
	out := FormatSummaryForExport(&PsychologistSummary{
		Summary:         "The user expresses anxiety.",
		Recommendations: []string{"Explore sleep", "Discuss workload"},
		RiskLevel:       domain.RiskElevated,
		GeneratedAt:     time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		AnalysisCount:   4,
	}, "anon-42")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "=== MENTAMIND CLINICAL SUMMARY ===", lines[0])
	assert.Contains(t, out, "Session ID: anon-42")
	assert.Contains(t, out, "Generated: 2026-04-02 10:00:00 UTC")
	assert.Contains(t, out, "Risk Level: ELEVATED")
	assert.Contains(t, out, "Analyses Reviewed: 4")
	assert.Contains(t, out, "--- RECOMMENDATIONS ---\n1. Explore sleep\n2. Discuss workload")
	assert.Equal(t, "=== END OF SUMMARY ===", lines[len(lines)-1])
}
