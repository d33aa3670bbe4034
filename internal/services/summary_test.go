package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/data/repos"
	"github.com/yungbote/mentamind-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
)

func TestSessionSummary(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	testutil.SeedAnalysis(t, ctx, db, "s1", types.IntensityMedium, base, "anxiety")
	testutil.SeedAnalysis(t, ctx, db, "s1", types.IntensityHigh, base.Add(time.Hour), "sadness")

	mock := llm.NewMock(`{"summary":"Growing distress around work.","recommendations":["Check in weekly"],"risk_level":"moderate"}`)
	svc := NewSummaryService(log, repos.NewEmotionAnalysisRepo(db, log),
		analysis.NewSummarizer(mock, nil, log, nil), nil)
	dbc := dbctx.Context{Ctx: ctx}

	got, err := svc.SessionSummary(dbc, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AnalysisCount)
	assert.Equal(t, types.RiskElevated, got.ComputedRiskLevel)
	require.NotNil(t, got.Summary)
	assert.Equal(t, types.RiskModerate, got.Summary.RiskLevel)
	require.Len(t, got.Analyses, 2)
	assert.Equal(t, "medium", got.Analyses[0].Intensity)
	assert.Equal(t, []string{}, got.Analyses[0].Themes)

	empty, err := svc.SessionSummary(dbc, "nobody")
	require.NoError(t, err)
	assert.Equal(t, noAnalysesMessage, empty.Message)
	assert.Empty(t, empty.Analyses)
	assert.Nil(t, empty.Summary)

	_, err = svc.SessionSummary(dbc, " ")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestSessionExport(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	testutil.SeedAnalysis(t, ctx, db, "s1", types.IntensityCrisis, time.Now().UTC(), "despair")

	failing := llm.NewMock()
	failing.Err = context.DeadlineExceeded
	svc := NewSummaryService(log, repos.NewEmotionAnalysisRepo(db, log),
		analysis.NewSummarizer(failing, nil, log, nil), nil)
	dbc := dbctx.Context{Ctx: ctx}

	text, err := svc.Export(dbc, "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "=== MENTAMIND CLINICAL SUMMARY ==="))
	assert.Contains(t, text, "Risk Level: HIGH")
	assert.Contains(t, text, "Summary not available.")

	_, err = svc.Export(dbc, "nobody")
	requireStatus(t, err, http.StatusNotFound)
}

func TestHighIntensityOverview(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	testutil.SeedAnalysis(t, ctx, db, "s1", types.IntensityHigh, now.Add(-3*time.Hour), "anxiety", "fear")
	testutil.SeedAnalysis(t, ctx, db, "s1", types.IntensityCrisis, now.Add(-1*time.Hour), "fear", "despair")
	testutil.SeedAnalysis(t, ctx, db, "s2", types.IntensityHigh, now.Add(-2*time.Hour), "anger")
	testutil.SeedAnalysis(t, ctx, db, "s3", types.IntensityLow, now.Add(-time.Hour), "calm")
	testutil.SeedAnalysis(t, ctx, db, "s4", types.IntensityCrisis, now.Add(-30*time.Hour), "grief")

	svc := NewSummaryService(log, repos.NewEmotionAnalysisRepo(db, log), nil, nil).(*summaryService)
	svc.now = func() time.Time { return now }

	got, err := svc.HighIntensity(dbctx.Context{Ctx: ctx}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSummaryHours, got.Hours)
	assert.Equal(t, 3, got.TotalHighIntensity)
	assert.Equal(t, 2, got.UniqueSessions)
	require.Len(t, got.Sessions, 2)

	s1 := got.Sessions[0]
	assert.Equal(t, "s1", s1.SessionID)
	assert.Equal(t, 2, s1.AnalysisCount)
	assert.Equal(t, "crisis", s1.LatestIntensity)
	assert.Equal(t, []string{"fear", "despair", "anxiety"}, s1.PrimaryEmotions)
	assert.True(t, s1.LastActivity.Equal(now.Add(-time.Hour)))
	assert.Equal(t, "s2", got.Sessions[1].SessionID)

	wide, err := svc.HighIntensity(dbctx.Context{Ctx: ctx}, 48)
	require.NoError(t, err)
	assert.Equal(t, 3, wide.UniqueSessions)
}
