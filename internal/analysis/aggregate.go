package analysis

import (
	"sort"
	"strings"

	"github.com/yungbote/mentamind-backend/internal/domain"
)

// AggregateView is the rolled-up shape fed to the summary prompt.
type AggregateView struct {
	DominantEmotions    []string `json:"dominant_emotions"`
	UnderlyingEmotions  []string `json:"underlying_emotions"`
	RecurringThemes     []string `json:"recurring_themes"`
	PotentialCoreIssues []string `json:"potential_core_issues"`
	PeakIntensity       string   `json:"peak_intensity"`
	Progression         string   `json:"progression"`
}

// Aggregate combines analyses in the order given. Ties in frequency keep
// first-seen order.
func Aggregate(analyses []*domain.EmotionAnalysis) AggregateView {
	var primary, secondary, themes, issues []string
	peak := domain.IntensityLow
	progression := make([]string, 0, len(analyses))

	for _, a := range analyses {
		if a == nil {
			continue
		}
		primary = append(primary, a.PrimaryEmotions...)
		secondary = append(secondary, a.SecondaryEmotions...)
		themes = append(themes, a.Themes...)
		if ci := strings.TrimSpace(a.PossibleCoreIssue); ci != "" && ci != domain.UnspecifiedCoreIssue {
			issues = append(issues, ci)
		}
		if a.Intensity.Rank() > peak.Rank() {
			peak = a.Intensity
		}
		progression = append(progression, string(a.Intensity))
	}

	return AggregateView{
		DominantEmotions:    topN(primary, 3),
		UnderlyingEmotions:  topN(secondary, 3),
		RecurringThemes:     topN(themes, 3),
		PotentialCoreIssues: topN(issues, 2),
		PeakIntensity:       string(peak),
		Progression:         strings.Join(progression, " -> "),
	}
}

func topN(items []string, n int) []string {
	type entry struct {
		value string
		count int
		first int
	}
	idx := map[string]*entry{}
	entries := []*entry{}
	for i, it := range items {
		if e, ok := idx[it]; ok {
			e.count++
			continue
		}
		e := &entry{value: it, count: 1, first: i}
		idx[it] = e
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out
}
