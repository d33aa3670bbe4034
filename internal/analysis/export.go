package analysis

import (
	"fmt"
	"strings"
)

const exportTimeLayout = "2006-01-02 15:04:05 MST"

// FormatSummaryForExport renders a plain-text report for download.
func FormatSummaryForExport(s *PsychologistSummary, sessionID string) string {
	if s == nil {
		return ""
	}
	lines := []string{
		"=== MENTAMIND CLINICAL SUMMARY ===",
		"",
		"Session ID: " + sessionID,
		"Generated: " + s.GeneratedAt.UTC().Format(exportTimeLayout),
		"Risk Level: " + strings.ToUpper(string(s.RiskLevel)),
		fmt.Sprintf("Analyses Reviewed: %d", s.AnalysisCount),
		"",
		"--- SUMMARY ---",
		s.Summary,
		"",
		"--- RECOMMENDATIONS ---",
	}
	for i, r := range s.Recommendations {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	lines = append(lines, "", "=== END OF SUMMARY ===")
	return strings.Join(lines, "\n")
}
