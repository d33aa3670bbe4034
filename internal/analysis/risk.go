package analysis

import (
	"strings"

	"github.com/yungbote/mentamind-backend/internal/domain"
)

var DefaultHighRiskThemes = []string{"suicide", "self-harm", "hopelessness", "crisis"}

// CalculateRiskLevel applies the first matching rule: any crisis intensity
// or high-risk theme is high, any high intensity is elevated, more than
// three analyses is moderate, otherwise low. With no themes given it uses
// DefaultHighRiskThemes.
func CalculateRiskLevel(analyses []*domain.EmotionAnalysis, highRiskThemes ...string) domain.RiskLevel {
	if len(highRiskThemes) == 0 {
		highRiskThemes = DefaultHighRiskThemes
	}
	risky := make(map[string]bool, len(highRiskThemes))
	for _, t := range highRiskThemes {
		risky[strings.ToLower(strings.TrimSpace(t))] = true
	}

	var hasCrisis, hasHigh, hasRiskyTheme bool
	for _, a := range analyses {
		if a == nil {
			continue
		}
		switch a.Intensity {
		case domain.IntensityCrisis:
			hasCrisis = true
		case domain.IntensityHigh:
			hasHigh = true
		}
		for _, t := range a.Themes {
			if risky[strings.ToLower(strings.TrimSpace(t))] {
				hasRiskyTheme = true
			}
		}
	}

	switch {
	case hasCrisis || hasRiskyTheme:
		return domain.RiskHigh
	case hasHigh:
		return domain.RiskElevated
	case len(analyses) > 3:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}
