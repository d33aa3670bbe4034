package domain

import (
	"github.com/yungbote/mentamind-backend/internal/domain/analysis"
	"github.com/yungbote/mentamind-backend/internal/domain/forum"
	"github.com/yungbote/mentamind-backend/internal/domain/safety"
)

type Intensity = analysis.Intensity
type RiskLevel = analysis.RiskLevel

const (
	IntensityLow    = analysis.IntensityLow
	IntensityMedium = analysis.IntensityMedium
	IntensityHigh   = analysis.IntensityHigh
	IntensityCrisis = analysis.IntensityCrisis

	RiskLow      = analysis.RiskLow
	RiskModerate = analysis.RiskModerate
	RiskElevated = analysis.RiskElevated
	RiskHigh     = analysis.RiskHigh

	UnspecifiedCoreIssue = analysis.UnspecifiedCoreIssue
)

var (
	ParseIntensity = analysis.ParseIntensity
	ParseRiskLevel = analysis.ParseRiskLevel
)

type EmotionAnalysis = analysis.EmotionAnalysis

type RateLimitRecord = safety.RateLimitRecord

type Post = forum.Post
type PostLike = forum.PostLike
type Reply = forum.Reply
