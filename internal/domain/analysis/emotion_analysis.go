package analysis

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
	IntensityCrisis Intensity = "crisis"
)

var intensityRank = map[Intensity]int{
	IntensityLow:    0,
	IntensityMedium: 1,
	IntensityHigh:   2,
	IntensityCrisis: 3,
}

// ParseIntensity accepts any casing and surrounding whitespace.
func ParseIntensity(raw string) (Intensity, bool) {
	v := Intensity(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := intensityRank[v]
	return v, ok
}

// Rank orders intensities low < medium < high < crisis; unknown values rank -1.
func (i Intensity) Rank() int {
	if r, ok := intensityRank[i]; ok {
		return r
	}
	return -1
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

func ParseRiskLevel(raw string) (RiskLevel, bool) {
	v := RiskLevel(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case RiskLow, RiskModerate, RiskElevated, RiskHigh:
		return v, true
	default:
		return "", false
	}
}

const UnspecifiedCoreIssue = "unspecified"

// EmotionAnalysis is one structured snapshot of a conversation. Rows are
// written once by the background analyzer and never updated.
type EmotionAnalysis struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"column:session_id;type:varchar(255);not null;index:idx_emotion_analysis_session_created,priority:1" json:"session_id"`

	PrimaryEmotions   datatypes.JSONSlice[string] `gorm:"column:primary_emotions;not null" json:"primary_emotions"`
	SecondaryEmotions datatypes.JSONSlice[string] `gorm:"column:secondary_emotions;not null" json:"secondary_emotions"`
	Themes            datatypes.JSONSlice[string] `gorm:"column:themes;not null" json:"themes"`
	PossibleCoreIssue string                      `gorm:"column:possible_core_issue;type:text;not null" json:"possible_core_issue"`
	Intensity         Intensity                   `gorm:"column:intensity;type:varchar(16);not null;index" json:"intensity"`
	MessageCount      int                         `gorm:"column:message_count;not null" json:"message_count"`

	CreatedAt time.Time `gorm:"not null;index;index:idx_emotion_analysis_session_created,priority:2" json:"created_at"`
}

func (EmotionAnalysis) TableName() string { return "emotion_analyses" }

func (a *EmotionAnalysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PrimaryEmotions == nil {
		a.PrimaryEmotions = datatypes.JSONSlice[string]{}
	}
	if a.SecondaryEmotions == nil {
		a.SecondaryEmotions = datatypes.JSONSlice[string]{}
	}
	if a.Themes == nil {
		a.Themes = datatypes.JSONSlice[string]{}
	}
	return nil
}
