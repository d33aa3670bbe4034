package analysis

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type EmotionAnalysisRepo interface {
	Create(dbc dbctx.Context, row *types.EmotionAnalysis) (*types.EmotionAnalysis, error)
	// ListBySession returns a session's analyses in chronological order.
	ListBySession(dbc dbctx.Context, sessionID string) ([]*types.EmotionAnalysis, error)
	// ListByIntensitySince returns the newest analyses at the given
	// intensities created at or after since.
	ListByIntensitySince(dbc dbctx.Context, intensities []types.Intensity, since time.Time, limit int) ([]*types.EmotionAnalysis, error)
}

type emotionAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmotionAnalysisRepo(db *gorm.DB, log *logger.Logger) EmotionAnalysisRepo {
	return &emotionAnalysisRepo{db: db, log: log.With("repo", "EmotionAnalysisRepo")}
}

func (r *emotionAnalysisRepo) Create(dbc dbctx.Context, row *types.EmotionAnalysis) (*types.EmotionAnalysis, error) {
	if row == nil {
		return nil, fmt.Errorf("missing analysis")
	}
	if strings.TrimSpace(row.SessionID) == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *emotionAnalysisRepo) ListBySession(dbc dbctx.Context, sessionID string) ([]*types.EmotionAnalysis, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	var out []*types.EmotionAnalysis
	if err := dbc.Conn(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *emotionAnalysisRepo) ListByIntensitySince(dbc dbctx.Context, intensities []types.Intensity, since time.Time, limit int) ([]*types.EmotionAnalysis, error) {
	if len(intensities) == 0 {
		return []*types.EmotionAnalysis{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	vals := make([]string, 0, len(intensities))
	for _, i := range intensities {
		vals = append(vals, string(i))
	}
	var out []*types.EmotionAnalysis
	if err := dbc.Conn(r.db).
		Where("intensity IN ? AND created_at >= ?", vals, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
