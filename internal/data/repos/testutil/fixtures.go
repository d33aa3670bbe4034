package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
)

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID, content string, createdAt time.Time) *types.Post {
	tb.Helper()
	p := &types.Post{
		Content:    content,
		AuthorID:   authorID,
		AuthorName: "Test Author",
		CreatedAt:  createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

func SeedAnalysis(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID string, intensity types.Intensity, createdAt time.Time, primary ...string) *types.EmotionAnalysis {
	tb.Helper()
	a := &types.EmotionAnalysis{
		SessionID:         sessionID,
		PrimaryEmotions:   primary,
		PossibleCoreIssue: types.UnspecifiedCoreIssue,
		Intensity:         intensity,
		MessageCount:      5,
		CreatedAt:         createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed analysis: %v", err)
	}
	return a
}
