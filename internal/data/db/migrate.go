package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Safety
		&types.RateLimitRecord{},

		// Background analysis
		&types.EmotionAnalysis{},

		// Forum
		&types.Post{},
		&types.PostLike{},
		&types.Reply{},
	)
}
