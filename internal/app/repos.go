package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentamind-backend/internal/data/repos"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type Repos struct {
	Posts    repos.PostRepo
	Likes    repos.PostLikeRepo
	Replies  repos.ReplyRepo
	Analyses repos.EmotionAnalysisRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Posts:    repos.NewPostRepo(db, log),
		Likes:    repos.NewPostLikeRepo(db, log),
		Replies:  repos.NewReplyRepo(db, log),
		Analyses: repos.NewEmotionAnalysisRepo(db, log),
	}
}
