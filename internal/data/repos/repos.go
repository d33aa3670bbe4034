package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentamind-backend/internal/data/repos/analysis"
	"github.com/yungbote/mentamind-backend/internal/data/repos/forum"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type PostRepo = forum.PostRepo
type PostLikeRepo = forum.PostLikeRepo
type ReplyRepo = forum.ReplyRepo
type PostListQuery = forum.PostListQuery

type EmotionAnalysisRepo = analysis.EmotionAnalysisRepo

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo { return forum.NewPostRepo(db, baseLog) }
func NewPostLikeRepo(db *gorm.DB, baseLog *logger.Logger) PostLikeRepo {
	return forum.NewPostLikeRepo(db, baseLog)
}
func NewReplyRepo(db *gorm.DB, baseLog *logger.Logger) ReplyRepo { return forum.NewReplyRepo(db, baseLog) }

func NewEmotionAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) EmotionAnalysisRepo {
	return analysis.NewEmotionAnalysisRepo(db, baseLog)
}
