package forum

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type PostLikeRepo interface {
	Find(dbc dbctx.Context, postID uuid.UUID, userID string) (*types.PostLike, error)
	Create(dbc dbctx.Context, like *types.PostLike) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	LikedPostIDs(dbc dbctx.Context, userID string, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type postLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostLikeRepo(db *gorm.DB, log *logger.Logger) PostLikeRepo {
	return &postLikeRepo{db: db, log: log.With("repo", "PostLikeRepo")}
}

func (r *postLikeRepo) Find(dbc dbctx.Context, postID uuid.UUID, userID string) (*types.PostLike, error) {
	var out types.PostLike
	err := dbc.Conn(r.db).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postLikeRepo) Create(dbc dbctx.Context, like *types.PostLike) error {
	if like == nil || like.PostID == uuid.Nil || like.UserID == "" {
		return fmt.Errorf("missing post_id or user_id")
	}
	return dbc.Conn(r.db).Create(like).Error
}

func (r *postLikeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.Conn(r.db).Where("id = ?", id).Delete(&types.PostLike{}).Error
}

func (r *postLikeRepo) LikedPostIDs(dbc dbctx.Context, userID string, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	if err := dbc.Conn(r.db).Model(&types.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
