package forum

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type ReplyRepo interface {
	Create(dbc dbctx.Context, reply *types.Reply) (*types.Reply, error)
	ListByPost(dbc dbctx.Context, postID uuid.UUID, limit int) ([]*types.Reply, error)
}

type replyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReplyRepo(db *gorm.DB, log *logger.Logger) ReplyRepo {
	return &replyRepo{db: db, log: log.With("repo", "ReplyRepo")}
}

func (r *replyRepo) Create(dbc dbctx.Context, reply *types.Reply) (*types.Reply, error) {
	if reply == nil || reply.PostID == uuid.Nil {
		return nil, fmt.Errorf("missing post_id")
	}
	if err := dbc.Conn(r.db).Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

// ListByPost returns replies oldest first.
func (r *replyRepo) ListByPost(dbc dbctx.Context, postID uuid.UUID, limit int) ([]*types.Reply, error) {
	if postID == uuid.Nil {
		return nil, fmt.Errorf("missing post_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*types.Reply
	if err := dbc.Conn(r.db).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
