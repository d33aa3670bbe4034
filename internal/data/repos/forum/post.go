package forum

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	SortNew = "new"
	SortTop = "top"
	SortHot = "hot"
)

// HotCandidateLimit bounds how many recent posts are scored for the hot feed.
// Older posts are not reachable through it.
const HotCandidateLimit = 500

type PostListQuery struct {
	Sort   string
	Offset int
	Limit  int
	Now    time.Time
}

type PostRepo interface {
	Create(dbc dbctx.Context, post *types.Post) (*types.Post, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Post, error)
	List(dbc dbctx.Context, q PostListQuery) ([]*types.Post, error)
	Count(dbc dbctx.Context) (int64, error)
	CountSince(dbc dbctx.Context, since time.Time) (int64, error)
	AddLikes(dbc dbctx.Context, id uuid.UUID, delta int) error
	IncrementReplyCount(dbc dbctx.Context, id uuid.UUID) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, log *logger.Logger) PostRepo {
	return &postRepo{db: db, log: log.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, post *types.Post) (*types.Post, error) {
	if post == nil {
		return nil, fmt.Errorf("missing post")
	}
	if err := dbc.Conn(r.db).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// GetByID returns (nil, nil) when the post does not exist.
func (r *postRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Post, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing post_id")
	}
	var out types.Post
	err := dbc.Conn(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postRepo) List(dbc dbctx.Context, q PostListQuery) ([]*types.Post, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	conn := dbc.Conn(r.db).Model(&types.Post{})

	switch strings.ToLower(strings.TrimSpace(q.Sort)) {
	case SortTop:
		var out []*types.Post
		err := conn.Order("likes DESC").Order("created_at DESC").
			Offset(q.Offset).Limit(q.Limit).Find(&out).Error
		return out, err
	case SortHot:
		var candidates []*types.Post
		if err := conn.Order("created_at DESC").Limit(HotCandidateLimit).Find(&candidates).Error; err != nil {
			return nil, err
		}
		now := q.Now
		if now.IsZero() {
			now = time.Now()
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return HotScore(candidates[i], now) > HotScore(candidates[j], now)
		})
		if q.Offset >= len(candidates) {
			return []*types.Post{}, nil
		}
		end := q.Offset + q.Limit
		if end > len(candidates) {
			end = len(candidates)
		}
		return candidates[q.Offset:end], nil
	default:
		var out []*types.Post
		err := conn.Order("created_at DESC").
			Offset(q.Offset).Limit(q.Limit).Find(&out).Error
		return out, err
	}
}

// HotScore weighs engagement against age: (likes + 2*replies) / (hours+2)^1.5.
func HotScore(p *types.Post, now time.Time) float64 {
	if p == nil {
		return 0
	}
	hours := now.Sub(p.CreatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return float64(p.Likes+p.ReplyCount*2) / math.Pow(hours+2, 1.5)
}

func (r *postRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.Post{}).Count(&n).Error
	return n, err
}

func (r *postRepo) CountSince(dbc dbctx.Context, since time.Time) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.Post{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *postRepo) AddLikes(dbc dbctx.Context, id uuid.UUID, delta int) error {
	res := dbc.Conn(r.db).Model(&types.Post{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepo) IncrementReplyCount(dbc dbctx.Context, id uuid.UUID) error {
	res := dbc.Conn(r.db).Model(&types.Post{}).
		Where("id = ?", id).
		UpdateColumn("reply_count", gorm.Expr("reply_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
