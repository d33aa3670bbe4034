package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentamind-backend/internal/data/repos"
	"github.com/yungbote/mentamind-backend/internal/data/repos/forum"
	types "github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/apierr"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/safety"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	maxReplies      = 200
)

// PostView is a post as seen by one caller.
type PostView struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Likes      int       `json:"likes"`
	ReplyCount int       `json:"replyCount"`
	CreatedAt  time.Time `json:"createdAt"`
	IsLiked    bool      `json:"isLiked"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

type PostPage struct {
	Posts      []PostView `json:"posts"`
	Sort       string     `json:"sort"`
	Pagination Pagination `json:"pagination"`
}

type ListPostsQuery struct {
	Page  int
	Limit int
	Sort  string
}

type CreatedPost struct {
	Post            PostView `json:"post"`
	CrisisResources string   `json:"crisisResources,omitempty"`
}

type CreatedReply struct {
	Reply           *types.Reply `json:"reply"`
	CrisisResources string       `json:"crisisResources,omitempty"`
}

type LikeResult struct {
	Success bool      `json:"success"`
	PostID  uuid.UUID `json:"postId"`
	Liked   bool      `json:"liked"`
	Likes   int       `json:"likes"`
}

type ForumService interface {
	ListPosts(dbc dbctx.Context, identity string, q ListPostsQuery) (*PostPage, error)
	// CreatePost stores the post even when it contains crisis language; the
	// resource message is returned alongside so the client can surface it.
	CreatePost(dbc dbctx.Context, identity, content string) (*CreatedPost, error)
	ToggleLike(dbc dbctx.Context, identity string, postID uuid.UUID) (*LikeResult, error)
	ListReplies(dbc dbctx.Context, postID uuid.UUID) ([]*types.Reply, error)
	CreateReply(dbc dbctx.Context, identity string, postID uuid.UUID, content string) (*CreatedReply, error)
}

type forumService struct {
	db         *gorm.DB
	log        *logger.Logger
	posts      repos.PostRepo
	likes      repos.PostLikeRepo
	replies    repos.ReplyRepo
	classifier *safety.Classifier
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewForumService(
	db *gorm.DB,
	baseLog *logger.Logger,
	postRepo repos.PostRepo,
	likeRepo repos.PostLikeRepo,
	replyRepo repos.ReplyRepo,
	classifier *safety.Classifier,
	m *observability.Metrics,
) ForumService {
	return &forumService{
		db:         db,
		log:        baseLog.With("service", "ForumService"),
		posts:      postRepo,
		likes:      likeRepo,
		replies:    replyRepo,
		classifier: classifier,
		metrics:    m,
		now:        time.Now,
	}
}

var errPostNotFound = apierr.NotFound("post_not_found", "Post not found")

func normalizeSort(raw string) string {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case forum.SortTop, forum.SortHot:
		return s
	default:
		return forum.SortNew
	}
}

func (s *forumService) ListPosts(dbc dbctx.Context, identity string, q ListPostsQuery) (*PostPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Sort = normalizeSort(q.Sort)
	offset := (q.Page - 1) * q.Limit

	rows, err := s.posts.List(dbc, repos.PostListQuery{
		Sort:   q.Sort,
		Offset: offset,
		Limit:  q.Limit,
		Now:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	total, err := s.posts.Count(dbc)
	if err != nil {
		return nil, err
	}
	if q.Sort == forum.SortHot && total > forum.HotCandidateLimit {
		total = forum.HotCandidateLimit
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	liked, err := s.likes.LikedPostIDs(dbc, identity, ids)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(rows))
	for _, p := range rows {
		views = append(views, toPostView(p, liked[p.ID]))
	}
	return &PostPage{
		Posts: views,
		Sort:  q.Sort,
		Pagination: Pagination{
			Page:    q.Page,
			Limit:   q.Limit,
			Total:   total,
			HasMore: int64(offset+len(views)) < total,
		},
	}, nil
}

func (s *forumService) CreatePost(dbc dbctx.Context, identity, content string) (*CreatedPost, error) {
	content, err := validateContent("Content", content)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.Create(dbc, &types.Post{
		Content:    content,
		AuthorID:   identity,
		AuthorName: AnonName(identity),
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	out := &CreatedPost{Post: toPostView(post, false)}
	if s.classifier.CheckForCrisis(content) {
		s.metrics.IncCrisisDetection("post")
		s.log.Info("crisis language in post", "identity", identity, "post_id", post.ID)
		out.CrisisResources = s.classifier.Response()
	}
	return out, nil
}

func (s *forumService) ToggleLike(dbc dbctx.Context, identity string, postID uuid.UUID) (*LikeResult, error) {
	out := &LikeResult{Success: true, PostID: postID}
	err := s.inTx(dbc, func(txc dbctx.Context) error {
		post, err := s.posts.GetByID(txc, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errPostNotFound
		}
		existing, err := s.likes.Find(txc, postID, identity)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.likes.Delete(txc, existing.ID); err != nil {
				return err
			}
			if err := s.posts.AddLikes(txc, postID, -1); err != nil {
				return err
			}
		} else {
			if err := s.likes.Create(txc, &types.PostLike{PostID: postID, UserID: identity, CreatedAt: s.now().UTC()}); err != nil {
				return err
			}
			if err := s.posts.AddLikes(txc, postID, 1); err != nil {
				return err
			}
			out.Liked = true
		}
		updated, err := s.posts.GetByID(txc, postID)
		if err != nil {
			return err
		}
		out.Likes = updated.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *forumService) ListReplies(dbc dbctx.Context, postID uuid.UUID) ([]*types.Reply, error) {
	post, err := s.posts.GetByID(dbc, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errPostNotFound
	}
	return s.replies.ListByPost(dbc, postID, maxReplies)
}

func (s *forumService) CreateReply(dbc dbctx.Context, identity string, postID uuid.UUID, content string) (*CreatedReply, error) {
	content, err := validateContent("Content", content)
	if err != nil {
		return nil, err
	}
	var reply *types.Reply
	err = s.inTx(dbc, func(txc dbctx.Context) error {
		post, err := s.posts.GetByID(txc, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errPostNotFound
		}
		reply, err = s.replies.Create(txc, &types.Reply{
			PostID:     postID,
			Content:    content,
			AuthorID:   identity,
			AuthorName: AnonName(identity),
			CreatedAt:  s.now().UTC(),
		})
		if err != nil {
			return err
		}
		return s.posts.IncrementReplyCount(txc, postID)
	})
	if err != nil {
		return nil, err
	}
	out := &CreatedReply{Reply: reply}
	if s.classifier.CheckForCrisis(content) {
		s.metrics.IncCrisisDetection("reply")
		s.log.Info("crisis language in reply", "identity", identity, "post_id", postID)
		out.CrisisResources = s.classifier.Response()
	}
	return out, nil
}

func (s *forumService) inTx(dbc dbctx.Context, fn func(txc dbctx.Context) error) error {
	return dbc.Conn(s.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func toPostView(p *types.Post, liked bool) PostView {
	name := p.AuthorName
	if name == "" {
		name = AnonName(p.AuthorID)
	}
	return PostView{
		ID:         p.ID,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		AuthorName: name,
		Likes:      p.Likes,
		ReplyCount: p.ReplyCount,
		CreatedAt:  p.CreatedAt,
		IsLiked:    liked,
	}
}
