package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentamind-backend/internal/services"
)

type PostHandler struct {
	forum services.ForumService
}

func NewPostHandler(forum services.ForumService) *PostHandler {
	return &PostHandler{forum: forum}
}

type contentReq struct {
	Content string `json:"content"`
}

// GET /api/posts?page=1&limit=20&sort=new
func (h *PostHandler) List(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	page, err := h.forum.ListPosts(dbc, ctxutil.AnonymousID(dbc.Ctx), services.ListPostsQuery{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", services.DefaultPageSize),
		Sort:  c.Query("sort"),
	})
	if err != nil {
		response.RespondServiceError(c, err, "list_posts_failed")
		return
	}
	response.RespondOK(c, page)
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	created, err := h.forum.CreatePost(dbc, ctxutil.AnonymousID(dbc.Ctx), req.Content)
	if err != nil {
		response.RespondServiceError(c, err, "create_post_failed")
		return
	}
	response.RespondOK(c, created)
}

// POST /api/posts/:id/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	res, err := h.forum.ToggleLike(dbc, ctxutil.AnonymousID(dbc.Ctx), postID)
	if err != nil {
		response.RespondServiceError(c, err, "like_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/posts/:id/replies
func (h *PostHandler) ListReplies(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	replies, err := h.forum.ListReplies(dbctx.Context{Ctx: c.Request.Context()}, postID)
	if err != nil {
		response.RespondServiceError(c, err, "list_replies_failed")
		return
	}
	response.RespondOK(c, gin.H{"replies": replies})
}

// POST /api/posts/:id/replies
func (h *PostHandler) CreateReply(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	created, err := h.forum.CreateReply(dbc, ctxutil.AnonymousID(dbc.Ctx), postID, req.Content)
	if err != nil {
		response.RespondServiceError(c, err, "create_reply_failed")
		return
	}
	response.RespondOK(c, created)
}

func postIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "post_not_found", errPostNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
