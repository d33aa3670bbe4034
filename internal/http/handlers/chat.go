package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatReq struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	reply, err := h.chat.Respond(dbc, ctxutil.AnonymousID(dbc.Ctx), services.ChatRequest{
		Message: req.Message,
		History: req.History,
	})
	if err != nil {
		response.RespondServiceError(c, err, "chat_failed")
		return
	}
	response.RespondOK(c, reply)
}
