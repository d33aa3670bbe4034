package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/http/response"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/services"
)

type SummaryHandler struct {
	summary services.SummaryService
}

func NewSummaryHandler(summary services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// GET /api/analysis/summary?sessionId=...
// GET /api/analysis/summary?hours=24
func (h *SummaryHandler) Get(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if sessionID := strings.TrimSpace(c.Query("sessionId")); sessionID != "" {
		out, err := h.summary.SessionSummary(dbc, sessionID)
		if err != nil {
			response.RespondServiceError(c, err, "summary_failed")
			return
		}
		response.RespondOK(c, out)
		return
	}
	out, err := h.summary.HighIntensity(dbc, queryInt(c, "hours", services.DefaultSummaryHours))
	if err != nil {
		response.RespondServiceError(c, err, "summary_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/analysis/summary/export?sessionId=...
func (h *SummaryHandler) Export(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	text, err := h.summary.Export(dbctx.Context{Ctx: c.Request.Context()}, sessionID)
	if err != nil {
		response.RespondServiceError(c, err, "export_failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="mentamind-summary.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
