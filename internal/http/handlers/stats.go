package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/services"
)

// fallbackStats keeps the community widget populated when the database is down.
var fallbackStats = services.CommunityStats{OnlineCount: 247, PostsToday: 0}

type StatsHandler struct {
	log   *logger.Logger
	stats services.StatsService
}

func NewStatsHandler(log *logger.Logger, stats services.StatsService) *StatsHandler {
	return &StatsHandler{log: log.With("handler", "StatsHandler"), stats: stats}
}

// GET /api/stats
func (h *StatsHandler) Community(c *gin.Context) {
	out, err := h.stats.Community(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		h.log.Error("community stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, fallbackStats)
		return
	}
	c.JSON(http.StatusOK, out)
}
