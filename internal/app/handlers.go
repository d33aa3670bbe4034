package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/mentamind-backend/internal/http/handlers"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Chat    *httpH.ChatHandler
	Post    *httpH.PostHandler
	Stats   *httpH.StatsHandler
	Summary *httpH.SummaryHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return Handlers{
		Health:  httpH.NewHealthHandler(ping),
		Chat:    httpH.NewChatHandler(serviceset.Chat),
		Post:    httpH.NewPostHandler(serviceset.Forum),
		Stats:   httpH.NewStatsHandler(log, serviceset.Stats),
		Summary: httpH.NewSummaryHandler(serviceset.Summary),
	}
}
