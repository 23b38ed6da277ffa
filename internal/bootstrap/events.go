package bootstrap

import (
	"github.com/jonesrussell/claim-ranker/internal/config"
	"github.com/jonesrussell/claim-ranker/internal/events"
	"github.com/jonesrussell/claim-ranker/internal/logger"
	redisclient "github.com/jonesrussell/claim-ranker/internal/redisclient"
)

// SetupEventPublisher creates the optional Redis event publisher.
// Returns nil when events are disabled or Redis is unavailable; the
// service still runs, it just stops emitting claim events.
func SetupEventPublisher(cfg *config.Config, log logger.Logger) *events.Publisher {
	if !cfg.Redis.Enabled {
		log.Info("Claim events disabled")
		return nil
	}

	client, err := redisclient.NewClient(redisclient.Config{
		Address:  cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis not available, claim events disabled",
			logger.String("address", cfg.Redis.URL),
			logger.Error(err),
		)
		return nil
	}

	log.Info("Event publisher initialized",
		logger.String("address", cfg.Redis.URL),
		logger.String("stream", cfg.Redis.Stream),
	)
	return events.NewPublisher(client, cfg.Redis.Stream, log)
}
