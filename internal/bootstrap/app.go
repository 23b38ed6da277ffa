package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/claim-ranker/internal/logger"
)

// Start wires the claim ranker together and runs the HTTP server until
// a shutdown signal arrives or the server fails.
func Start() error {
	// Phase 1: Load configuration and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Build storage, providers, pipeline and HTTP server
	comps, err := NewHTTPComponents(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := comps.DB.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	// Phase 3: Run until interrupted
	log.Info("Starting claim ranker",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Server.Port),
	)

	return comps.Server.Run()
}
