package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/claim-ranker/internal/config"
	"github.com/jonesrussell/claim-ranker/internal/database"
	"github.com/jonesrussell/claim-ranker/internal/logger"
)

// DatabaseComponents holds the database connection and the claims repository.
type DatabaseComponents struct {
	DB     *sqlx.DB
	Claims *database.ClaimsRepository
}

// SetupDatabase opens the SQLite claims database, applies the schema,
// and builds the repository.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	log.Info("Opening claims database",
		logger.String("path", cfg.Database.Path),
	)

	db, err := database.NewSQLiteConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info("Database connected successfully")

	return &DatabaseComponents{
		DB:     db,
		Claims: database.NewClaimsRepository(db),
	}, nil
}
