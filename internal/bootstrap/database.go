package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/idxwatch/internal/config"
	"github.com/jonesrussell/idxwatch/internal/database"
	"github.com/jonesrussell/idxwatch/internal/logger"
)

// SetupDatabase opens the SQLite store and applies migrations.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*database.DB, error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return db, nil
}
