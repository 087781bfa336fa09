// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/idxwatch/internal/config"
	"github.com/jonesrussell/idxwatch/internal/database"
	"github.com/jonesrussell/idxwatch/internal/logger"
)

// NewTestDB opens an in-memory SQLite database with the full schema applied.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.Path = ":memory:"

	db, err := database.New(cfg, NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestLogger returns a logger that discards all output.
func NewTestLogger() logger.Logger {
	return logger.NewNop()
}
