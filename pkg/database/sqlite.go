package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"chamba-onchain-backend/pkg/logger"
)

// NewSQLiteConnection opens (and creates if needed) the sqlite file at path.
// ":memory:" opens a private in-memory database.
func NewSQLiteConnection(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// sqlite serializes writers; a single connection also keeps :memory: stable
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	logger.Log.Info("database connected", "driver", "sqlite", "path", path)
	return db, nil
}
