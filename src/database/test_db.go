package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// NewTestDatabase creates an in-memory SQLite database for testing.
// Repositories create their own tables through EnsureTable, so tests run the
// same DDL and queries as production without a Postgres instance.
func NewTestDatabase(logger *logrus.Logger) (*DB, error) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// Every connection to :memory: is a separate database; pin to one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping test database: %w", err)
	}

	logger.Debug("Test database (SQLite in-memory) initialized")

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}
