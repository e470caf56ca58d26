package database

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// DB holds the database connection pool
type DB struct {
	*sqlx.DB
	logger *logrus.Logger
}

// NewConnection opens the configured SQL database (postgres or sqlite3).
// CRITICAL: Fails fast if the connection cannot be established.
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	logger.WithFields(logrus.Fields{
		"driver": cfg.DatabaseDriver,
	}).Info("Connecting to database...")

	db, err := sqlx.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// SQLite allows a single writer; one connection keeps transactions serialized.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}

	if d, err := time.ParseDuration(cfg.DBConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(d)
	} else {
		logger.Warnf("Invalid DBConnMaxLifetime '%s', using default 5m", cfg.DBConnMaxLifetime)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if d, err := time.ParseDuration(cfg.DBConnMaxIdleTime); err == nil {
		db.SetConnMaxIdleTime(d)
	} else {
		logger.Warnf("Invalid DBConnMaxIdleTime '%s', using default 10m", cfg.DBConnMaxIdleTime)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("CRITICAL: failed to ping database (fail-fast): %w", err)
	}

	logger.WithField("driver", cfg.DatabaseDriver).Info("Database connection established")

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// NewDB wraps an existing sqlx handle (used by tests and tools)
func NewDB(db *sqlx.DB, logger *logrus.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	if db.logger != nil {
		db.logger.Info("Closing database connection...")
	}
	return db.DB.Close()
}

// HealthCheck verifies the database connection is still alive
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		if db.logger != nil {
			db.logger.WithError(err).Error("Database health check failed")
		}
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
