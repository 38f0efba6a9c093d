// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and Postgres, plus schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/oshxona/go-food-backend/internal/config"
	"github.com/oshxona/go-food-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Open connects to the database selected by dsn: a postgres DSN opens
// Postgres, anything else is treated as a SQLite file path. SQLite gets
// WAL-mode PRAGMAs; both get a bounded connection pool and GORM query
// tracing.
func Open(dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if config.IsPostgresDSN(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
	} else {
		// Fail early if parent directory does not exist (instead of the
		// opaque sqlite "out of memory (14)").
		if dir := filepath.Dir(dsn); dir != "." {
			if _, statErr := os.Stat(dir); statErr != nil {
				return nil, statErr
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}

		// PRAGMAs
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA synchronous=NORMAL;")
		db.Exec("PRAGMA foreign_keys=ON;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	// Pool
	if sqlDB, poolErr := db.DB(); poolErr == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	// Trace queries alongside HTTP spans.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Product{},
		&domain.Media{},
		&domain.Recipe{},
		&domain.RecipeProduct{},
		&domain.RecipeStep{},
		&domain.Story{},
		&domain.StoryView{},
		&domain.Contact{},
		&domain.User{},
		&domain.AppVersion{},
		&domain.Device{},
	)
}
