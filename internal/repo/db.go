// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migration, and seed data.
package repo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/theendpage/go-farewell-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs, bounds
// the pool, and registers the GORM tracing plugin. The handle is built here
// and injected everywhere else; no package keeps a connection global.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if the parent directory is missing instead of surfacing
	// sqlite's opaque "out of memory (14)".
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the four application tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Prompt{},
		&domain.Response{},
		&domain.Vote{},
	)
}

// EnsureFallbackUser guarantees that the configured fallback owner exists so
// prompts created without a usable idUser always reference a real row.
func EnsureFallbackUser(ctx context.Context, db *gorm.DB, id uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	u := &domain.User{
		ID:           id,
		Name:         "anonymous",
		Email:        "anonymous@theend.page",
		PasswordHash: "!", // never a valid bcrypt hash, login impossible
		CreatedAt:    time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(u).Error
}
