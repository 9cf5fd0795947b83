// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Prompt
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a prompt is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePrompt inserts the given prompt row. CreatedAt is set to UTC when
// unset. On success the prompt's ID is populated.
func CreatePrompt(ctx context.Context, db *gorm.DB, p *domain.Prompt) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPrompt fetches a prompt by id, or ErrNotFound if missing.
func GetPrompt(ctx context.Context, db *gorm.DB, id uint) (*domain.Prompt, error) {
	var p domain.Prompt
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePrompt applies the given column values to the prompt identified by
// id. The caller decides which columns are present; absent columns keep
// their stored values. Returns ErrNotFound when no row was touched.
func UpdatePrompt(ctx context.Context, db *gorm.DB, id uint, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Prompt{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PromptExists reports whether a prompt row with the given id exists.
func PromptExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Prompt{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
