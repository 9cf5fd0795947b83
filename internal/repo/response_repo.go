// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Response
// model. Reads preload the owning Prompt because every consumer of a
// response also renders its generation request.
package repo

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
)

// CreateResponse inserts a response row tied to promptID. The content is
// stored as-is in the JSON column. The prompt's existence is checked by the
// service layer, not here.
func CreateResponse(ctx context.Context, db *gorm.DB, promptID uint, content datatypes.JSON) (*domain.Response, error) {
	r := &domain.Response{
		Content:   content,
		PromptID:  promptID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetResponse fetches a response by id with its prompt preloaded, or
// ErrNotFound if missing.
func GetResponse(ctx context.Context, db *gorm.DB, id uint) (*domain.Response, error) {
	var r domain.Response
	err := db.WithContext(ctx).
		Preload("Prompt").
		First(&r, id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResponses returns responses ordered by creation time descending, each
// with its prompt preloaded. A non-nil promptID narrows the result to one
// prompt's responses. Returns an empty slice when nothing matches.
func ListResponses(ctx context.Context, db *gorm.DB, promptID *uint) ([]domain.Response, error) {
	q := db.WithContext(ctx).
		Preload("Prompt").
		Order("created_at desc, id desc")
	if promptID != nil {
		q = q.Where("idPrompt = ?", *promptID)
	}
	var out []domain.Response
	err := q.Find(&out).Error
	return out, err
}

// ResponseExists reports whether a response row with the given id exists.
func ResponseExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
