// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote model
// plus the tally aggregate.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
)

// CreateVote inserts a vote row for the given response. Value validation and
// the response existence check happen in the service layer.
func CreateVote(ctx context.Context, db *gorm.DB, responseID uint, value int) (*domain.Vote, error) {
	v := &domain.Vote{
		ResponseID: responseID,
		Value:      value,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// GetVote fetches a vote by id with its response (and that response's
// prompt) preloaded, or ErrNotFound if missing.
func GetVote(ctx context.Context, db *gorm.DB, id uint) (*domain.Vote, error) {
	var v domain.Vote
	err := db.WithContext(ctx).
		Preload("Response").
		Preload("Response.Prompt").
		First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVotes returns all votes ordered by creation time descending, each with
// its response preloaded.
func ListVotes(ctx context.Context, db *gorm.DB) ([]domain.Vote, error) {
	var out []domain.Vote
	err := db.WithContext(ctx).
		Preload("Response").
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// DeleteVote removes a vote by id. Returns ErrNotFound when no row matched.
func DeleteVote(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Vote{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SumVotes returns the tally for a response: the sum of all vote values,
// coalesced to 0 when the response has no votes.
func SumVotes(ctx context.Context, db *gorm.DB, responseID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(valeur), 0) FROM votes WHERE reponse_id = ?", responseID).
		Scan(&total).Error
	return total, err
}
