// Package services – VoteService
//
// Governs how votes are cast on generated responses. Values are constrained
// to {-1, 0, 1} and the target response must exist. No actor identity is
// recorded on a vote, so repeat voting is neither prevented nor detected;
// the displayed tally is the plain sum of values.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/repo"
)

// VoteService implements the vote tally layer.
type VoteService struct {
	DB     *gorm.DB
	Policy Policy
}

// Cast records a vote for responseID.
//
// Validation:
//   - value must be -1, 0, or 1; otherwise ErrInvalidVote.
//   - responseID must reference an existing response; otherwise
//     ErrResponseNotFound.
//
// The existence check and insert run inside a transaction so a concurrent
// response deletion cannot produce an orphaned vote.
func (s *VoteService) Cast(ctx context.Context, responseID uint, value int) (*domain.Vote, error) {
	if value < -1 || value > 1 {
		return nil, ErrInvalidVote
	}

	var out *domain.Vote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.ResponseExists(ctx, tx, responseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrResponseNotFound
		}
		v, err := repo.CreateVote(ctx, tx, responseID, value)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all votes with their responses nested.
func (s *VoteService) List(ctx context.Context) ([]domain.Vote, error) {
	return repo.ListVotes(ctx, s.DB)
}

// Get fetches a single vote, or ErrVoteNotFound.
func (s *VoteService) Get(ctx context.Context, id uint) (*domain.Vote, error) {
	v, err := repo.GetVote(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return v, nil
}

// Delete removes a vote, or returns ErrVoteNotFound.
func (s *VoteService) Delete(ctx context.Context, actorID, id uint) error {
	if s.Policy != nil {
		if err := s.Policy.Allow(ctx, actorID, ActionDeleteVote, id); err != nil {
			return err
		}
	}
	if err := repo.DeleteVote(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	return nil
}

// Tally returns the sum of all vote values for responseID, 0 when the
// response has no votes. No existence check: a tally for an unknown
// response is simply 0.
func (s *VoteService) Tally(ctx context.Context, responseID uint) (int64, error) {
	return repo.SumVotes(ctx, s.DB, responseID)
}
