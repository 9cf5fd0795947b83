// Package services – ResponseService
//
// Direct CRUD over generated responses: community pages create responses
// against an existing prompt and browse them with the prompt nested. Reads
// are unpaginated by design; the community feed is small and rendered whole.
package services

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/repo"
)

// ResponseService implements the response query and comment layer.
type ResponseService struct {
	DB     *gorm.DB
	Policy Policy
}

// Create inserts a response for promptID. The prompt must exist, otherwise
// ErrPromptNotFound. The existence check and insert run in one transaction
// so a concurrently deleted prompt cannot slip between them.
func (s *ResponseService) Create(ctx context.Context, actorID, promptID uint, content datatypes.JSON) (*domain.Response, error) {
	if s.Policy != nil {
		if err := s.Policy.Allow(ctx, actorID, ActionCreateResponse, promptID); err != nil {
			return nil, err
		}
	}

	var out *domain.Response
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.PromptExists(ctx, tx, promptID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPromptNotFound
		}
		r, err := repo.CreateResponse(ctx, tx, promptID, content)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns responses with their prompts, optionally filtered to one
// prompt id.
func (s *ResponseService) List(ctx context.Context, promptID *uint) ([]domain.Response, error) {
	return repo.ListResponses(ctx, s.DB, promptID)
}

// Get fetches a single response with its prompt, or ErrResponseNotFound.
func (s *ResponseService) Get(ctx context.Context, id uint) (*domain.Response, error) {
	r, err := repo.GetResponse(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return r, nil
}
