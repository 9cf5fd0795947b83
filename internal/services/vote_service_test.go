package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/repo"
)

func seedPromptAndResponse(t *testing.T, db *gorm.DB) *domain.Response {
	t.Helper()
	p := &domain.Prompt{
		Title:    "bye",
		Scenario: "moving away",
		Tone:     "touchant",
		Message:  "see you around",
		UserID:   fallbackID,
	}
	if err := repo.CreatePrompt(context.Background(), db, p); err != nil {
		t.Fatalf("seed prompt: %v", err)
	}
	r, err := repo.CreateResponse(context.Background(), db, p.ID, []byte(`"text"`))
	if err != nil {
		t.Fatalf("seed response: %v", err)
	}
	return r
}

func TestVoteCast_InvalidValue(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}
	r := seedPromptAndResponse(t, db)

	for _, v := range []int{-2, 2, 5} {
		if _, err := svc.Cast(context.Background(), r.ID, v); !errors.Is(err, ErrInvalidVote) {
			t.Fatalf("Cast(%d): expected ErrInvalidVote, got %v", v, err)
		}
	}
}

func TestVoteCast_MissingResponse(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}

	if _, err := svc.Cast(context.Background(), 999, 1); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}
	if n := countRows(t, db, &domain.Vote{}); n != 0 {
		t.Fatalf("votes written: %d", n)
	}
}

func TestVoteCast_AcceptsAllValidValues(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}
	r := seedPromptAndResponse(t, db)

	for _, v := range []int{-1, 0, 1} {
		vote, err := svc.Cast(context.Background(), r.ID, v)
		if err != nil {
			t.Fatalf("Cast(%d): %v", v, err)
		}
		if vote.Value != v {
			t.Fatalf("stored value = %d, want %d", vote.Value, v)
		}
	}
}

func TestVoteCast_RepeatVotesAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}
	r := seedPromptAndResponse(t, db)

	for i := 0; i < 3; i++ {
		if _, err := svc.Cast(context.Background(), r.ID, 1); err != nil {
			t.Fatalf("Cast #%d: %v", i, err)
		}
	}
	if n := countRows(t, db, &domain.Vote{}); n != 3 {
		t.Fatalf("votes = %d, want 3", n)
	}
}

func TestVoteGetAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}
	r := seedPromptAndResponse(t, db)

	vote, err := svc.Cast(context.Background(), r.ID, -1)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}

	got, err := svc.Get(context.Background(), vote.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Response == nil || got.Response.ID != r.ID {
		t.Fatalf("response not nested: %+v", got.Response)
	}

	if err := svc.Delete(context.Background(), 0, vote.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), vote.ID); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), 0, vote.ID); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("second delete: expected ErrVoteNotFound, got %v", err)
	}
}

func TestVoteTally(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}
	r := seedPromptAndResponse(t, db)

	for _, v := range []int{1, -1, 1, 0} {
		if _, err := svc.Cast(context.Background(), r.ID, v); err != nil {
			t.Fatalf("Cast(%d): %v", v, err)
		}
	}

	total, err := svc.Tally(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
}

func TestVoteTally_UnknownResponseIsZero(t *testing.T) {
	db := newTestDB(t)
	svc := &VoteService{DB: db, Policy: AllowAll{}}

	total, err := svc.Tally(context.Background(), 424242)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}
