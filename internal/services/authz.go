// Package services – authorization boundary
//
// Mutating flows consult a Policy before touching data so the decision point
// is visible and replaceable. The default policy permits everything; swapping
// in an ownership-aware policy requires no handler or service changes.
package services

import "context"

// Action identifies a guarded mutation.
type Action string

const (
	ActionModifyPrompt   Action = "prompt:modify"
	ActionCreateResponse Action = "response:create"
	ActionDeleteVote     Action = "vote:delete"
)

// Policy decides whether the acting user may perform an action on the
// identified resource. Implementations return ErrNotAllowed to reject.
type Policy interface {
	Allow(ctx context.Context, userID uint, action Action, resourceID uint) error
}

// AllowAll is the default, permissive policy.
type AllowAll struct{}

// Allow always permits the action.
func (AllowAll) Allow(context.Context, uint, Action, uint) error { return nil }
