// Package services defines the business logic for generation, responses,
// votes, and users. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked
// by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages and HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrMissingField is returned when a generation request lacks one of
	// the required fields (scenario, tone, message).
	ErrMissingField = errors.New("scenario, tone, and message are required")

	// ErrMessageTooLong is returned when the user message exceeds the
	// configured maximum length.
	ErrMessageTooLong = errors.New("message too long")

	// ErrPromptNotFound indicates that the referenced prompt does not exist.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrResponseNotFound indicates that the referenced response does not
	// exist.
	ErrResponseNotFound = errors.New("response not found")

	// ErrVoteNotFound indicates that the referenced vote does not exist.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidVote is returned when a vote value is outside {-1, 0, 1}.
	ErrInvalidVote = errors.New("vote value must be -1, 0, or 1")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotAllowed is returned when the authorization policy rejects a
	// mutation.
	ErrNotAllowed = errors.New("operation not allowed")
)
