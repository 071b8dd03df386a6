package domain

import "errors"

var (
	ErrItemNotFound = errors.New("item not found")
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyExists reports a failed absence check on a create path
	// (id collision, or an index slot already taken). Never retried.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrModified reports a lost optimistic race on a user mutation. The
	// caller re-reads the record and re-issues the whole operation.
	ErrModified = errors.New("record modified concurrently")

	// ErrContended reports a vote operation that exhausted its retry
	// budget without winning a commit.
	ErrContended = errors.New("operation contended")

	// ErrCorrupted reports a denormalized index copy missing where the
	// invariant requires all copies to exist.
	ErrCorrupted = errors.New("denormalized index corrupted")
)
