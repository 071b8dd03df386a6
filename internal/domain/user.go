package domain

import (
	"context"

	"github.com/google/uuid"
)

// User is stored as four byte-identical copies: the primary plus one full
// copy per secondary index (login, session, stripe customer). A mutation
// commits all four or none.
type User struct {
	ID               uuid.UUID `json:"id"`
	Login            string    `json:"login"`
	AvatarURL        string    `json:"avatarUrl"`
	StripeCustomerID string    `json:"stripeCustomerId"`
	SessionID        string    `json:"sessionId"`
	IsSubscribed     bool      `json:"isSubscribed"`
}

type UserRepository interface {
	// Create writes all four copies; IsSubscribed is forced to false.
	Create(ctx context.Context, user User) (*User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)

	// GetBySessionID tries a relaxed-consistency read first and falls back
	// to a strong read on a miss (hot path, staleness tolerated).
	GetBySessionID(ctx context.Context, sessionID string) (*User, error)

	// GetByIDs resolves ids in input order, batching store lookups.
	// Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	SetSubscription(ctx context.Context, user User, subscribed bool) (*User, error)

	// UpdateSession rotates the session id, atomically creating the new
	// session index entry and deleting the old one.
	UpdateSession(ctx context.Context, user User, newSessionID string) (*User, error)

	// Delete removes all four copies, version-checked against the reads.
	Delete(ctx context.Context, user User) error

	// DeleteBySession unconditionally removes only the session index key
	// (logout path); the other three copies are untouched.
	DeleteBySession(ctx context.Context, sessionID string) error
}
