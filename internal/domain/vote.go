package domain

import (
	"context"

	"github.com/google/uuid"
)

// A vote is not a stored record. It is a marker key whose presence means
// "this user voted for this item", kept consistent with exactly one +1 on the
// item's score per user.
type VoteRepository interface {
	// Cast records the vote and increments the item's score. Idempotent:
	// casting an already-recorded vote succeeds without a second increment.
	Cast(ctx context.Context, userID, itemID uuid.UUID) error

	// Remove withdraws the vote and decrements the item's score. Removing
	// an absent vote is a no-op.
	Remove(ctx context.Context, userID, itemID uuid.UUID) error

	ListItemIDsByUser(ctx context.Context, userID uuid.UUID, page PageRequest) ([]uuid.UUID, string, error)
}
