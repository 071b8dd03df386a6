package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is stored as two full copies, one per lookup direction
// (by user and by item). Both copies exist with identical content or
// neither does.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ItemID    uuid.UUID `json:"itemId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentRepository interface {
	Create(ctx context.Context, userID, itemID uuid.UUID, text string) (*Comment, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, page PageRequest) ([]*Comment, string, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page PageRequest) ([]*Comment, string, error)
}
