package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Item is a submitted link. Score is the raw vote count, only ever moved by
// vote operations; the normalized rank is derived from it at read time.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	Score     int64     `json:"score"`
}

type ItemRepository interface {
	Create(ctx context.Context, userID uuid.UUID, title, url string) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, page PageRequest) ([]*Item, string, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page PageRequest) ([]*Item, string, error)
}

// PageRequest mirrors the store's pagination without leaking its types into
// callers. An empty Cursor starts from the beginning.
type PageRequest struct {
	Limit  int
	Cursor string
}
