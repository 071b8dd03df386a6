package domain

import (
	"context"

	"github.com/google/uuid"
)

// ItemCreatedEvent is the telemetry payload posted after a successful item
// creation. CreatedAt is in seconds.
type ItemCreatedEvent struct {
	UserID    uuid.UUID `json:"userId"`
	ID        uuid.UUID `json:"id"`
	CreatedAt int64     `json:"createdAt"`
	Score     int64     `json:"score"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
}

// EventPublisher delivers analytics events at most once. Failures are the
// publisher's problem to log; callers never act on them.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, event ItemCreatedEvent) error
}
