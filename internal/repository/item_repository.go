package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/metrics"
)

// ItemRepo implements domain.ItemRepository. Items live under a single
// primary key; the per-user index is a value-less marker so the mutable
// score field has exactly one copy.
type ItemRepo struct {
	store  kv.Store
	clock  clockwork.Clock
	events domain.EventPublisher
}

var _ domain.ItemRepository = (*ItemRepo)(nil)

func NewItemRepo(store kv.Store, clock clockwork.Clock, events domain.EventPublisher) *ItemRepo {
	return &ItemRepo{store: store, clock: clock, events: events}
}

// Create commits the item and its user-index marker in one transaction,
// guarded by absence checks on both keys. An id collision fails with
// ErrAlreadyExists and is not retried.
func (r *ItemRepo) Create(ctx context.Context, userID uuid.UUID, title, url string) (*domain.Item, error) {
	item := &domain.Item{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: r.clock.Now().UTC(),
		Score:     0,
	}

	value, err := encodeRecord(item)
	if err != nil {
		return nil, err
	}

	err = r.store.Atomic().
		Check(itemKey(item.ID), kv.Absent).
		Check(itemByUserKey(item.UserID, item.ID), kv.Absent).
		Set(itemKey(item.ID), value).
		Set(itemByUserKey(item.UserID, item.ID), nil).
		Commit(ctx)
	if errors.Is(err, kv.ErrConflict) {
		metrics.CommitConflictsTotal.WithLabelValues("item").Inc()
		return nil, fmt.Errorf("item %s: %w", item.ID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	// Best effort: the item is committed, a telemetry failure stays here.
	if err := r.events.PublishItemCreated(ctx, domain.ItemCreatedEvent{
		UserID:    item.UserID,
		ID:        item.ID,
		CreatedAt: item.CreatedAt.Unix(),
		Score:     item.Score,
		Title:     item.Title,
		URL:       item.URL,
	}); err != nil {
		slog.Warn("Failed to publish item-created event", "item_id", item.ID, "error", err)
	}

	return item, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	entry, found, err := r.store.Get(ctx, itemKey(id))
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrItemNotFound)
	}
	return decodeRecord[domain.Item](entry)
}

func (r *ItemRepo) List(ctx context.Context, page domain.PageRequest) ([]*domain.Item, string, error) {
	entries, cursor, err := r.store.List(ctx, itemPrefix, kv.Page{Limit: page.Limit, Cursor: page.Cursor})
	if err != nil {
		return nil, "", fmt.Errorf("list items: %w", err)
	}

	items := make([]*domain.Item, 0, len(entries))
	for _, entry := range entries {
		item, err := decodeRecord[domain.Item](entry)
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}
	return items, cursor, nil
}

// ListByUser scans the user's index markers and resolves the primaries
// through batched multi-gets. A marker whose primary vanished concurrently is
// skipped.
func (r *ItemRepo) ListByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]*domain.Item, string, error) {
	prefix := itemsByUserScanPrefix(userID)
	entries, cursor, err := r.store.List(ctx, prefix, kv.Page{Limit: page.Limit, Cursor: page.Cursor})
	if err != nil {
		return nil, "", fmt.Errorf("list items by user: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		itemID, err := uuid.Parse(strings.TrimPrefix(entry.Key, prefix))
		if err != nil {
			return nil, "", fmt.Errorf("malformed item index key %q: %w", entry.Key, err)
		}
		keys = append(keys, itemKey(itemID))
	}

	lookups, err := getManyChunked(ctx, r.store, keys)
	if err != nil {
		return nil, "", fmt.Errorf("resolve items by user: %w", err)
	}

	items := make([]*domain.Item, 0, len(lookups))
	for _, lookup := range lookups {
		if !lookup.Found {
			continue
		}
		item, err := decodeRecord[domain.Item](lookup.Entry)
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}
	return items, cursor, nil
}
