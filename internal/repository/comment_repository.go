package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/metrics"
)

// CommentRepo implements domain.CommentRepository. A comment has no single
// primary key: it is fully duplicated under its by-user and by-item keys, and
// creation commits both copies or neither.
type CommentRepo struct {
	store kv.Store
	clock clockwork.Clock
}

var _ domain.CommentRepository = (*CommentRepo)(nil)

func NewCommentRepo(store kv.Store, clock clockwork.Clock) *CommentRepo {
	return &CommentRepo{store: store, clock: clock}
}

// Create writes both copies in one transaction with absence checks on both
// target keys. A collision fails with ErrAlreadyExists and is not retried.
func (r *CommentRepo) Create(ctx context.Context, userID, itemID uuid.UUID, text string) (*domain.Comment, error) {
	comment := &domain.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Text:      text,
		CreatedAt: r.clock.Now().UTC(),
	}

	value, err := encodeRecord(comment)
	if err != nil {
		return nil, err
	}

	err = r.store.Atomic().
		Check(commentByUserKey(userID, comment.ID), kv.Absent).
		Check(commentByItemKey(itemID, comment.ID), kv.Absent).
		Set(commentByUserKey(userID, comment.ID), value).
		Set(commentByItemKey(itemID, comment.ID), value).
		Commit(ctx)
	if errors.Is(err, kv.ErrConflict) {
		metrics.CommitConflictsTotal.WithLabelValues("comment").Inc()
		return nil, fmt.Errorf("comment %s: %w", comment.ID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return comment, nil
}

func (r *CommentRepo) ListByItem(ctx context.Context, itemID uuid.UUID, page domain.PageRequest) ([]*domain.Comment, string, error) {
	return r.list(ctx, commentsByItemScanPrefix(itemID), page)
}

func (r *CommentRepo) ListByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]*domain.Comment, string, error) {
	return r.list(ctx, commentsByUserScanPrefix(userID), page)
}

func (r *CommentRepo) list(ctx context.Context, prefix string, page domain.PageRequest) ([]*domain.Comment, string, error) {
	entries, cursor, err := r.store.List(ctx, prefix, kv.Page{Limit: page.Limit, Cursor: page.Cursor})
	if err != nil {
		return nil, "", fmt.Errorf("list comments: %w", err)
	}

	comments := make([]*domain.Comment, 0, len(entries))
	for _, entry := range entries {
		comment, err := decodeRecord[domain.Comment](entry)
		if err != nil {
			return nil, "", err
		}
		comments = append(comments, comment)
	}
	return comments, cursor, nil
}
