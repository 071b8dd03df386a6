package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzeleznick/saaskit/internal/domain"
)

func TestCommentCreate_VisibleFromBothIndexes(t *testing.T) {
	repo := NewCommentRepo(newTestStore(t), newFakeClock())
	ctx := context.Background()
	userID, itemID := uuid.New(), uuid.New()

	created, err := repo.Create(ctx, userID, itemID, "first!")
	require.NoError(t, err)

	byItem, _, err := repo.ListByItem(ctx, itemID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, byItem, 1)

	byUser, _, err := repo.ListByUser(ctx, userID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	// Both copies carry identical content.
	assert.Equal(t, created, byItem[0])
	assert.Equal(t, byItem[0], byUser[0])
}

func TestCommentListByItem_ScopedToItem(t *testing.T) {
	repo := NewCommentRepo(newTestStore(t), newFakeClock())
	ctx := context.Background()
	userID := uuid.New()
	itemA, itemB := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, userID, itemA, "on A")
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, userID, itemB, "on B")
	require.NoError(t, err)

	comments, _, err := repo.ListByItem(ctx, itemA, domain.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, comments, 3)
	for _, comment := range comments {
		assert.Equal(t, itemA, comment.ItemID)
	}
}

func TestCommentListByItem_Pagination(t *testing.T) {
	repo := NewCommentRepo(newTestStore(t), newFakeClock())
	ctx := context.Background()
	userID, itemID := uuid.New(), uuid.New()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, userID, itemID, "text")
		require.NoError(t, err)
	}

	total := 0
	cursor := ""
	for {
		comments, next, err := repo.ListByItem(ctx, itemID, domain.PageRequest{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		total += len(comments)
		if next == "" {
			break
		}
		cursor = next
	}
	assert.Equal(t, 5, total)
}
