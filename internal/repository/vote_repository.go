package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/metrics"
	"github.com/zzeleznick/saaskit/internal/retry"
)

// VoteRepo implements domain.VoteRepository. Both mutations are
// read-modify-write CAS loops: read the item, recompute the score, and commit
// guarded by the version tokens observed at read time. A lost race discards
// the in-memory state and re-runs from a fresh read, under a bounded attempt
// budget.
type VoteRepo struct {
	store  kv.Store
	policy retry.Policy
}

var _ domain.VoteRepository = (*VoteRepo)(nil)

func NewVoteRepo(store kv.Store, policy retry.Policy) *VoteRepo {
	return &VoteRepo{store: store, policy: policy}
}

// votePolicy attaches the retry observer for one operation unless the caller
// installed their own.
func (r *VoteRepo) votePolicy(operation string) retry.Policy {
	policy := r.policy
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
			metrics.VoteRetriesTotal.WithLabelValues(operation).Inc()
			slog.Debug("Retrying vote transaction", "operation", operation, "attempt", attempt, "backoff", backoff, "error", err)
		}
	}
	return policy
}

// classifyVoteErr keeps only commit conflicts in the retry loop; a missing
// item or a store failure is permanent.
func classifyVoteErr(err error) retry.Action {
	if errors.Is(err, kv.ErrConflict) {
		return retry.Retry
	}
	return retry.Stop
}

// Cast records the (user, item) vote marker and increments the item's score,
// exactly once per absent->present transition. If a concurrent call already
// recorded the marker, Cast returns success without a second increment.
func (r *VoteRepo) Cast(ctx context.Context, userID, itemID uuid.UUID) error {
	err := retry.DoVoid(ctx, r.votePolicy("cast"), classifyVoteErr, func() error {
		return r.tryCast(ctx, userID, itemID)
	})
	if err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("vote").Inc()
			return fmt.Errorf("cast vote for item %s: %w", itemID, domain.ErrContended)
		}
		return fmt.Errorf("cast vote for item %s: %w", itemID, err)
	}
	return nil
}

func (r *VoteRepo) tryCast(ctx context.Context, userID, itemID uuid.UUID) error {
	entry, found, err := r.store.Get(ctx, itemKey(itemID))
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrItemNotFound
	}

	item, err := decodeRecord[domain.Item](entry)
	if err != nil {
		return err
	}
	item.Score++

	value, err := encodeRecord(item)
	if err != nil {
		return err
	}

	err = r.store.Atomic().
		Check(voteKey(userID, itemID), kv.Absent).
		Check(itemKey(itemID), entry.Version).
		Set(itemKey(itemID), value).
		Set(voteKey(userID, itemID), nil).
		Commit(ctx)
	if errors.Is(err, kv.ErrConflict) {
		// The race may have been lost to the marker itself: someone
		// already recorded this vote. That is idempotent success, not
		// a reason to keep looping.
		if _, present, getErr := r.store.Get(ctx, voteKey(userID, itemID)); getErr == nil && present {
			return nil
		}
	}
	return err
}

// Remove deletes the vote marker and decrements the item's score. Removing a
// vote that was never cast is a no-op.
func (r *VoteRepo) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	err := retry.DoVoid(ctx, r.votePolicy("remove"), classifyVoteErr, func() error {
		return r.tryRemove(ctx, userID, itemID)
	})
	if err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("vote").Inc()
			return fmt.Errorf("remove vote for item %s: %w", itemID, domain.ErrContended)
		}
		return fmt.Errorf("remove vote for item %s: %w", itemID, err)
	}
	return nil
}

func (r *VoteRepo) tryRemove(ctx context.Context, userID, itemID uuid.UUID) error {
	lookups, err := r.store.GetMany(ctx, []string{itemKey(itemID), voteKey(userID, itemID)})
	if err != nil {
		return err
	}
	itemLookup, markerLookup := lookups[0], lookups[1]

	if !itemLookup.Found {
		return domain.ErrItemNotFound
	}
	if !markerLookup.Found {
		// Already absent: nothing was counted, nothing to undo.
		return nil
	}

	item, err := decodeRecord[domain.Item](itemLookup.Entry)
	if err != nil {
		return err
	}
	item.Score--

	value, err := encodeRecord(item)
	if err != nil {
		return err
	}

	return r.store.Atomic().
		Check(itemKey(itemID), itemLookup.Version).
		Check(voteKey(userID, itemID), markerLookup.Version).
		Set(itemKey(itemID), value).
		Delete(voteKey(userID, itemID)).
		Commit(ctx)
}

// ListItemIDsByUser scans the user's vote markers and returns the item-id
// suffix of each key.
func (r *VoteRepo) ListItemIDsByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, string, error) {
	prefix := votesByUserScanPrefix(userID)
	entries, cursor, err := r.store.List(ctx, prefix, kv.Page{Limit: page.Limit, Cursor: page.Cursor})
	if err != nil {
		return nil, "", fmt.Errorf("list votes by user: %w", err)
	}

	itemIDs := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		itemID, err := uuid.Parse(strings.TrimPrefix(entry.Key, prefix))
		if err != nil {
			return nil, "", fmt.Errorf("malformed vote key %q: %w", entry.Key, err)
		}
		itemIDs = append(itemIDs, itemID)
	}
	return itemIDs, cursor, nil
}
