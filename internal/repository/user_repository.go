package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/metrics"
)

// UserRepo implements domain.UserRepository. A user is four byte-identical
// copies (primary, by-login, by-session, by-stripe-customer); every mutation
// checks the version token of each copy it touches and rewrites them all in
// one transaction, so the copies can only diverge inside an aborted commit.
//
// Mutations do not retry. A lost race surfaces as ErrModified and the caller
// re-issues the whole read-modify-write sequence.
type UserRepo struct {
	store kv.Store
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(store kv.Store) *UserRepo {
	return &UserRepo{store: store}
}

// userKeys returns the four index keys of u, primary first.
func userKeys(u domain.User) []string {
	return []string{
		userKey(u.ID),
		userByLoginKey(u.Login),
		userBySessionKey(u.SessionID),
		userByStripeKey(u.StripeCustomerID),
	}
}

func (r *UserRepo) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.IsSubscribed = false

	value, err := encodeRecord(&user)
	if err != nil {
		return nil, err
	}

	a := r.store.Atomic()
	for _, key := range userKeys(user) {
		a.Check(key, kv.Absent).Set(key, value)
	}
	if err := a.Commit(ctx); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("user").Inc()
			return nil, fmt.Errorf("user %s: %w", user.Login, domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getAt(ctx, userKey(id))
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.getAt(ctx, userByLoginKey(login))
}

func (r *UserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return r.getAt(ctx, userByStripeKey(customerID))
}

// GetBySessionID reads relaxed first: session lookups sit on the hot path of
// every request, and a stale miss only costs the strong fallback read.
func (r *UserRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.User, error) {
	key := userBySessionKey(sessionID)

	entry, found, err := r.store.Get(ctx, key, kv.WithRelaxedConsistency())
	if err != nil {
		return nil, fmt.Errorf("get user by session: %w", err)
	}
	if found {
		return decodeRecord[domain.User](entry)
	}
	return r.getAt(ctx, key)
}

func (r *UserRepo) getAt(ctx context.Context, key string) (*domain.User, error) {
	entry, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return decodeRecord[domain.User](entry)
}

// GetByIDs batches ids through the store's bounded multi-get and returns the
// found users in input order.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}

	lookups, err := getManyChunked(ctx, r.store, keys)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}

	users := make([]*domain.User, 0, len(lookups))
	for _, lookup := range lookups {
		if !lookup.Found {
			continue
		}
		user, err := decodeRecord[domain.User](lookup.Entry)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// readAllCopies multi-gets the four copies and asserts every one exists. A
// missing copy is classified against the primary record before it is called
// corruption: a concurrent mutation legitimately deletes old index keys.
func (r *UserRepo) readAllCopies(ctx context.Context, user domain.User) ([]string, []kv.Lookup, error) {
	keys := userKeys(user)
	lookups, err := r.store.GetMany(ctx, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("read user copies: %w", err)
	}
	for i, lookup := range lookups {
		if !lookup.Found {
			return nil, nil, r.classifyMissingCopy(ctx, user, keys[i])
		}
	}
	return keys, lookups, nil
}

// classifyMissingCopy decides what a missing copy under the caller's snapshot
// means. Primary gone: the user was deleted. Primary moved on: the snapshot
// lost an optimistic race (a session rotation removes the old session key, so
// a stale snapshot points at keys that no longer exist). Only a secondary
// missing next to a matching primary is corruption from outside this
// repository.
func (r *UserRepo) classifyMissingCopy(ctx context.Context, user domain.User, missingKey string) error {
	entry, found, err := r.store.Get(ctx, userKey(user.ID))
	if err != nil {
		return fmt.Errorf("read user primary: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrUserNotFound)
	}
	current, err := decodeRecord[domain.User](entry)
	if err != nil {
		return err
	}
	if *current != user {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrModified)
	}
	return fmt.Errorf("user copy %q missing: %w", missingKey, domain.ErrCorrupted)
}

func (r *UserRepo) SetSubscription(ctx context.Context, user domain.User, subscribed bool) (*domain.User, error) {
	keys, lookups, err := r.readAllCopies(ctx, user)
	if err != nil {
		return nil, err
	}

	updated := user
	updated.IsSubscribed = subscribed
	value, err := encodeRecord(&updated)
	if err != nil {
		return nil, err
	}

	a := r.store.Atomic()
	for i, key := range keys {
		a.Check(key, lookups[i].Version).Set(key, value)
	}
	if err := a.Commit(ctx); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("user").Inc()
			return nil, fmt.Errorf("set subscription for %s: %w", user.ID, domain.ErrModified)
		}
		return nil, fmt.Errorf("set subscription: %w", err)
	}
	return &updated, nil
}

// UpdateSession rotates the session id. The new session index entry is
// created and the old one deleted inside the same transaction, so no stale
// session key ever resolves to the user.
func (r *UserRepo) UpdateSession(ctx context.Context, user domain.User, newSessionID string) (*domain.User, error) {
	keys, lookups, err := r.readAllCopies(ctx, user)
	if err != nil {
		return nil, err
	}
	oldSessionKey := userBySessionKey(user.SessionID)

	updated := user
	updated.SessionID = newSessionID
	value, err := encodeRecord(&updated)
	if err != nil {
		return nil, err
	}

	a := r.store.Atomic()
	for i, key := range keys {
		a.Check(key, lookups[i].Version)
	}
	a.Check(userBySessionKey(newSessionID), kv.Absent)
	for _, key := range userKeys(updated) {
		a.Set(key, value)
	}
	a.Delete(oldSessionKey)

	if err := a.Commit(ctx); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("user").Inc()
			return nil, fmt.Errorf("update session for %s: %w", user.ID, domain.ErrModified)
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &updated, nil
}

// Delete removes all four copies, guarded by the version tokens observed at
// read time. Deleting a user that does not exist fails with ErrUserNotFound.
func (r *UserRepo) Delete(ctx context.Context, user domain.User) error {
	keys, lookups, err := r.readAllCopies(ctx, user)
	if err != nil {
		return err
	}

	a := r.store.Atomic()
	for i, key := range keys {
		a.Check(key, lookups[i].Version).Delete(key)
	}
	if err := a.Commit(ctx); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			metrics.CommitConflictsTotal.WithLabelValues("user").Inc()
			return fmt.Errorf("delete user %s: %w", user.ID, domain.ErrModified)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// DeleteBySession removes only the session index key. Deliberately asymmetric
// with Delete: logout needs no full user record and leaves the other three
// copies in place.
func (r *UserRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	err := r.store.Atomic().
		Delete(userBySessionKey(sessionID)).
		Commit(ctx)
	if err != nil {
		return fmt.Errorf("delete session %q: %w", sessionID, err)
	}
	return nil
}
