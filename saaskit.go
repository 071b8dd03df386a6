// Package saaskit wires the data-access layer together: it opens the store
// selected by the configuration and hands back ready-to-use repositories with
// an explicit Close lifecycle. There is no process-global store handle;
// construct a Repositories per process (or per test) and close it.
package saaskit

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/zzeleznick/saaskit/internal/analytics"
	"github.com/zzeleznick/saaskit/internal/config"
	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/repository"
	"github.com/zzeleznick/saaskit/internal/retry"
)

// Repositories bundles the entity repositories over one store connection.
type Repositories struct {
	Items    domain.ItemRepository
	Comments domain.CommentRepository
	Votes    domain.VoteRepository
	Users    domain.UserRepository

	store kv.Store
}

// Open builds the full data-access layer from cfg.
func Open(cfg *config.Config) (*Repositories, error) {
	var (
		store kv.Store
		err   error
	)
	if cfg.RedisURL != "" {
		store, err = kv.OpenRedis(cfg.RedisURL)
	} else {
		store, err = kv.OpenBolt(cfg.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var events domain.EventPublisher = analytics.NopPublisher{}
	if cfg.AnalyticsURL != "" {
		events = analytics.New(cfg.AnalyticsURL)
	}

	clock := clockwork.NewRealClock()
	policy := retry.Policy{
		MaxAttempts:    cfg.VoteMaxAttempts,
		InitialBackoff: cfg.VoteInitialBackoff,
	}

	return &Repositories{
		Items:    repository.NewItemRepo(store, clock, events),
		Comments: repository.NewCommentRepo(store, clock),
		Votes:    repository.NewVoteRepo(store, policy),
		Users:    repository.NewUserRepo(store),
		store:    store,
	}, nil
}

// Store exposes the underlying connection for read-only diagnostics.
func (r *Repositories) Store() kv.Store {
	return r.store
}

// Close releases the store connection.
func (r *Repositories) Close() error {
	return r.store.Close()
}
