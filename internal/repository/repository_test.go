package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/zzeleznick/saaskit/internal/kv"
)

func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	store, err := kv.OpenBolt(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
}

// countingStore wraps a kv.Store and counts GetMany calls; used to assert
// batching behavior.
type countingStore struct {
	kv.Store
	getManyCalls int
}

func (s *countingStore) GetMany(ctx context.Context, keys []string) ([]kv.Lookup, error) {
	s.getManyCalls++
	return s.Store.GetMany(ctx, keys)
}
