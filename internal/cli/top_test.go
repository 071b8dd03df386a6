package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzeleznick/saaskit/internal/analytics"
	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/repository"
	"github.com/zzeleznick/saaskit/internal/retry"
)

func TestTopCommand_RanksVotedItemsFirst(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("REDIS_URL", "")

	dbPath := filepath.Join(t.TempDir(), "kv.db")
	store, err := kv.OpenBolt(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	items := repository.NewItemRepo(store, clockwork.NewRealClock(), analytics.NopPublisher{})
	votes := repository.NewVoteRepo(store, retry.DefaultPolicy)

	hot, err := items.Create(ctx, uuid.New(), "hot-item", "https://example.com/hot")
	require.NoError(t, err)
	_, err = items.Create(ctx, uuid.New(), "cold-item", "https://example.com/cold")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, votes.Cast(ctx, uuid.New(), hot.ID))
	}
	require.NoError(t, store.Close())

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"top", "--db", dbPath})
	require.NoError(t, cmd.Execute())

	output := out.String()
	hotAt := strings.Index(output, "hot-item")
	coldAt := strings.Index(output, "cold-item")
	require.NotEqual(t, -1, hotAt)
	require.NotEqual(t, -1, coldAt)
	assert.Less(t, hotAt, coldAt, "the voted item ranks first")
}

func TestTopCommand_LimitTruncates(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("REDIS_URL", "")

	dbPath := filepath.Join(t.TempDir(), "kv.db")
	store, err := kv.OpenBolt(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	items := repository.NewItemRepo(store, clockwork.NewRealClock(), analytics.NopPublisher{})
	for i := 0; i < 4; i++ {
		_, err := items.Create(ctx, uuid.New(), "title", "https://example.com")
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"top", "--db", dbPath, "--limit", "2"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestRootCommand_RequiresABackend(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("REDIS_URL", "")

	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"dump"})
	require.Error(t, cmd.Execute())
}
