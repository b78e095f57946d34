package sqlite_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Houeta/catalog-flow/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository_InvalidPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := sqlite.NewRepository(t.Context(), logger, "/invalid/path/to/db.sqlite")

	require.Error(t, err)
}

func TestRepository_Close(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlite.NewRepository(t.Context(), logger, filepath.Join(t.TempDir(), "close.sqlite"))
	require.NoError(t, err)

	require.NoError(t, repo.Close())
}

func TestSchemaInitialization(t *testing.T) {
	repo := newTestDB(t)

	rows, err := repo.DB().QueryContext(t.Context(), "SELECT name FROM sqlite_master WHERE type='table'")
	require.NoError(t, err)
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["subscriptions"], "expected table 'subscriptions' to exist, got: %+v", found)
}

func TestNewRepository_ReopenKeepsSubscriptions(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "reopen.sqlite")

	first, err := sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	require.NoError(t, first.SubscribeChat(ctx, 99))
	require.NoError(t, first.Close())

	second, err := sqlite.NewRepository(ctx, logger, dbPath)
	require.NoError(t, err)
	defer second.Close()

	chats, err := second.GetSubscribedChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{99}, chats)
}
