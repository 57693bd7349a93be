package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/screenlock/internal/logging"
)

func TestOpen_InMemoryCreatesMetadataTable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, MemoryDSN, logging.NewDiscard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'k'`).Scan(&v))
	assert.Equal(t, "v", v)
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lock.db")

	db, err := Open(ctx, path, logging.NewDiscard())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('enabled', 'true')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// migrations are idempotent and the data is still there
	db, err = Open(ctx, path, logging.NewDiscard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var v string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'enabled'`).Scan(&v))
	assert.Equal(t, "true", v)
}

func TestOpen_BadPathFails(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "lock.db"), logging.NewDiscard())
	require.Error(t, err)
}
