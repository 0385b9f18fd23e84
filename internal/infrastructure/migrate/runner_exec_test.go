package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_accounts", Up: []Statement{
			{SQL: "CREATE TABLE accounts (id TEXT)"},
		}, Down: []string{"DROP TABLE accounts"}},
		{Version: 2, Name: "index_accounts", Up: []Statement{
			{SQL: "CREATE INDEX CONCURRENTLY idx_accounts_id ON accounts (id)", NoTx: true},
			{SQL: "ALTER TABLE accounts ADD COLUMN label TEXT"},
		}, Down: []string{"DROP INDEX idx_accounts_id"}},
		{Version: 3, Name: "create_labels", Up: []Statement{
			{SQL: "CREATE TABLE labels (id TEXT)"},
		}, Down: []string{"DROP TABLE labels"}},
	}
}

func logIndex(log []string, substr string) int {
	for i, entry := range log {
		if strings.Contains(entry, substr) {
			return i
		}
	}
	return -1
}

func TestMigrateExecutesAllPending(t *testing.T) {
	store := &memStore{}
	r, err := NewRunner(openMemDB(store), execMigrations())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Migrate(ctx))

	current, err := r.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.TargetVersion(), current)

	history, err := r.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "create_accounts", history[0].Name)
	assert.Equal(t, "index_accounts", history[1].Name)
	assert.Equal(t, "create_labels", history[2].Name)
	for i, m := range history {
		assert.Equal(t, i+1, m.Version)
		assert.False(t, m.AppliedAt.IsZero())
	}
}

func TestMigrateRunsNoTxStatementsOutsideTransaction(t *testing.T) {
	store := &memStore{}
	r, err := NewRunner(openMemDB(store), execMigrations())
	require.NoError(t, err)

	require.NoError(t, r.Migrate(context.Background()))

	log := store.statements()
	concurrent := logIndex(log, "CREATE INDEX CONCURRENTLY idx_accounts_id")
	alter := logIndex(log, "ADD COLUMN label")
	require.NotEqual(t, -1, concurrent)
	require.NotEqual(t, -1, alter)

	assert.True(t, strings.HasPrefix(log[concurrent], "auto: "), "got %q", log[concurrent])
	assert.True(t, strings.HasPrefix(log[alter], "tx: "), "got %q", log[alter])
	assert.Less(t, concurrent, alter, "non-transactional statements run first")
}

func TestMigrateStatementFailureAbortsRun(t *testing.T) {
	store := &memStore{failOn: "ADD COLUMN label"}
	r, err := NewRunner(openMemDB(store), execMigrations())
	require.NoError(t, err)

	ctx := context.Background()
	err = r.Migrate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2")

	// the failed migration left no version record behind
	current, err := r.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	history, err := r.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)

	// later migrations were never attempted
	assert.Equal(t, -1, logIndex(store.statements(), "CREATE TABLE labels"))
}

func TestRollbackRemovesVersionRowsDescending(t *testing.T) {
	store := &memStore{}
	r, err := NewRunner(openMemDB(store), execMigrations())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Migrate(ctx))
	require.NoError(t, r.Rollback(ctx, 1))

	current, err := r.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	history, err := r.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)

	log := store.statements()
	dropLabels := logIndex(log, "DROP TABLE labels")
	dropIndex := logIndex(log, "DROP INDEX idx_accounts_id")
	require.NotEqual(t, -1, dropLabels)
	require.NotEqual(t, -1, dropIndex)
	assert.Less(t, dropLabels, dropIndex, "newest migration reverts first")
}

func TestMigrateRollbackMigrateRoundTrip(t *testing.T) {
	store := &memStore{}
	r, err := NewRunner(openMemDB(store), execMigrations())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Migrate(ctx))
	require.NoError(t, r.Rollback(ctx, 0))

	current, err := r.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	require.NoError(t, r.Migrate(ctx))
	current, err = r.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.TargetVersion(), current)
}
