package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/prefhook"
)

// setupSQLiteTest creates a new SQLite database for testing.
func setupSQLiteTest(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "definitions.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err, "Failed to initialize SQLiteStore")
	t.Cleanup(func() {
		require.NoError(t, store.Close(), "Failed to close store")
	})
	return store
}

func TestSQLiteStore_PublishLoad(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testCatalog(t)))

	defs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	notif := defs["enabled_notifications"]
	assert.Equal(t, "Enabled notifications", notif.Title)
	assert.Equal(t, "comstack_notifications", notif.Module)
	assert.True(t, notif.Serialize)
	assert.Equal(t, []any{"email"}, notif.DefaultValue)
	assert.Equal(t, []string{"user_profile_form"}, notif.FormIDs)
	require.NotNil(t, notif.FormItem)
	assert.Equal(t, prefhook.WidgetCheckboxes, notif.FormItem.Type)
	assert.Equal(t, 1, notif.FormItem.Weight)
	assert.Len(t, notif.FormItem.Options, 2)

	volume := defs["volume"]
	assert.Equal(t, "50", volume.DefaultValue)
	assert.Nil(t, volume.FormIDs)
	assert.Nil(t, volume.FormItem)
	assert.False(t, volume.Serialize)
}

func TestSQLiteStore_PublishReplaces(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testCatalog(t)))

	smaller, err := prefhook.NewCatalog(prefhook.Definitions{
		"theme": {Title: "Theme", DefaultValue: "dark", Module: "appearance"},
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Publish(ctx, smaller))

	defs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "dark", defs["theme"].DefaultValue)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "definitions.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Publish(ctx, testCatalog(t)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err, "migrations must be idempotent")
	defer reopened.Close()

	defs, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestSQLiteStore_LoadAfterClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "definitions.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Load(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query definitions")
}
