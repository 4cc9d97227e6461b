package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockOpen(t *testing.T, db *sql.DB, openErr error) {
	t.Helper()
	originalSQLOpen := sqlOpenFunc
	sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		return db, nil
	}
	t.Cleanup(func() { sqlOpenFunc = originalSQLOpen })
}

// TestNewPostgresStore tests the NewPostgresStore constructor.
func TestNewPostgresStore(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.migrate)).WillReturnResult(sqlmock.NewResult(0, 0))
		withMockOpen(t, db, nil)

		store, err := NewPostgresStore("dummy_conn_string")
		assert.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, mock.ExpectationsWereMet(), "sqlmock expectations not met")
	})

	t.Run("sql open error", func(t *testing.T) {
		expectedErr := errors.New("failed to open database")
		withMockOpen(t, nil, expectedErr)

		_, err := NewPostgresStore("dummy_conn_string")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, expectedErr), "Expected sql open error")
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()
		withMockOpen(t, db, nil)

		_, err = NewPostgresStore("dummy_conn_string")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migrate error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.migrate)).WillReturnError(errors.New("migrate failed"))
		mock.ExpectClose()
		withMockOpen(t, db, nil)

		_, err = NewPostgresStore("dummy_conn_string")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to run migrations")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return &PostgresStore{sqlStore: &sqlStore{db: db, q: postgresQueries}}, mock
}

func TestPostgresStore_Publish(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog(t)

	t.Run("successful publish", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.deleteAll)).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.insert)).
			WithArgs("enabled_notifications", "comstack_notifications", "Enabled notifications", true,
				`["email"]`, `["user_profile_form"]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.insert)).
			WithArgs("volume", "audio", "Volume", false, `"50"`, `[]`, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		assert.NoError(t, store.Publish(ctx, cat))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error rolls back", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.deleteAll)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(postgresQueries.insert)).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := store.Publish(ctx, cat)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert enabled_notifications")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		mock.ExpectBegin().WillReturnError(errors.New("no connection"))

		err := store.Publish(ctx, cat)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestPostgresStore_Load(t *testing.T) {
	ctx := context.Background()
	cols := []string{"key", "module", "title", "serialize", "default_value", "form_ids", "form_item"}

	t.Run("successful load", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		rows := sqlmock.NewRows(cols).
			AddRow("enabled_notifications", "comstack_notifications", "Enabled notifications", true,
				`["email"]`, `["user_profile_form"]`, `{"type":"checkboxes","options":[{"value":"email","label":"Email"}],"weight":1}`).
			AddRow("volume", "audio", "Volume", false, `"50"`, `[]`, nil)
		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectAll)).WillReturnRows(rows)

		defs, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, defs, 2)

		notif := defs["enabled_notifications"]
		assert.Equal(t, []any{"email"}, notif.DefaultValue)
		require.NotNil(t, notif.FormItem)
		assert.Equal(t, "checkboxes", notif.FormItem.Type)
		assert.Equal(t, 1, notif.FormItem.Weight)
		assert.Nil(t, defs["volume"].FormItem)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt json", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		rows := sqlmock.NewRows(cols).AddRow("volume", "audio", "Volume", false, `{not json`, `[]`, nil)
		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectAll)).WillReturnRows(rows)

		_, err := store.Load(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal default_value")
	})

	t.Run("query error", func(t *testing.T) {
		store, mock := newTestPostgresStore(t)
		defer store.Close()

		mock.ExpectQuery(regexp.QuoteMeta(postgresQueries.selectAll)).WillReturnError(errors.New("relation does not exist"))

		_, err := store.Load(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query definitions")
	})
}
