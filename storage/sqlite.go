package storage

import (
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var sqliteQueries = queries{
	migrate: `
		CREATE TABLE IF NOT EXISTS user_preference_definitions (
			key TEXT NOT NULL PRIMARY KEY,
			module TEXT NOT NULL,
			title TEXT NOT NULL,
			serialize BOOLEAN NOT NULL DEFAULT 0,
			default_value TEXT NOT NULL,
			form_ids TEXT NOT NULL,
			form_item TEXT,
			published_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_user_preference_definitions_module
		ON user_preference_definitions(module);
	`,
	deleteAll: `DELETE FROM user_preference_definitions`,
	insert: `
		INSERT INTO user_preference_definitions
			(key, module, title, serialize, default_value, form_ids, form_item, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
	selectAll: `
		SELECT key, module, title, serialize, default_value, form_ids, form_item
		FROM user_preference_definitions
		ORDER BY key
	`,
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	s, err := openSQLStore("sqlite3", dbPath, "sqlite", sqliteQueries)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}
