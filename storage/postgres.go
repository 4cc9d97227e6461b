package storage

import (
	_ "github.com/lib/pq" // PostgreSQL driver
)

var postgresQueries = queries{
	migrate: `
		CREATE TABLE IF NOT EXISTS user_preference_definitions (
			key TEXT NOT NULL PRIMARY KEY,
			module TEXT NOT NULL,
			title TEXT NOT NULL,
			serialize BOOLEAN NOT NULL DEFAULT FALSE,
			default_value JSONB NOT NULL,
			form_ids JSONB NOT NULL,
			form_item JSONB,
			published_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_user_preference_definitions_module
		ON user_preference_definitions(module);
	`,
	deleteAll: `DELETE FROM user_preference_definitions`,
	insert: `
		INSERT INTO user_preference_definitions
			(key, module, title, serialize, default_value, form_ids, form_item, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
	selectAll: `
		SELECT key, module, title, serialize, default_value, form_ids, form_item
		FROM user_preference_definitions
		ORDER BY key
	`,
}

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to PostgreSQL with connStr and runs migrations.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	s, err := openSQLStore("postgres", connStr, "postgres", postgresQueries)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: s}, nil
}
