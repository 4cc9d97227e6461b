package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CreativeUnicorns/prefhook"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

type queries struct {
	migrate   string
	deleteAll string
	insert    string
	selectAll string
}

// sqlStore holds the database/sql logic shared by the SQLite and PostgreSQL stores.
type sqlStore struct {
	db *sql.DB
	q  queries
}

func openSQLStore(driver, dsn, name string, q queries) (*sqlStore, error) {
	db, err := sqlOpenFunc(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", name, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", name, err)
	}

	s := &sqlStore{db: db, q: q}
	if _, err := db.Exec(q.migrate); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to run migrations: %w", name, err)
	}
	return s, nil
}

// Publish replaces every stored definition in a single transaction.
func (s *sqlStore) Publish(ctx context.Context, cat *prefhook.Catalog) (err error) {
	publishedAt := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.q.deleteAll); err != nil {
		return fmt.Errorf("failed to clear definitions: %w", err)
	}

	for _, entry := range cat.All() {
		var cols columns
		cols, err = marshalColumns(entry.Definition)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", entry.Key, err)
		}
		_, err = tx.ExecContext(ctx, s.q.insert,
			entry.Key,
			entry.Module,
			entry.Title,
			entry.Serialize,
			cols.defaultValue,
			cols.formIDs,
			cols.formItem,
			publishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", entry.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit definitions: %w", err)
	}
	return nil
}

// Load returns every stored definition.
func (s *sqlStore) Load(ctx context.Context) (prefhook.Definitions, error) {
	rows, err := s.db.QueryContext(ctx, s.q.selectAll)
	if err != nil {
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}
	defer rows.Close()

	defs := make(prefhook.Definitions)
	for rows.Next() {
		var (
			key  string
			def  prefhook.Definition
			cols columns
		)
		if err := rows.Scan(&key, &def.Module, &def.Title, &def.Serialize, &cols.defaultValue, &cols.formIDs, &cols.formItem); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		if err := cols.unmarshalInto(&def); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		defs[key] = def
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return defs, nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// columns holds the JSON encoded fields of a definition row.
type columns struct {
	defaultValue string
	formIDs      string
	formItem     sql.NullString
}

func marshalColumns(def prefhook.Definition) (columns, error) {
	var cols columns

	dv, err := json.Marshal(def.DefaultValue)
	if err != nil {
		return cols, fmt.Errorf("failed to marshal default_value: %w", err)
	}
	cols.defaultValue = string(dv)

	formIDs := def.FormIDs
	if formIDs == nil {
		formIDs = []string{}
	}
	ids, err := json.Marshal(formIDs)
	if err != nil {
		return cols, fmt.Errorf("failed to marshal form_ids: %w", err)
	}
	cols.formIDs = string(ids)

	if def.FormItem != nil {
		item, err := json.Marshal(def.FormItem)
		if err != nil {
			return cols, fmt.Errorf("failed to marshal form_item: %w", err)
		}
		cols.formItem = sql.NullString{String: string(item), Valid: true}
	}
	return cols, nil
}

func (c columns) unmarshalInto(def *prefhook.Definition) error {
	dec := json.NewDecoder(strings.NewReader(c.defaultValue))
	dec.UseNumber()
	if err := dec.Decode(&def.DefaultValue); err != nil {
		return fmt.Errorf("failed to unmarshal default_value: %w", err)
	}
	if err := json.Unmarshal([]byte(c.formIDs), &def.FormIDs); err != nil {
		return fmt.Errorf("failed to unmarshal form_ids: %w", err)
	}
	if len(def.FormIDs) == 0 {
		def.FormIDs = nil
	}
	if c.formItem.Valid {
		def.FormItem = &prefhook.FormItem{}
		if err := json.Unmarshal([]byte(c.formItem.String), def.FormItem); err != nil {
			return fmt.Errorf("failed to unmarshal form_item: %w", err)
		}
	}
	return nil
}
