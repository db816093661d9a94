/*
Package sqlite provides a SQLite-backed implementation of the action
item store.

PURPOSE:
  The JSON-file store assumes a single writer; SQLite gives the same
  contract with real durability and database-level concurrency control.
  The same patterns apply to PostgreSQL - only minor dialect differences.

KEY TABLE:
  action_items: one row per promoted insight, status mutated in place.
  Deleting a row is the hard removal the tracker contract demands.

WAL MODE:
  Opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/action_items.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  tracker := tasks.NewTracker(store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - tasks/store.go:  interface definitions
  - store/jsonfile:  whole-file alternative for small deployments
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldpulse/finance-engine/tasks"
)

// Store implements tasks.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS action_items (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		code TEXT NOT NULL,
		origin TEXT NOT NULL,
		source_file TEXT,
		status TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_action_items_status
		ON action_items(status);
	CREATE INDEX IF NOT EXISTS idx_action_items_created_at
		ON action_items(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) LoadAll(ctx context.Context) ([]tasks.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, severity, message, code, origin, source_file, status, meta_json
		FROM action_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load action items: %w", err)
	}
	defer rows.Close()

	var items []tasks.ActionItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (tasks.ActionItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, severity, message, code, origin, source_file, status, meta_json
		FROM action_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return tasks.ActionItem{}, false, nil
	}
	if err != nil {
		return tasks.ActionItem{}, false, err
	}
	return item, true, nil
}

func (s *Store) Append(ctx context.Context, item tasks.ActionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metaJSON []byte
	if item.Meta != nil {
		var err error
		metaJSON, err = json.Marshal(item.Meta)
		if err != nil {
			return fmt.Errorf("encode action item meta: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_items (id, created_at, severity, message, code, origin, source_file, status, meta_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Timestamp.UTC().Format(time.RFC3339Nano),
		item.Severity,
		item.Message,
		item.Code,
		item.Origin,
		nullable(item.SourceFile),
		string(item.Status),
		nullableBytes(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("append action item: %w", err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status tasks.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE action_items SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update action item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM action_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete action item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (tasks.ActionItem, error) {
	var (
		item       tasks.ActionItem
		createdAt  string
		sourceFile sql.NullString
		metaJSON   sql.NullString
		status     string
	)
	if err := r.Scan(&item.ID, &createdAt, &item.Severity, &item.Message,
		&item.Code, &item.Origin, &sourceFile, &status, &metaJSON); err != nil {
		return tasks.ActionItem{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return tasks.ActionItem{}, fmt.Errorf("%w: bad timestamp %q", tasks.ErrStoreCorrupted, createdAt)
	}
	item.Timestamp = ts
	item.Status = tasks.Status(status)
	item.SourceFile = sourceFile.String

	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &item.Meta); err != nil {
			return tasks.ActionItem{}, fmt.Errorf("%w: bad meta for %s", tasks.ErrStoreCorrupted, item.ID)
		}
	}
	return item, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
