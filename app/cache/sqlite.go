package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const storeFile = "actionslaw.db"

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists blobs in a sqlite database under the cache directory.
// The schema is applied with embedded migrations on open.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, storeFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	// sqlite allows a single writer; keep the pool at one connection so
	// concurrent Put calls serialize instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM blobs WHERE cache_key = ? LIMIT 1`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe cache key %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, files map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for name, data := range files {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO blobs (cache_key, name, data, created_at)
			VALUES (?, ?, ?, ?)`,
			key, name, data, now)
		if err != nil {
			return fmt.Errorf("failed to store blob %s under key %s: %w", name, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blobs for key %s: %w", key, err)
	}

	return nil
}

// Get returns one blob, used by tests and debugging tooling.
func (s *SQLiteStore) Get(ctx context.Context, key, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE cache_key = ? AND name = ?`, key, name).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s under key %s: %w", name, key, err)
	}
	return data, nil
}
