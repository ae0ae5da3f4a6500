package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"zonaprop-watcher/models"
	"zonaprop-watcher/utils"
)

// dialect holds the statements that differ between database engines.
type dialect struct {
	name   string
	driver string
	schema string
	exists string
	record string
	count  string
}

var postgresDialect = dialect{
	name:   "postgres",
	driver: "postgres",
	schema: `
		CREATE TABLE IF NOT EXISTS properties (
			id           SERIAL      PRIMARY KEY,
			url          TEXT        UNIQUE NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			json_data    JSONB
		);

		CREATE INDEX IF NOT EXISTS idx_properties_processed_at ON properties(processed_at);
	`,
	exists: `SELECT EXISTS(SELECT 1 FROM properties WHERE url = $1)`,
	record: `
		INSERT INTO properties (url, processed_at, json_data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (url) DO UPDATE
		SET processed_at = EXCLUDED.processed_at, json_data = EXCLUDED.json_data
	`,
	count: `SELECT COUNT(*) FROM properties`,
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	schema: `
		CREATE TABLE IF NOT EXISTS properties (
			id           INTEGER   PRIMARY KEY AUTOINCREMENT,
			url          TEXT      UNIQUE NOT NULL,
			processed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			json_data    TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_properties_processed_at ON properties(processed_at);
	`,
	exists: `SELECT EXISTS(SELECT 1 FROM properties WHERE url = ?)`,
	record: `
		INSERT INTO properties (url, processed_at, json_data)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE
		SET processed_at = excluded.processed_at, json_data = excluded.json_data
	`,
	count: `SELECT COUNT(*) FROM properties`,
}

// SQLStore is a SeenStore backed by the properties table. The same table
// layout is used on PostgreSQL and on a local SQLite file.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *utils.Logger
}

// NewPostgresStore connects to PostgreSQL, waiting for the server to come up,
// and creates the properties table if needed.
func NewPostgresStore(ctx context.Context, dsn string, logger *utils.Logger) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn("[store] PostgreSQL not ready (attempt %d/10): %v", i+1, err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return newSQLStore(ctx, db, postgresDialect, logger)
}

// NewSQLiteStore opens (or creates) a SQLite database at path.
func NewSQLiteStore(ctx context.Context, path string, logger *utils.Logger) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection keeps writers from racing on the file lock.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	return newSQLStore(ctx, db, sqliteDialect, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *utils.Logger) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.schema)
	return err
}

// Exists reports whether url has already been recorded.
func (s *SQLStore) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, s.dialect.exists, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: exists: %w", s.dialect.name, err)
	}
	return exists, nil
}

// Record stores the listing under url. Recording the same url again
// replaces the stored listing.
func (s *SQLStore) Record(ctx context.Context, url string, listing *models.Listing) error {
	data, err := listing.JSON()
	if err != nil {
		return fmt.Errorf("%s: record: %w", s.dialect.name, err)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.record, url, time.Now().UTC(), string(data)); err != nil {
		return fmt.Errorf("%s: record %s: %w", s.dialect.name, url, err)
	}
	s.logger.Debug("[store] Recorded %s", url)
	return nil
}

// Count returns the number of recorded listings.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.dialect.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count: %w", s.dialect.name, err)
	}
	return n, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
