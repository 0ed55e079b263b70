package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the table layout changes; Open refuses
// to run against a database stamped with a newer version than it knows.
// For an older or missing stamp it creates any missing tables and indexes
// and re-stamps the database at schemaVersion; tables that already exist
// are not altered.
const schemaVersion = 2

// Store is the SQLite-backed data provider named in the component design:
// the single place episode, feed, and group state is read and written.
// All exported read methods are safe to call concurrently; mutations go
// through a WriterSession (see writer.go).
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and migrates the database at path, returning a
// ready Store. The caller must Close it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; one conn avoids SQLITE_BUSY churn
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_meta: %w", err)
	}
	var current int
	row := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`)
	switch err := row.Scan(&current); err {
	case sql.ErrNoRows:
		current = 0
	case nil:
		// fall through
	default:
		return fmt.Errorf("read schema_meta: %w", err)
	}
	if current > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, schemaVersion)
	}
	if current == schemaVersion {
		return nil
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS feeds (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL UNIQUE,
			group_id INTEGER REFERENCES groups(id) ON DELETE SET NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			title_overridden INTEGER NOT NULL DEFAULT 0,
			refresh_status INTEGER NOT NULL DEFAULT 0,
			refresh_error INTEGER NOT NULL DEFAULT 0,
			refresh_http_status INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY,
			feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
			guid TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			enclosure_url TEXT NOT NULL,
			pub_date INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			episode_num INTEGER,
			season_num INTEGER,
			status_tag INTEGER NOT NULL DEFAULT 0,
			status_position_ms INTEGER NOT NULL DEFAULT 0,
			is_new INTEGER NOT NULL DEFAULT 1,
			hidden INTEGER NOT NULL DEFAULT 0,
			UNIQUE(feed_id, guid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_feed_pub ON episodes(feed_id, pub_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_pub ON episodes(pub_date DESC)`,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_meta`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}
