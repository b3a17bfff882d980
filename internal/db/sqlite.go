package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite stores tables in a single-file embedded database.
type SQLite struct {
	*sqlBackend
	path string
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "badiri.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	b, err := newSQLBackend(ctx, conn, sqliteDialect)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLite{sqlBackend: b, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }
