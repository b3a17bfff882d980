package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// sqlBackend keeps each logical table as one row of JSON in badiri_tables.
// Columns and records are stored separately so column order survives.
type sqlBackend struct {
	db      *sql.DB
	dialect dialect
}

type dialect struct {
	name   string
	ddl    string
	read   string
	upsert string
}

var sqliteDialect = dialect{
	name: "sqlite",
	ddl: `CREATE TABLE IF NOT EXISTS badiri_tables (
		name TEXT PRIMARY KEY,
		columns TEXT NOT NULL,
		payload BLOB NOT NULL,
		revision INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	read: `SELECT columns, payload, revision FROM badiri_tables WHERE name = ?`,
	upsert: `INSERT INTO badiri_tables (name, columns, payload) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET columns = excluded.columns, payload = excluded.payload,
			revision = badiri_tables.revision + 1, updated_at = CURRENT_TIMESTAMP`,
}

var postgresDialect = dialect{
	name: "postgres",
	ddl: `CREATE TABLE IF NOT EXISTS badiri_tables (
		name TEXT PRIMARY KEY,
		columns JSONB NOT NULL,
		payload JSONB NOT NULL,
		revision BIGINT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	read: `SELECT columns::text, payload::text, revision FROM badiri_tables WHERE name = $1`,
	upsert: `INSERT INTO badiri_tables (name, columns, payload) VALUES ($1, $2::jsonb, $3::jsonb)
		ON CONFLICT(name) DO UPDATE SET columns = excluded.columns, payload = excluded.payload,
			revision = badiri_tables.revision + 1, updated_at = now()`,
}

func newSQLBackend(ctx context.Context, db *sql.DB, d dialect) (*sqlBackend, error) {
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		return nil, fmt.Errorf("create %s table store: %w", d.name, err)
	}
	return &sqlBackend{db: db, dialect: d}, nil
}

func (b *sqlBackend) Read(ctx context.Context, name string) (Table, bool, error) {
	var cols, payload string
	var rev int64
	err := b.db.QueryRowContext(ctx, b.dialect.read, name).Scan(&cols, &payload, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return Table{}, false, nil
	}
	if err != nil {
		return Table{}, false, fmt.Errorf("select %s: %w", name, err)
	}
	t := Table{Name: name, Revision: rev}
	if err := json.Unmarshal([]byte(cols), &t.Columns); err != nil {
		return Table{}, false, fmt.Errorf("decode %s columns: %w", name, err)
	}
	var records [][]string
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return Table{}, false, fmt.Errorf("decode %s rows: %w", name, err)
	}
	t.Rows = decodeRows(t.Columns, records)
	return t, true, nil
}

func (b *sqlBackend) Replace(ctx context.Context, t Table) error {
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return err
	}
	records := encodeRows(t)
	if records == nil {
		records = [][]string{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx, b.dialect.upsert, t.Name, string(cols), string(payload)); err != nil {
		return fmt.Errorf("upsert %s: %w", t.Name, err)
	}
	return nil
}

func (b *sqlBackend) Close() error { return b.db.Close() }
