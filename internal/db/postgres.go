package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/badiri?sslmode=disable"

var sqlOpen = sql.Open

// Postgres stores tables in a shared Postgres database.
type Postgres struct {
	*sqlBackend
}

// OpenPostgres connects with dsn (falls back to a localhost default) and
// ensures the table store exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	conn, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	b, err := newSQLBackend(ctx, conn, postgresDialect)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Postgres{sqlBackend: b}, nil
}
