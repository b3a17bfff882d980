package db

import (
	"context"
	"fmt"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverCSV      = "csv"
	DriverMemory   = "memory"
)

// Options selects and locates a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	CSVDir      string
}

// Open returns the backend named by opts.Driver (default sqlite).
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	case DriverCSV:
		return OpenCSV(opts.CSVDir)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
