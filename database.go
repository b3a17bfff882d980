package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/db"
	"github.com/kidandcat/badiri/internal/metrics"
	"github.com/kidandcat/badiri/internal/session"
)

var allTables = []string{db.Tasks, db.Subtasks, db.Users, db.Chat, db.Mail}

// openStore opens the configured backend and, for SQL backends, pulls in any
// legacy CSV tables found in the CSV directory.
func openStore(ctx context.Context, c config.StorageConfig, log *zap.SugaredLogger, m *metrics.Metrics) (*db.Store, error) {
	backend, err := db.Open(ctx, storageOptions(c))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if c.MigrateCSV && (c.Driver == "" || c.Driver == db.DriverSQLite || c.Driver == db.DriverPostgres) {
		src, err := db.OpenCSV(c.CSVDir)
		if err != nil {
			log.Warnw("csv migration skipped", "dir", c.CSVDir, "error", err)
		} else {
			for _, res := range db.Migrate(ctx, src, backend, allTables, log) {
				if res.Status != "skipped: no file" {
					log.Infow("csv migration", "table", res.Table, "rows", res.Rows, "status", res.Status)
				}
			}
		}
	}

	if sq, ok := backend.(*db.SQLite); ok {
		log.Infow("sqlite storage", "path", sq.Path())
	}

	opts := []db.Option{db.WithLogger(log)}
	if m != nil {
		opts = append(opts, db.WithSaveObserver(m.ObserveSave))
	}
	return db.NewStore(backend, opts...), nil
}

// openSessions returns the session store and a function that releases it.
func openSessions(ctx context.Context, c config.SessionConfig) (session.Store, func() error, error) {
	switch c.Driver {
	case "", "memory":
		return session.NewMemory(), func() error { return nil }, nil
	case "redis":
		r, err := session.OpenRedis(ctx, redisOptions(c))
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", c.Driver)
	}
}
