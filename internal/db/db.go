// Package db persists the tracker's named tables. Every write replaces a whole
// table; reads back-fill any schema column the stored data lacks.
package db

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Backend is a physical table store. Read reports ok=false when the table has
// never been written.
type Backend interface {
	Read(ctx context.Context, name string) (t Table, ok bool, err error)
	Replace(ctx context.Context, t Table) error
	Close() error
}

// SaveObserver is called after every SaveAll with its outcome.
type SaveObserver func(table string, err error)

// Store owns all rows. Callers get copies; the only way to change data is a
// full-table SaveAll.
type Store struct {
	backend Backend
	mu      sync.Mutex
	log     *zap.SugaredLogger
	observe SaveObserver
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithSaveObserver registers a callback fired after each save.
func WithSaveObserver(fn SaveObserver) Option {
	return func(s *Store) { s.observe = fn }
}

// NewStore wraps a backend.
func NewStore(b Backend, opts ...Option) *Store {
	s := &Store{backend: b, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads a table and back-fills missing default columns. A table that was
// never saved comes back empty with exactly defaults as its columns.
func (s *Store) Load(ctx context.Context, name string, defaults []string) (Table, error) {
	t, ok, err := s.backend.Read(ctx, name)
	if err != nil {
		return Table{}, fmt.Errorf("load %s: %w", name, err)
	}
	if !ok {
		return Table{Name: name, Columns: append([]string(nil), defaults...)}, nil
	}
	t.Name = name
	backfill(&t, defaults)
	return t, nil
}

// SaveAll overwrites the persisted table with t. It is not retried.
func (s *Store) SaveAll(ctx context.Context, t Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, t)
}

func (s *Store) save(ctx context.Context, t Table) error {
	err := s.backend.Replace(ctx, t)
	if err != nil {
		err = fmt.Errorf("save %s: %w", t.Name, err)
		s.log.Errorw("table save failed", "table", t.Name, "rows", len(t.Rows), "error", err)
	} else {
		s.log.Debugw("table saved", "table", t.Name, "rows", len(t.Rows))
	}
	if s.observe != nil {
		s.observe(t.Name, err)
	}
	return err
}

// Update loads a table, applies fn and saves the result as one full replace.
// Updates inside this process are serialized; fn returning an error skips the save.
func (s *Store) Update(ctx context.Context, name string, defaults []string, fn func(*Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.Load(ctx, name, defaults)
	if err != nil {
		return err
	}
	if err := fn(&t); err != nil {
		return err
	}
	return s.save(ctx, t)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
