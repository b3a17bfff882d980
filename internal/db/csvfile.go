package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CSVFiles keeps one <name>.csv per table with a header row. It is the
// original flat-file layout and the source for Migrate.
type CSVFiles struct {
	dir string
}

// OpenCSV uses dir as the table directory, creating it if needed.
func OpenCSV(dir string) (*CSVFiles, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	return &CSVFiles{dir: dir}, nil
}

// Path is the file backing table name.
func (c *CSVFiles) Path(name string) string {
	return filepath.Join(c.dir, name+".csv")
}

func (c *CSVFiles) Read(_ context.Context, name string) (Table, bool, error) {
	f, err := os.Open(c.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Table{}, false, nil
	}
	if err != nil {
		return Table{}, false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, false, fmt.Errorf("parse %s: %w", c.Path(name), err)
	}
	if len(records) == 0 {
		return Table{Name: name}, true, nil
	}
	t := Table{Name: name, Columns: records[0]}
	t.Rows = decodeRows(t.Columns, records[1:])
	return t, true, nil
}

func (c *CSVFiles) Replace(_ context.Context, t Table) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-"+t.Name+"-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(encodeRows(t)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.Path(t.Name))
}

func (c *CSVFiles) Close() error { return nil }
