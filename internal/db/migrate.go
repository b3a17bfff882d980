package db

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// MigrationResult records what happened to one table.
type MigrationResult struct {
	Table  string
	Rows   int
	Status string // "copied", "skipped: populated", "skipped: no file", "failed: ..."
}

// Migrate copies flat CSV tables into dst once. A table is skipped when dst
// already holds rows for it; after a successful copy the CSV file is renamed
// to <file>.backup. Failures are per table and do not stop the run.
func Migrate(ctx context.Context, src *CSVFiles, dst Backend, tables []string, log *zap.SugaredLogger) []MigrationResult {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	results := make([]MigrationResult, 0, len(tables))
	for _, name := range tables {
		res := MigrationResult{Table: name}
		results = append(results, migrateTable(ctx, src, dst, name, res, log))
	}
	return results
}

func migrateTable(ctx context.Context, src *CSVFiles, dst Backend, name string, res MigrationResult, log *zap.SugaredLogger) MigrationResult {
	t, ok, err := src.Read(ctx, name)
	if err != nil {
		log.Warnw("csv migration read failed", "table", name, "error", err)
		res.Status = "failed: " + err.Error()
		return res
	}
	if !ok {
		res.Status = "skipped: no file"
		return res
	}
	existing, found, err := dst.Read(ctx, name)
	if err != nil {
		log.Warnw("csv migration target read failed", "table", name, "error", err)
		res.Status = "failed: " + err.Error()
		return res
	}
	if found && len(existing.Rows) > 0 {
		res.Status = "skipped: populated"
		return res
	}
	if err := dst.Replace(ctx, t); err != nil {
		log.Warnw("csv migration write failed", "table", name, "error", err)
		res.Status = "failed: " + err.Error()
		return res
	}
	path := src.Path(name)
	if err := os.Rename(path, path+".backup"); err != nil {
		log.Warnw("csv migration backup rename failed", "file", path, "error", err)
	}
	res.Rows = len(t.Rows)
	res.Status = "copied"
	log.Infow("migrated csv table", "table", name, "rows", res.Rows)
	return res
}
