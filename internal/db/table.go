package db

// Table names.
const (
	Tasks    = "tasks"
	Subtasks = "subtasks"
	Users    = "users"
	Chat     = "chat"
	Mail     = "mail"
)

// PasswordPlaceholder is written into user rows loaded without a Password column.
const PasswordPlaceholder = "1234"

// Row is one record keyed by column name. Missing keys read as "".
type Row map[string]string

// Table is a named, ordered set of columns and the rows stored under them.
type Table struct {
	Name     string
	Columns  []string
	Rows     []Row
	Revision int64 // bumped by SQL backends on every replace; informational only
}

// HasColumn reports whether col is part of the table schema.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Append adds a row, copying only known columns.
func (t *Table) Append(r Row) {
	row := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		row[c] = r[c]
	}
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy so callers can mutate freely.
func (t Table) Clone() Table {
	out := Table{Name: t.Name, Revision: t.Revision}
	out.Columns = append([]string(nil), t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// ColumnDefault is the value synthesized for a column missing from persisted data.
func ColumnDefault(table, column string) string {
	switch column {
	case "Status":
		if table == Users {
			return "Active"
		}
		return "Pending"
	case "Role":
		return "Standard"
	case "Password":
		return PasswordPlaceholder
	case "Read":
		return "No"
	}
	return ""
}

// backfill appends every default column missing from t and fills it on every row.
func backfill(t *Table, defaults []string) {
	for _, col := range defaults {
		if t.HasColumn(col) {
			continue
		}
		t.Columns = append(t.Columns, col)
		v := ColumnDefault(t.Name, col)
		for _, r := range t.Rows {
			r[col] = v
		}
	}
}

// encodeRows flattens rows into column-aligned records.
func encodeRows(t Table) [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = r[c]
		}
		out[i] = rec
	}
	return out
}

// decodeRows rebuilds rows from column-aligned records. Short records read
// missing trailing cells as "".
func decodeRows(columns []string, records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		r := make(Row, len(columns))
		for j, c := range columns {
			if j < len(rec) {
				r[c] = rec[j]
			} else {
				r[c] = ""
			}
		}
		rows = append(rows, r)
	}
	return rows
}
