package db

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

var taskCols = []string{"Project", "Task Name", "Assignee", "Status", "Date Added", "Due Date", "Comments"}

func TestLoadMissingTableReturnsDefaults(t *testing.T) {
	s := NewStore(NewMemory())
	tbl, err := s.Load(context.Background(), Tasks, taskCols)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Rows) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(tbl.Rows))
	}
	if !reflect.DeepEqual(tbl.Columns, taskCols) {
		t.Fatalf("columns = %v", tbl.Columns)
	}
}

func TestLoadBackfillsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := NewStore(mem)

	legacyUsers := Table{Name: Users, Columns: []string{"Full Name", "Email"}}
	legacyUsers.Append(Row{"Full Name": "Alice", "Email": "a@x.io"})
	if err := s.SaveAll(ctx, legacyUsers); err != nil {
		t.Fatalf("save users: %v", err)
	}
	legacyTasks := Table{Name: Tasks, Columns: []string{"Project", "Task Name"}}
	legacyTasks.Append(Row{"Project": "P", "Task Name": "T"})
	if err := s.SaveAll(ctx, legacyTasks); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	legacyMail := Table{Name: Mail, Columns: []string{"From"}}
	legacyMail.Append(Row{"From": "Bob"})
	if err := s.SaveAll(ctx, legacyMail); err != nil {
		t.Fatalf("save mail: %v", err)
	}

	users, err := s.Load(ctx, Users, []string{"Full Name", "Email", "Phone Number", "Status", "Role", "Password"})
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	u := users.Rows[0]
	if u["Status"] != "Active" || u["Role"] != "Standard" || u["Password"] != PasswordPlaceholder || u["Phone Number"] != "" {
		t.Fatalf("unexpected user defaults: %v", u)
	}

	tasks, err := s.Load(ctx, Tasks, taskCols)
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	tr := tasks.Rows[0]
	if tr["Status"] != "Pending" || tr["Comments"] != "" || tr["Assignee"] != "" {
		t.Fatalf("unexpected task defaults: %v", tr)
	}

	mail, err := s.Load(ctx, Mail, []string{"From", "Read", "Subject"})
	if err != nil {
		t.Fatalf("load mail: %v", err)
	}
	if mail.Rows[0]["Read"] != "No" || mail.Rows[0]["Subject"] != "" {
		t.Fatalf("unexpected mail defaults: %v", mail.Rows[0])
	}
	if !reflect.DeepEqual(mail.Columns, []string{"From", "Read", "Subject"}) {
		t.Fatalf("columns = %v", mail.Columns)
	}
}

func TestSaveAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())
	in := Table{Name: Tasks, Columns: taskCols}
	in.Append(Row{"Project": "P", "Task Name": "T1", "Assignee": "Alice", "Status": "Pending", "Comments": "x\ny"})
	in.Append(Row{"Project": "P", "Task Name": "T2", "Assignee": "Bob", "Status": "Completed"})
	if err := s.SaveAll(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(ctx, Tasks, taskCols)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(in.Rows, out.Rows) {
		t.Fatalf("round trip mismatch:\n in=%v\nout=%v", in.Rows, out.Rows)
	}
}

func TestUpdateSkipsSaveOnError(t *testing.T) {
	ctx := context.Background()
	var saves int
	s := NewStore(NewMemory(), WithSaveObserver(func(string, error) { saves++ }))
	boom := errors.New("boom")
	err := s.Update(ctx, Tasks, taskCols, func(t *Table) error {
		t.Append(Row{"Task Name": "lost"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if saves != 0 {
		t.Fatalf("expected no save, got %d", saves)
	}
	if err := s.Update(ctx, Tasks, taskCols, func(t *Table) error {
		t.Append(Row{"Task Name": "kept"})
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	tbl, _ := s.Load(ctx, Tasks, taskCols)
	if len(tbl.Rows) != 1 || tbl.Rows[0]["Task Name"] != "kept" {
		t.Fatalf("unexpected rows %v", tbl.Rows)
	}
}

func TestSaveFailureSurfaces(t *testing.T) {
	mem := NewMemory()
	mem.FailWrites = errors.New("disk full")
	var observed error
	s := NewStore(mem, WithSaveObserver(func(_ string, err error) { observed = err }))
	err := s.SaveAll(context.Background(), Table{Name: Chat, Columns: []string{"User"}})
	if err == nil || observed == nil {
		t.Fatalf("expected failure to surface, got %v / %v", err, observed)
	}
	if !errors.Is(err, mem.FailWrites) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())
	in := Table{Name: Chat, Columns: []string{"User", "Message"}}
	in.Append(Row{"User": "A", "Message": "hi"})
	if err := s.SaveAll(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, _ := s.Load(ctx, Chat, nil)
	first.Rows[0]["Message"] = "mutated"
	second, _ := s.Load(ctx, Chat, nil)
	if second.Rows[0]["Message"] != "hi" {
		t.Fatalf("store leaked a mutable row")
	}
}
