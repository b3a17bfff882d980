package tracker

import (
	"context"
	"strings"

	"github.com/kidandcat/badiri/internal/db"
)

// NewTask is the input of CreateTask.
type NewTask struct {
	Project  string
	Name     string
	Assignee string
	Status   string
	DueDate  string
	Comments string
}

// Projects lists distinct task projects in first-seen order.
func (s *Service) Projects(ctx context.Context) ([]string, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if t.Project == "" || seen[t.Project] {
			continue
		}
		seen[t.Project] = true
		out = append(out, t.Project)
	}
	return out, nil
}

// ProjectTasks returns the tasks of project, keeping their table indexes.
func (s *Service) ProjectTasks(ctx context.Context, project string) ([]Item, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, t := range tasks {
		if t.Project == project {
			out = append(out, t)
		}
	}
	return out, nil
}

// Subtasks returns the subtasks attached to parent inside project.
func (s *Service) Subtasks(ctx context.Context, project, parent string) ([]Item, error) {
	subs, err := s.AllSubtasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, st := range subs {
		if st.Project == project && st.Parent == parent {
			out = append(out, st)
		}
	}
	return out, nil
}

// CreateTask appends a task dated today. Status defaults to Pending.
func (s *Service) CreateTask(ctx context.Context, in NewTask, user string) (Item, error) {
	in.Project = strings.TrimSpace(in.Project)
	in.Name = strings.TrimSpace(in.Name)
	if in.Project == "" {
		return Item{}, required("project")
	}
	if in.Name == "" {
		return Item{}, required("task name")
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !validStatus(in.Status) {
		return Item{}, invalid("status", in.Status)
	}
	var created Item
	err := s.store.Update(ctx, db.Tasks, TaskColumns, func(t *db.Table) error {
		t.Append(db.Row{
			"Project":    in.Project,
			"Task Name":  in.Name,
			"Assignee":   in.Assignee,
			"Status":     in.Status,
			"Date Added": s.today(),
			"Due Date":   in.DueDate,
			"Comments":   in.Comments,
		})
		idx := len(t.Rows) - 1
		created = itemFromRow(KindTask, idx, t.Rows[idx])
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	s.log.Infow("task created", "project", created.Project, "name", created.Name, "assignee", created.Assignee)
	s.notifyAssigned(ctx, created, user)
	return created, nil
}

// SetSubtaskStatus changes only the status of a subtask.
func (s *Service) SetSubtaskStatus(ctx context.Context, ref Ref, status string) (Item, error) {
	if ref.Kind != KindSubtask {
		return Item{}, ErrNotFound
	}
	if !validStatus(status) {
		return Item{}, invalid("status", status)
	}
	return s.mutate(ctx, ref, nil, func(r db.Row) error {
		r["Status"] = status
		return nil
	})
}

// AddAttachment appends a blob key to the item's pipe-delimited attachment list.
func (s *Service) AddAttachment(ctx context.Context, ref Ref, key string) (Item, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "|") {
		return Item{}, invalid("attachment key", key)
	}
	return s.mutate(ctx, ref, nil, func(r db.Row) error {
		keys := append(splitAttachments(r["Attachments"]), key)
		r["Attachments"] = strings.Join(keys, "|")
		return nil
	})
}
