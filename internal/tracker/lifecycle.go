package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/kidandcat/badiri/internal/db"
)

const (
	defaultAcceptNote = "Task formally accepted."
	defaultRevertNote = "Task reverted."
)

// ListInbox returns tasks then subtasks assigned to user that are pending and
// carry no comment mentioning user.
func (s *Service) ListInbox(ctx context.Context, user string) ([]Item, error) {
	return s.filter(ctx, func(it Item) bool { return it.InInbox(user) })
}

// Desk returns every unfinished task and subtask assigned to user, both
// acknowledged and still in the inbox.
func (s *Service) Desk(ctx context.Context, user string) ([]Item, error) {
	return s.filter(ctx, func(it Item) bool {
		return it.AssignedTo(user) && it.Status != StatusCompleted
	})
}

func (s *Service) filter(ctx context.Context, keep func(Item) bool) ([]Item, error) {
	var out []Item
	for _, k := range []Kind{KindTask, KindSubtask} {
		items, err := s.items(ctx, k)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if keep(it) {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

// Accept moves an inbox item to In Progress and records the acceptance.
func (s *Service) Accept(ctx context.Context, ref Ref, user, note string) (Item, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = defaultAcceptNote
	}
	entry := fmt.Sprintf("\n[%s] %s ACCEPTED: %s", s.timestamp(), user, note)
	it, err := s.mutate(ctx, ref, func(it Item) bool { return it.InInbox(user) }, func(r db.Row) error {
		r["Status"] = StatusInProgress
		r["Comments"] = appendNote(r["Comments"], entry)
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	s.log.Infow("assignment accepted", "kind", it.Kind, "name", it.Name, "user", user)
	return it, nil
}

// Revert hands an item assigned to user over to newAssignee. Reverting to
// oneself is allowed.
func (s *Service) Revert(ctx context.Context, ref Ref, newAssignee, user, note string) (Item, error) {
	newAssignee = strings.TrimSpace(newAssignee)
	if newAssignee == "" {
		return Item{}, required("assignee")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = defaultRevertNote
	}
	entry := fmt.Sprintf("\n[%s] %s REVERTED to %s: %s", s.timestamp(), user, newAssignee, note)
	it, err := s.mutate(ctx, ref, func(it Item) bool { return it.AssignedTo(user) }, func(r db.Row) error {
		r["Assignee"] = newAssignee
		r["Comments"] = appendNote(r["Comments"], entry)
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	s.log.Infow("assignment reverted", "kind", it.Kind, "name", it.Name, "from", user, "to", newAssignee)
	if newAssignee != user {
		s.notifyAssigned(ctx, it, user)
	}
	return it, nil
}

// UpdateProgress sets any status on an item assigned to user, appending note
// when it is not blank.
func (s *Service) UpdateProgress(ctx context.Context, ref Ref, status, user, note string) (Item, error) {
	if !validStatus(status) {
		return Item{}, invalid("status", status)
	}
	note = strings.TrimSpace(note)
	ts := s.timestamp()
	return s.mutate(ctx, ref, func(it Item) bool { return it.AssignedTo(user) }, func(r db.Row) error {
		if note != "" {
			r["Comments"] = appendNote(r["Comments"], fmt.Sprintf("\n[%s] %s: %s", ts, user, note))
		}
		r["Status"] = status
		return nil
	})
}

// Reassign overwrites assignee, status and comments. A changed assignee adds a
// forwarding line to the new comments.
func (s *Service) Reassign(ctx context.Context, ref Ref, newAssignee, status, comments, user string) (Item, error) {
	if strings.TrimSpace(newAssignee) == "" {
		return Item{}, required("assignee")
	}
	if !validStatus(status) {
		return Item{}, invalid("status", status)
	}
	var previous string
	ts := s.timestamp()
	it, err := s.mutate(ctx, ref, nil, func(r db.Row) error {
		previous = r["Assignee"]
		if newAssignee != previous {
			comments = appendNote(comments, fmt.Sprintf("\n[System: Forwarded from %s to %s on %s]", previous, newAssignee, ts))
		}
		r["Assignee"] = newAssignee
		r["Status"] = status
		r["Comments"] = comments
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	if previous != newAssignee {
		s.log.Infow("assignment forwarded", "kind", it.Kind, "name", it.Name, "from", previous, "to", newAssignee, "by", user)
		s.notifyAssigned(ctx, it, user)
	}
	return it, nil
}

// CreateSubtask adds a pending subtask under the task at parent.
func (s *Service) CreateSubtask(ctx context.Context, parent Ref, name, assignee, dueDate, user string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, required("subtask name")
	}
	if parent.Kind != KindTask {
		return Item{}, fmt.Errorf("%w: parent must be a task", ErrValidation)
	}
	p, err := s.Item(ctx, parent)
	if err != nil {
		return Item{}, err
	}
	var created Item
	err = s.store.Update(ctx, db.Subtasks, SubtaskColumns, func(t *db.Table) error {
		t.Append(db.Row{
			"Project":      p.Project,
			"Parent Task":  p.Name,
			"Subtask Name": name,
			"Assignee":     assignee,
			"Status":       StatusPending,
			"Date Added":   s.today(),
			"Due Date":     dueDate,
			"Comments":     "",
		})
		idx := len(t.Rows) - 1
		created = itemFromRow(KindSubtask, idx, t.Rows[idx])
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	s.notifyAssigned(ctx, created, user)
	return created, nil
}
