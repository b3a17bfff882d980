package tracker

import (
	"context"

	"github.com/kidandcat/badiri/internal/db"
	"github.com/kidandcat/badiri/internal/extract"
)

// ApproveSuggestions imports the selected suggestions as pending tasks due
// today. selected is parallel to suggestions; nil selects everything. Only
// admins may approve.
func (s *Service) ApproveSuggestions(ctx context.Context, id Identity, src extract.Source, suggestions []extract.Suggestion, selected []bool) (int, error) {
	if id.Role != RoleAdmin {
		return 0, ErrForbidden
	}
	var picked []extract.Suggestion
	for i, sg := range suggestions {
		if selected == nil || (i < len(selected) && selected[i]) {
			picked = append(picked, sg)
		}
	}
	if len(picked) == 0 {
		return 0, nil
	}
	today := s.today()
	err := s.store.Update(ctx, db.Tasks, TaskColumns, func(t *db.Table) error {
		for _, sg := range picked {
			t.Append(db.Row{
				"Project":    sg.Project,
				"Task Name":  sg.TaskName,
				"Assignee":   sg.Assignee,
				"Status":     StatusPending,
				"Date Added": today,
				"Due Date":   today,
				"Comments":   src.Provenance(),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Infow("suggestions approved", "source", src, "count", len(picked), "by", id.Name)
	return len(picked), nil
}
