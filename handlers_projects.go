package main

import (
	"net/http"
	"net/url"

	"github.com/kidandcat/badiri/internal/tracker"
)

func workspaceURL(project string) string {
	if project == "" {
		return "/workspace"
	}
	return "/workspace?project=" + url.QueryEscape(project)
}

func (s *server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := s.svc.Projects(ctx)
	if err != nil {
		s.fail(w, r, "/desk", "error getting projects", err)
		return
	}
	project := r.URL.Query().Get("project")
	if project == "" && len(projects) > 0 {
		project = projects[0]
	}

	var tasks []taskView
	if project != "" {
		items, err := s.svc.ProjectTasks(ctx, project)
		if err != nil {
			s.fail(w, r, "/desk", "error getting tasks", err)
			return
		}
		for _, it := range items {
			subs, err := s.svc.Subtasks(ctx, project, it.Name)
			if err != nil {
				s.fail(w, r, "/desk", "error getting subtasks", err)
				return
			}
			tasks = append(tasks, taskView{Item: it, Subtasks: subs})
		}
	}

	users, err := s.svc.ActiveUserNames(ctx)
	if err != nil {
		s.fail(w, r, "/desk", "error loading users", err)
		return
	}
	s.page(w, r, "workspace.html", map[string]any{
		"Projects": projects,
		"Project":  project,
		"Tasks":    tasks,
		"Users":    users,
		"Statuses": tracker.Statuses,
	})
}

func (s *server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	project := formValue(r, "project")
	if p := formValue(r, "new_project"); p != "" {
		project = p
	}
	in := tracker.NewTask{
		Project:  project,
		Name:     formValue(r, "name"),
		Assignee: formValue(r, "assignee"),
		Status:   r.FormValue("status"),
		DueDate:  formValue(r, "due_date"),
		Comments: r.FormValue("comments"),
	}
	it, err := s.svc.CreateTask(r.Context(), in, currentSession(r).User)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "error creating task", err)
		return
	}
	redirectWithFlash(w, r, workspaceURL(it.Project), "Task added: "+it.Name)
}

func (s *server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	project := formValue(r, "project")
	ref, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "update task", err)
		return
	}
	it, err := s.svc.Reassign(r.Context(), ref, formValue(r, "assignee"), r.FormValue("status"), r.FormValue("comments"), currentSession(r).User)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "error updating task", err)
		return
	}
	redirectWithFlash(w, r, workspaceURL(it.Project), "Task updated: "+it.Name)
}

func (s *server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	project := formValue(r, "project")
	parent, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "create subtask", err)
		return
	}
	it, err := s.svc.CreateSubtask(r.Context(), parent, formValue(r, "subtask_name"), formValue(r, "assignee"), formValue(r, "due_date"), currentSession(r).User)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "error creating subtask", err)
		return
	}
	redirectWithFlash(w, r, workspaceURL(it.Project), "Subtask added: "+it.Name)
}

func (s *server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	project := formValue(r, "project")
	ref, err := refFromForm(r, tracker.KindSubtask)
	if err != nil {
		s.fail(w, r, workspaceURL(project), "update subtask", err)
		return
	}
	it, err := s.svc.SetSubtaskStatus(r.Context(), ref, r.FormValue("status"))
	if err != nil {
		s.fail(w, r, workspaceURL(project), "error updating subtask", err)
		return
	}
	redirectWithFlash(w, r, workspaceURL(it.Project), "Subtask updated: "+it.Name)
}
