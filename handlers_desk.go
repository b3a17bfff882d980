package main

import (
	"net/http"

	"github.com/kidandcat/badiri/internal/tracker"
)

func (s *server) handleDesk(w http.ResponseWriter, r *http.Request) {
	user := currentSession(r).User
	items, err := s.svc.Desk(r.Context(), user)
	if err != nil {
		s.fail(w, r, "/desk", "error loading desk", err)
		return
	}
	users, err := s.svc.ActiveUserNames(r.Context())
	if err != nil {
		s.fail(w, r, "/desk", "error loading users", err)
		return
	}
	view := newDeskView(user, items)
	s.page(w, r, "desk.html", map[string]any{
		"Inbox":    view.Inbox,
		"Active":   view.Active,
		"Users":    users,
		"Statuses": tracker.Statuses,
	})
}

func (s *server) handleAccept(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, "/desk", "accept", err)
		return
	}
	it, err := s.svc.Accept(r.Context(), ref, currentSession(r).User, r.FormValue("note"))
	if err != nil {
		s.fail(w, r, "/desk", "error accepting task", err)
		return
	}
	redirectWithFlash(w, r, "/desk", "Accepted: "+it.Name)
}

func (s *server) handleRevert(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, "/desk", "revert", err)
		return
	}
	assignee := formValue(r, "assignee")
	if assignee == "" {
		redirectWithFlash(w, r, "/desk", "Choose who to revert to")
		return
	}
	it, err := s.svc.Revert(r.Context(), ref, assignee, currentSession(r).User, r.FormValue("note"))
	if err != nil {
		s.fail(w, r, "/desk", "error reverting task", err)
		return
	}
	redirectWithFlash(w, r, "/desk", "Reverted "+it.Name+" to "+assignee)
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, "/desk", "progress", err)
		return
	}
	it, err := s.svc.UpdateProgress(r.Context(), ref, r.FormValue("status"), currentSession(r).User, r.FormValue("note"))
	if err != nil {
		s.fail(w, r, "/desk", "error updating progress", err)
		return
	}
	redirectWithFlash(w, r, "/desk", "Updated "+it.Name+": "+it.Status)
}
