package main

import (
	"net/http"

	"github.com/kidandcat/badiri/internal/tracker"
)

func (s *server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users(r.Context())
	if err != nil {
		s.fail(w, r, "/desk", "error listing users", err)
		return
	}
	files, err := s.blobs.List(r.Context(), "attachments/")
	if err != nil {
		s.log.Warnw("attachment listing failed", "error", err)
	}
	var usage storageUsage
	for _, f := range files {
		usage.Files++
		usage.Bytes += f.Size
	}
	s.page(w, r, "admin.html", map[string]any{
		"Users":        users,
		"Roles":        tracker.Roles,
		"UserStatuses": tracker.UserStatuses,
		"Storage":      usage,
		"BlobDriver":   s.blobs.Driver(),
	})
}

// storageUsage summarises the attachment store on the admin page.
type storageUsage struct {
	Files int
	Bytes int64
}

func userFromForm(r *http.Request) tracker.User {
	return tracker.User{
		FullName: formValue(r, "full_name"),
		Email:    formValue(r, "email"),
		Phone:    formValue(r, "phone"),
		Status:   r.FormValue("status"),
		Role:     r.FormValue("role"),
		Password: formValue(r, "password"),
	}
}

func (s *server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.RegisterUser(r.Context(), userFromForm(r))
	if err != nil {
		s.fail(w, r, "/admin", "error registering user", err)
		return
	}
	redirectWithFlash(w, r, "/admin", "Registered "+u.FullName)
}

func (s *server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.fail(w, r, "/admin", "update user", err)
		return
	}
	u, err := s.svc.UpdateUser(r.Context(), index, r.FormValue("old_name"), userFromForm(r))
	if err != nil {
		s.fail(w, r, "/admin", "error updating user", err)
		return
	}
	redirectWithFlash(w, r, "/admin", "Updated "+u.FullName)
}
