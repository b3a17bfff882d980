package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kidandcat/badiri/internal/api"
	"github.com/kidandcat/badiri/internal/tracker"
)

// redirectWithFlash leaves msg for the next page and sends the browser to path.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		currentSession(r).SetFlash(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// fail reports err to the user. Lookup, validation and permission errors go
// back to path as a flash message; anything else is logged and answered with 500.
func (s *server) fail(w http.ResponseWriter, r *http.Request, path, what string, err error) {
	status := api.StatusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Errorw(what, "user", currentSession(r).User, "path", r.URL.Path, "error", err)
		http.Error(w, "Something went wrong, please retry.", status)
		return
	}
	if isHTMX(r) {
		http.Error(w, err.Error(), status)
		return
	}
	if status == http.StatusForbidden {
		http.Error(w, "Forbidden", status)
		return
	}
	redirectWithFlash(w, r, path, err.Error())
}

// refFromForm reads the kind, index and name fields identifying a row.
func refFromForm(r *http.Request, kind tracker.Kind) (tracker.Ref, error) {
	if k := tracker.Kind(r.FormValue("kind")); k != "" {
		kind = k
	}
	idx := r.PathValue("index")
	if idx == "" {
		idx = r.FormValue("index")
	}
	index, err := strconv.Atoi(idx)
	if err != nil || !kind.Valid() {
		return tracker.Ref{}, fmt.Errorf("%w: invalid selection", tracker.ErrValidation)
	}
	return tracker.Ref{Kind: kind, Index: index, Name: r.FormValue("name")}, nil
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid index", tracker.ErrValidation)
	}
	return index, nil
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
