package main

import (
	"fmt"
	"net/http"
)

func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Report(r.Context())
	if err != nil {
		s.fail(w, r, "/desk", "error building report", err)
		return
	}
	s.page(w, r, "reports.html", map[string]any{
		"Report":          rep,
		"CalendarEnabled": s.calendar != nil,
	})
}

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := s.svc.ExportTasksCSV(r.Context(), w); err != nil {
		s.log.Errorw("csv export failed", "error", err)
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
	}
}

func (s *server) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		redirectWithFlash(w, r, "/reports", "Calendar sync is not configured")
		return
	}
	tasks, err := s.svc.Tasks(r.Context())
	if err != nil {
		s.fail(w, r, "/reports", "error loading tasks", err)
		return
	}
	res, err := s.calendar.Sync(r.Context(), tasks)
	msg := fmt.Sprintf("Calendar synced: %d added, %d updated, %d skipped", res.Inserted, res.Patched, res.Skipped)
	if err != nil {
		s.log.Warnw("calendar sync incomplete", "error", err)
		msg += " (some tasks failed, see logs)"
	}
	redirectWithFlash(w, r, "/reports", msg)
}
