package main

import (
	"net/http"
)

func (s *server) handleMail(w http.ResponseWriter, r *http.Request) {
	user := currentSession(r).User
	inbox, err := s.svc.MailboxFor(r.Context(), user)
	if err != nil {
		s.fail(w, r, "/desk", "error loading mailbox", err)
		return
	}
	sent, err := s.svc.SentBy(r.Context(), user)
	if err != nil {
		s.fail(w, r, "/desk", "error loading sent mail", err)
		return
	}
	users, err := s.svc.ActiveUserNames(r.Context())
	if err != nil {
		s.fail(w, r, "/desk", "error loading users", err)
		return
	}
	s.page(w, r, "mail.html", map[string]any{
		"Inbox": inbox,
		"Sent":  sent,
		"Users": users,
	})
}

func (s *server) handleSendMail(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.SendMail(r.Context(), currentSession(r).User, r.FormValue("to"), r.FormValue("subject"), r.FormValue("message"))
	if err != nil {
		s.fail(w, r, "/mail", "error sending mail", err)
		return
	}
	redirectWithFlash(w, r, "/mail", "Message sent to "+m.To)
}

func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.fail(w, r, "/mail", "mark read", err)
		return
	}
	if err := s.svc.MarkRead(r.Context(), index, currentSession(r).User); err != nil {
		s.fail(w, r, "/mail", "error marking mail read", err)
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/mail", http.StatusSeeOther)
}
