package main

import (
	"net/http"
	"strings"
)

// chatTail is how many messages the chat page shows.
const chatTail = 20

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.RecentMessages(r.Context(), chatTail)
	if err != nil {
		s.fail(w, r, "/desk", "error loading chat", err)
		return
	}
	if isHTMX(r) {
		renderTemplate(w, "chat_messages", map[string]any{"Messages": msgs, "User": currentSession(r).User})
		return
	}
	s.page(w, r, "chat.html", map[string]any{"Messages": msgs})
}

func (s *server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.svc.PostMessage(r.Context(), currentSession(r).User, content); err != nil {
		s.fail(w, r, "/chat", "error posting message", err)
		return
	}

	if isHTMX(r) {
		msgs, err := s.svc.RecentMessages(r.Context(), chatTail)
		if err != nil {
			s.fail(w, r, "/chat", "error loading chat", err)
			return
		}
		renderTemplate(w, "chat_messages", map[string]any{"Messages": msgs, "User": currentSession(r).User})
		return
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}
