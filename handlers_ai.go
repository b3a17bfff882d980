package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/kidandcat/badiri/internal/extract"
)

const maxImageSize = 10 << 20

func (s *server) handleAI(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	var buffers []suggestionBuffer
	for _, src := range extract.Sources {
		if sugs := sess.Buffer(src); len(sugs) > 0 {
			buffers = append(buffers, suggestionBuffer{Source: src, Title: bufferTitles[src], Suggestions: sugs})
		}
	}
	s.page(w, r, "ai.html", map[string]any{
		"Buffers":       buffers,
		"KeyConfigured": s.cfg.AI.APIKey != "",
	})
}

// apiKey prefers the key typed into the form over the configured one.
func (s *server) apiKey(r *http.Request) string {
	if k := formValue(r, "api_key"); k != "" {
		return k
	}
	return s.cfg.AI.APIKey
}

// extractionMessage turns an adapter error into text for the flash.
func extractionMessage(err error) string {
	var apiErr *extract.APIError
	var formatErr *extract.FormatError
	switch {
	case errors.Is(err, extract.ErrNoAPIKey):
		return "Enter an API key first"
	case errors.Is(err, extract.ErrEmptyInput):
		return "Nothing to analyse"
	case errors.As(err, &apiErr):
		return "AI request failed: " + apiErr.Message
	case errors.As(err, &formatErr):
		return "AI reply could not be read as a task list"
	default:
		return "AI request failed: " + err.Error()
	}
}

// finishExtraction stores sugs in the session buffer for src on success and
// leaves the buffer untouched on failure.
func (s *server) finishExtraction(w http.ResponseWriter, r *http.Request, src extract.Source, sugs []extract.Suggestion, err error) {
	s.metrics.ObserveExtraction(string(src), err)
	if err != nil {
		s.log.Warnw("extraction failed", "source", src, "user", currentSession(r).User, "error", err)
		redirectWithFlash(w, r, "/ai", extractionMessage(err))
		return
	}
	currentSession(r).SetBuffer(src, sugs)
	redirectWithFlash(w, r, "/ai", fmt.Sprintf("Found %d suggested tasks", len(sugs)))
}

func (s *server) handleAIImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "Image too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		redirectWithFlash(w, r, "/ai", "Choose an image to analyse")
		return
	}
	defer file.Close()
	img, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return
	}
	users, err := s.svc.ActiveUserNames(r.Context())
	if err != nil {
		s.fail(w, r, "/ai", "error loading users", err)
		return
	}
	sugs, err := s.ai.ExtractFromImage(r.Context(), s.apiKey(r), img, header.Header.Get("Content-Type"), users)
	s.finishExtraction(w, r, extract.SourceImage, sugs, err)
}

func (s *server) handleAIChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.RecentMessages(r.Context(), 0)
	if err != nil {
		s.fail(w, r, "/ai", "error loading chat", err)
		return
	}
	lines := make([]extract.ChatLine, len(msgs))
	for i, m := range msgs {
		lines[i] = extract.ChatLine{Timestamp: m.Timestamp, User: m.User, Message: m.Message}
	}
	users, err := s.svc.ActiveUserNames(r.Context())
	if err != nil {
		s.fail(w, r, "/ai", "error loading users", err)
		return
	}
	sugs, err := s.ai.ExtractFromChat(r.Context(), s.apiKey(r), lines, users)
	s.finishExtraction(w, r, extract.SourceChat, sugs, err)
}

func (s *server) handleAIPlan(w http.ResponseWriter, r *http.Request) {
	goal := formValue(r, "goal")
	users, err := s.svc.ActiveUserNames(r.Context())
	if err != nil {
		s.fail(w, r, "/ai", "error loading users", err)
		return
	}
	sugs, err := s.ai.GeneratePlan(r.Context(), s.apiKey(r), goal, users)
	s.finishExtraction(w, r, extract.SourcePlan, sugs, err)
}

func formSource(r *http.Request) (extract.Source, bool) {
	src := extract.Source(r.FormValue("source"))
	return src, src.Valid()
}

// handleAIApprove turns the checked suggestions of one buffer into tasks.
func (s *server) handleAIApprove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	src, ok := formSource(r)
	if !ok {
		redirectWithFlash(w, r, "/ai", "Unknown suggestion list")
		return
	}
	sess := currentSession(r)
	sugs := sess.Buffer(src)
	selected := make([]bool, len(sugs))
	for _, v := range r.Form["selected"] {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i < len(selected) {
			selected[i] = true
		}
	}

	n, err := s.svc.ApproveSuggestions(r.Context(), sess.Identity(), src, sugs, selected)
	if err != nil {
		s.fail(w, r, "/ai", "error approving suggestions", err)
		return
	}
	sess.SetBuffer(src, nil)
	redirectWithFlash(w, r, "/ai", fmt.Sprintf("Approved %d tasks", n))
}

func (s *server) handleAIDiscard(w http.ResponseWriter, r *http.Request) {
	src, ok := formSource(r)
	if !ok {
		redirectWithFlash(w, r, "/ai", "Unknown suggestion list")
		return
	}
	currentSession(r).SetBuffer(src, nil)
	redirectWithFlash(w, r, "/ai", "Suggestions discarded")
}
