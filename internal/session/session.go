// Package session keeps per-login state: identity, pending AI suggestion
// buffers and a one-shot flash message.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/kidandcat/badiri/internal/extract"
	"github.com/kidandcat/badiri/internal/tracker"
)

var ErrNotFound = errors.New("session not found")

// Session is the state attached to one login cookie.
type Session struct {
	Token       string                                  `json:"token"`
	User        string                                  `json:"user"`
	Role        string                                  `json:"role"`
	IsAdmin     bool                                    `json:"is_admin"`
	Suggestions map[extract.Source][]extract.Suggestion `json:"suggestions,omitempty"`
	Flash       string                                  `json:"flash,omitempty"`
	CreatedAt   time.Time                               `json:"created_at"`

	dirty bool
}

// New starts a session for a logged-in identity.
func New(id tracker.Identity) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		User:      id.Name,
		Role:      id.Role,
		IsAdmin:   id.IsAdmin,
		CreatedAt: time.Now(),
	}, nil
}

func (s *Session) Identity() tracker.Identity {
	return tracker.Identity{Name: s.User, Role: s.Role, IsAdmin: s.IsAdmin}
}

// SetFlash stores a message for the next rendered page.
func (s *Session) SetFlash(msg string) {
	s.Flash = msg
	s.dirty = true
}

// TakeFlash returns the pending flash message and clears it.
func (s *Session) TakeFlash() string {
	msg := s.Flash
	if msg != "" {
		s.Flash = ""
		s.dirty = true
	}
	return msg
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// Buffer returns the pending suggestions extracted from src.
func (s *Session) Buffer(src extract.Source) []extract.Suggestion {
	return s.Suggestions[src]
}

// SetBuffer replaces the suggestions for src. An empty list clears it.
func (s *Session) SetBuffer(src extract.Source, sugs []extract.Suggestion) {
	s.dirty = true
	if len(sugs) == 0 {
		delete(s.Suggestions, src)
		return
	}
	if s.Suggestions == nil {
		s.Suggestions = make(map[extract.Source][]extract.Suggestion)
	}
	s.Suggestions[src] = sugs
}

// Store persists sessions by token.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
