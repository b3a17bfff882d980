package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/kidandcat/badiri/internal/config"
)

func TestSendViaResend(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(config.EmailConfig{FromEmail: "Badiri <b@example.com>", ResendAPIKey: "re_123"}, WithResendURL(srv.URL))
	if err := s.Send(context.Background(), "amy@example.com", "New task: Launch", "<p>hi</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer re_123" {
		t.Fatalf("authorization = %q", auth)
	}
	if len(got.To) != 1 || got.To[0] != "amy@example.com" || got.Subject != "New task: Launch" || got.HTML != "<p>hi</p>" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSendViaResendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := New(config.EmailConfig{ResendAPIKey: "re_123"}, WithResendURL(srv.URL))
	err := s.Send(context.Background(), "amy@example.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestSendViaSMTP(t *testing.T) {
	s := New(config.EmailConfig{
		FromEmail:   "b@example.com",
		SMTPEnabled: true,
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "587",
		SMTPUser:    "user",
		SMTPPass:    "pass",
	})
	var addr string
	var msg string
	s.sendMail = func(a string, _ smtp.Auth, from string, to []string, m []byte) error {
		addr, msg = a, string(m)
		return nil
	}
	if err := s.Send(context.Background(), "amy@example.com", "Hello", "<b>x</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if addr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", addr)
	}
	if !strings.Contains(msg, "Subject: Hello\r\n") || !strings.HasSuffix(msg, "<b>x</b>") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestSMTPSubjectCannotAddHeaders(t *testing.T) {
	s := New(config.EmailConfig{FromEmail: "b@example.com", SMTPEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: "25"})
	var msg string
	s.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, m []byte) error {
		msg = string(m)
		return nil
	}
	if err := s.Send(context.Background(), "amy@example.com", "New message: hi\r\nReply-To: attacker@evil.test", "<p>x</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(msg, "\r\nReply-To:") {
		t.Fatalf("subject injected a header: %q", msg)
	}
	if !strings.Contains(msg, "Subject: New message: hi Reply-To: attacker@evil.test\r\n") {
		t.Fatalf("unexpected subject line in %q", msg)
	}

	if err := s.Send(context.Background(), "amy@example.com\r\nBcc: x@evil.test", "hi", "x"); err == nil {
		t.Fatal("recipient with a line break accepted")
	}
}

func TestSMTPEncodesNonASCIISubject(t *testing.T) {
	s := New(config.EmailConfig{FromEmail: "b@example.com", SMTPEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: "25"})
	var msg string
	s.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, m []byte) error {
		msg = string(m)
		return nil
	}
	if err := s.Send(context.Background(), "amy@example.com", "Mkutano wa kesho ✓", "x"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Fatalf("subject not encoded: %q", msg)
	}
}

func TestDisabled(t *testing.T) {
	s := New(config.EmailConfig{})
	if s.Enabled() {
		t.Fatal("expected disabled")
	}
	if err := s.Send(context.Background(), "a@example.com", "s", "b"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
