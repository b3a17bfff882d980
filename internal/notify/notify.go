// Package notify delivers email notifications through the Resend API or SMTP.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/kidandcat/badiri/internal/config"
)

const resendURL = "https://api.resend.com/emails"

// ErrDisabled is returned when no transport is configured.
var ErrDisabled = errors.New("email notifications disabled")

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender implements tracker.Notifier.
type Sender struct {
	cfg        config.EmailConfig
	resendURL  string
	httpClient *http.Client
	sendMail   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type Option func(*Sender)

// WithResendURL points the Resend transport at another endpoint.
func WithResendURL(u string) Option { return func(s *Sender) { s.resendURL = u } }

func WithHTTPClient(c *http.Client) Option { return func(s *Sender) { s.httpClient = c } }

func New(cfg config.EmailConfig, opts ...Option) *Sender {
	s := &Sender{
		cfg:        cfg,
		resendURL:  resendURL,
		httpClient: http.DefaultClient,
		sendMail:   smtp.SendMail,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sender) Enabled() bool { return s.cfg.Enabled() }

func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if to == "" {
		return fmt.Errorf("send email: empty recipient")
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("send email: invalid recipient %q", to)
	}
	subject = headerSafe(subject)
	if s.cfg.SMTPEnabled {
		return s.sendViaSMTP(to, subject, html)
	}
	return s.sendViaResend(ctx, to, subject, html)
}

func (s *Sender) sendViaResend(ctx context.Context, to, subject, html string) error {
	body := resendRequest{
		From:    s.cfg.FromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resendURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}

func (s *Sender) sendViaSMTP(to, subject, html string) error {
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	msg := "From: " + s.cfg.FromEmail + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	if err := s.sendMail(addr, auth, s.cfg.SMTPUser, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// headerSafe folds line breaks into spaces so a value cannot start a new header.
func headerSafe(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}
