package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/kidandcat/badiri/internal/db"
)

// SendMail stores an unread message from one user to another.
func (s *Service) SendMail(ctx context.Context, from, to, subject, message string) (Mail, error) {
	to = strings.TrimSpace(to)
	subject = strings.TrimSpace(subject)
	if to == "" {
		return Mail{}, required("recipient")
	}
	if subject == "" {
		return Mail{}, required("subject")
	}
	if strings.ContainsAny(to, "\r\n") {
		return Mail{}, multiline("recipient")
	}
	if strings.ContainsAny(subject, "\r\n") {
		return Mail{}, multiline("subject")
	}
	var m Mail
	err := s.store.Update(ctx, db.Mail, MailColumns, func(t *db.Table) error {
		t.Append(db.Row{
			"Timestamp": s.timestamp(),
			"From":      from,
			"To":        to,
			"Subject":   subject,
			"Message":   message,
			"Read":      "No",
		})
		idx := len(t.Rows) - 1
		m = mailFromRow(idx, t.Rows[idx])
		return nil
	})
	if err != nil {
		return Mail{}, err
	}
	s.notifyUser(ctx, to, "New message: "+subject,
		fmt.Sprintf("<p>%s sent you a message on Badiri.</p><p><strong>%s</strong></p>", escape(from), escape(subject)))
	return m, nil
}

func (s *Service) mails(ctx context.Context, keep func(Mail) bool) ([]Mail, error) {
	t, err := s.store.Load(ctx, db.Mail, MailColumns)
	if err != nil {
		return nil, err
	}
	var out []Mail
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if m := mailFromRow(i, t.Rows[i]); keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// MailboxFor returns messages addressed to user, newest first.
func (s *Service) MailboxFor(ctx context.Context, user string) ([]Mail, error) {
	return s.mails(ctx, func(m Mail) bool { return m.To == user })
}

// SentBy returns messages user sent, newest first.
func (s *Service) SentBy(ctx context.Context, user string) ([]Mail, error) {
	return s.mails(ctx, func(m Mail) bool { return m.From == user })
}

// UnreadCount counts unread messages addressed to user.
func (s *Service) UnreadCount(ctx context.Context, user string) (int, error) {
	box, err := s.mails(ctx, func(m Mail) bool { return m.To == user && !m.Read })
	return len(box), err
}

// MarkRead flags the message at index as read. Only its recipient may do so.
func (s *Service) MarkRead(ctx context.Context, index int, user string) error {
	return s.store.Update(ctx, db.Mail, MailColumns, func(t *db.Table) error {
		if index < 0 || index >= len(t.Rows) {
			return ErrNotFound
		}
		if t.Rows[index]["To"] != user {
			return ErrForbidden
		}
		t.Rows[index]["Read"] = "Yes"
		return nil
	})
}
