// Package tracker implements the team task tracker on top of the table store:
// the assignment lifecycle, the project workspace, users, chat, mail and reports.
package tracker

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kidandcat/badiri/internal/db"
)

var escape = html.EscapeString

// Notifier delivers an email to one address.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Service applies tracker operations. Each mutation is a single full-table
// save through the store.
type Service struct {
	store  *db.Store
	now    func() time.Time
	notify Notifier
	log    *zap.SugaredLogger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier enables assignment and mail emails.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store *db.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) timestamp() string { return s.now().Format(TimestampLayout) }
func (s *Service) today() string     { return s.now().Format(DateLayout) }

func (s *Service) items(ctx context.Context, k Kind) ([]Item, error) {
	t, err := s.store.Load(ctx, k.table(), k.columns())
	if err != nil {
		return nil, err
	}
	out := make([]Item, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = itemFromRow(k, i, r)
	}
	return out, nil
}

// Tasks returns every task row in table order.
func (s *Service) Tasks(ctx context.Context) ([]Item, error) { return s.items(ctx, KindTask) }

// AllSubtasks returns every subtask row in table order.
func (s *Service) AllSubtasks(ctx context.Context) ([]Item, error) { return s.items(ctx, KindSubtask) }

// Item returns the row addressed by ref, or ErrNotFound if it moved.
func (s *Service) Item(ctx context.Context, ref Ref) (Item, error) {
	if !ref.Kind.Valid() {
		return Item{}, fmt.Errorf("%w: kind %q", ErrNotFound, ref.Kind)
	}
	items, err := s.items(ctx, ref.Kind)
	if err != nil {
		return Item{}, err
	}
	if ref.Index < 0 || ref.Index >= len(items) || items[ref.Index].Name != ref.Name {
		return Item{}, ErrNotFound
	}
	return items[ref.Index], nil
}

// mutate locates ref inside its table and applies fn to the live row.
// check may reject the current row with ErrNotFound before anything changes.
func (s *Service) mutate(ctx context.Context, ref Ref, check func(Item) bool, fn func(db.Row) error) (Item, error) {
	if !ref.Kind.Valid() {
		return Item{}, fmt.Errorf("%w: kind %q", ErrNotFound, ref.Kind)
	}
	var out Item
	err := s.store.Update(ctx, ref.Kind.table(), ref.Kind.columns(), func(t *db.Table) error {
		if ref.Index < 0 || ref.Index >= len(t.Rows) {
			return ErrNotFound
		}
		row := t.Rows[ref.Index]
		if row[ref.Kind.nameColumn()] != ref.Name {
			return ErrNotFound
		}
		if check != nil && !check(itemFromRow(ref.Kind, ref.Index, row)) {
			return ErrNotFound
		}
		if err := fn(row); err != nil {
			return err
		}
		out = itemFromRow(ref.Kind, ref.Index, row)
		return nil
	})
	return out, err
}

// appendNote trims the existing comment log and appends note verbatim.
func appendNote(existing, note string) string {
	return strings.TrimSpace(existing) + note
}

// notifyUser emails the named user in the background when a notifier is
// configured and the user has an address. Failures are only logged.
func (s *Service) notifyUser(ctx context.Context, name, subject, html string) {
	if s.notify == nil || name == "" {
		return
	}
	users, err := s.Users(ctx)
	if err != nil {
		s.log.Warnw("notification lookup failed", "user", name, "error", err)
		return
	}
	var email string
	for _, u := range users {
		if u.FullName == name {
			email = strings.TrimSpace(u.Email)
			break
		}
	}
	if email == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.notify.Send(ctx, email, subject, html); err != nil {
			s.log.Warnw("notification failed", "to", email, "subject", subject, "error", err)
		}
	}()
}

func (s *Service) notifyAssigned(ctx context.Context, it Item, by string) {
	what := "task"
	if it.Kind == KindSubtask {
		what = "subtask"
	}
	subject := fmt.Sprintf("New %s: %s", what, it.Name)
	html := fmt.Sprintf("<p>%s assigned you the %s <strong>%s</strong> in project %s.</p>",
		escape(by), what, escape(it.Name), escape(it.Project))
	if it.DueDate != "" {
		html += fmt.Sprintf("<p>Due %s.</p>", escape(it.DueDate))
	}
	s.notifyUser(ctx, it.Assignee, subject, html)
}
