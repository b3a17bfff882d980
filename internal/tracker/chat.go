package tracker

import (
	"context"
	"strings"

	"github.com/kidandcat/badiri/internal/db"
)

// PostMessage appends a chat line. Blank messages are ignored.
func (s *Service) PostMessage(ctx context.Context, user, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	ts := s.now().Format(ChatLayout)
	return s.store.Update(ctx, db.Chat, ChatColumns, func(t *db.Table) error {
		t.Append(db.Row{"Timestamp": ts, "User": user, "Message": text})
		return nil
	})
}

// RecentMessages returns the last n chat lines, oldest first. n <= 0 returns all.
func (s *Service) RecentMessages(ctx context.Context, n int) ([]ChatMessage, error) {
	t, err := s.store.Load(ctx, db.Chat, ChatColumns)
	if err != nil {
		return nil, err
	}
	rows := t.Rows
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	out := make([]ChatMessage, len(rows))
	for i, r := range rows {
		out[i] = ChatMessage{Timestamp: r["Timestamp"], User: r["User"], Message: r["Message"]}
	}
	return out, nil
}
