// Package calendar mirrors task due dates into a Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/tracker"
)

// TaskProperty is the private extended property that links an event to its task.
const TaskProperty = "badiri_task"

// Result counts what a sync did.
type Result struct {
	Inserted int `json:"inserted"`
	Patched  int `json:"patched"`
	Skipped  int `json:"skipped"`
}

// Syncer pushes task due dates to one calendar.
type Syncer struct {
	srv        *gcal.Service
	calendarID string
	loc        *time.Location
	log        *zap.SugaredLogger
}

// New authenticates with the service-account JSON named in cfg.
func New(ctx context.Context, cfg config.CalendarConfig, log *zap.SugaredLogger) (*Syncer, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(data, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	srv, err := gcal.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar client: %w", err)
	}
	return NewWithService(srv, cfg.ID, log), nil
}

// NewWithService wraps an existing API client.
func NewWithService(srv *gcal.Service, calendarID string, log *zap.SugaredLogger) *Syncer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Syncer{srv: srv, calendarID: calendarID, loc: time.Local, log: log}
}

// TaskKey identifies a task across syncs.
func TaskKey(it tracker.Item) string { return it.Project + "/" + it.Name }

func (s *Syncer) event(it tracker.Item, due time.Time) *gcal.Event {
	day := due.Format(tracker.DateLayout)
	next := due.AddDate(0, 0, 1).Format(tracker.DateLayout)
	return &gcal.Event{
		Summary:     fmt.Sprintf("%s: %s", it.Project, it.Name),
		Description: fmt.Sprintf("Assignee: %s\nStatus: %s", it.Assignee, it.Status),
		Start:       &gcal.EventDateTime{Date: day},
		End:         &gcal.EventDateTime{Date: next},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{TaskProperty: TaskKey(it)},
		},
	}
}

// Sync upserts an all-day event for every open task with a due date.
// A failure on one task does not stop the rest.
func (s *Syncer) Sync(ctx context.Context, tasks []tracker.Item) (Result, error) {
	var res Result
	var errs []error
	for _, it := range tasks {
		due, ok := it.Due(s.loc)
		if !ok || it.Status == tracker.StatusCompleted {
			res.Skipped++
			continue
		}
		inserted, err := s.syncOne(ctx, it, due)
		if err != nil {
			s.log.Warnw("calendar sync failed", "task", TaskKey(it), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", TaskKey(it), err))
			continue
		}
		if inserted {
			res.Inserted++
		} else {
			res.Patched++
		}
	}
	return res, errors.Join(errs...)
}

func (s *Syncer) syncOne(ctx context.Context, it tracker.Item, due time.Time) (bool, error) {
	ev := s.event(it, due)
	existing, err := s.find(ctx, TaskKey(it))
	if err != nil {
		return false, fmt.Errorf("error searching for event: %w", err)
	}
	if existing != nil {
		_, err := s.srv.Events.Patch(s.calendarID, existing.Id, ev).Context(ctx).Do()
		return false, err
	}
	_, err = s.srv.Events.Insert(s.calendarID, ev).Context(ctx).Do()
	return true, err
}

func (s *Syncer) find(ctx context.Context, key string) (*gcal.Event, error) {
	events, err := s.srv.Events.List(s.calendarID).
		PrivateExtendedProperty(TaskProperty + "=" + key).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
