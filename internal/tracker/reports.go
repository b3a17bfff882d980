package tracker

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strings"
	"time"
)

type Totals struct {
	Tasks     int `json:"tasks"`
	Completed int `json:"completed"`
	Subtasks  int `json:"subtasks"`
	Overdue   int `json:"overdue"`
}

type ProjectHealth struct {
	Project   string `json:"project"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

type OverdueTask struct {
	Project     string `json:"project"`
	TaskName    string `json:"task_name"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue"`
}

// Capacity is one team member's load across tasks and subtasks.
type Capacity struct {
	Assignee  string `json:"assignee"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

type Report struct {
	Generated string          `json:"generated"`
	Totals    Totals          `json:"totals"`
	Projects  []ProjectHealth `json:"projects"`
	Overdue   []OverdueTask   `json:"overdue"`
	Capacity  []Capacity      `json:"capacity"`
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}

// parseDue reads a stored due date. ok is false for blank or unparsable values.
func parseDue(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	return t, err == nil
}

// Report computes the dashboard over the current tasks and subtasks.
func (s *Service) Report(ctx context.Context) (Report, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return Report{}, err
	}
	subs, err := s.AllSubtasks(ctx)
	if err != nil {
		return Report{}, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rep := Report{Generated: now.Format(TimestampLayout)}
	rep.Totals.Tasks = len(tasks)
	rep.Totals.Subtasks = len(subs)

	health := map[string]*ProjectHealth{}
	var projects []string
	for _, t := range tasks {
		h, ok := health[t.Project]
		if !ok {
			h = &ProjectHealth{Project: t.Project}
			health[t.Project] = h
			projects = append(projects, t.Project)
		}
		h.Total++
		if t.Status == StatusCompleted {
			h.Completed++
			rep.Totals.Completed++
			continue
		}
		if due, ok := parseDue(t.DueDate, now.Location()); ok && due.Before(today) {
			rep.Overdue = append(rep.Overdue, OverdueTask{
				Project:     t.Project,
				TaskName:    t.Name,
				Assignee:    t.Assignee,
				DueDate:     t.DueDate,
				DaysOverdue: int(math.Round(today.Sub(due).Hours() / 24)),
			})
		}
	}
	for _, p := range projects {
		h := health[p]
		h.Percent = percent(h.Completed, h.Total)
		rep.Projects = append(rep.Projects, *h)
	}
	rep.Totals.Overdue = len(rep.Overdue)

	load := map[string]*Capacity{}
	var order []string
	all := append(append([]Item(nil), tasks...), subs...)
	for _, it := range all {
		c, ok := load[it.Assignee]
		if !ok {
			c = &Capacity{Assignee: it.Assignee}
			load[it.Assignee] = c
			order = append(order, it.Assignee)
		}
		c.Total++
		if it.Status == StatusCompleted {
			c.Completed++
		}
	}
	for _, name := range order {
		c := load[name]
		c.Percent = percent(c.Completed, c.Total)
		rep.Capacity = append(rep.Capacity, *c)
	}
	return rep, nil
}

// ExportTasksCSV writes the task table with its header row.
func (s *Service) ExportTasksCSV(ctx context.Context, w io.Writer) error {
	t, err := s.store.Load(ctx, KindTask.table(), TaskColumns)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
