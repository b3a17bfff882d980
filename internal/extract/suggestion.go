package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source identifies what a suggestion buffer was extracted from.
type Source string

const (
	SourceImage Source = "image"
	SourceChat  Source = "chat"
	SourcePlan  Source = "plan"
)

// Sources lists every buffer kind in display order.
var Sources = []Source{SourceImage, SourceChat, SourcePlan}

// Provenance is the comment written on tasks approved from this source.
func (s Source) Provenance() string {
	switch s {
	case SourceChat:
		return "Chat AI extracted"
	case SourcePlan:
		return "AI Auto-Generated Plan"
	default:
		return "AI extracted"
	}
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceImage || s == SourceChat || s == SourcePlan
}

// Suggestion is a proposed task awaiting admin approval.
type Suggestion struct {
	Project  string `json:"project"`
	TaskName string `json:"task_name"`
	Assignee string `json:"assignee"`
}

// Fallbacks for keys the model leaves out.
const (
	NoProject   = "N/A"
	UnnamedTask = "Unnamed Task"
	NoAssignee  = "Unassigned"
)

// stripFences removes markdown code fences around a model reply.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// parseSuggestions decodes a JSON array of loosely keyed objects.
func parseSuggestions(raw string) ([]Suggestion, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	out := make([]Suggestion, 0, len(items))
	for _, it := range items {
		out = append(out, Suggestion{
			Project:  pick(it, NoProject, "Project", "project"),
			TaskName: pick(it, UnnamedTask, "TaskName", "Task Name", "task_name"),
			Assignee: pick(it, NoAssignee, "Assignee", "assignee"),
		})
	}
	return out, nil
}

func pick(m map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fallback
}
