package main

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/kidandcat/badiri/internal/blob"
)

//go:embed templates/*
var templateFS embed.FS

var tmpl = parseTemplates()

func parseTemplates() *template.Template {
	funcMap := template.FuncMap{
		"join":      strings.Join,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"markdown": func(content string) template.HTML {
			var buf strings.Builder
			if err := goldmark.Convert([]byte(content), &buf); err != nil {
				return template.HTML("<p>Error rendering markdown</p>")
			}
			return template.HTML(buf.String())
		},
		"fileName": blob.DisplayName,
		"eq": func(a, b any) bool {
			return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
		},
		"dict": func(values ...any) map[string]any {
			d := make(map[string]any)
			for i := 0; i < len(values)-1; i += 2 {
				d[fmt.Sprintf("%v", values[i])] = values[i+1]
			}
			return d
		},
		"statusClass": func(s string) string {
			return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

func renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

// page renders a full page with the navigation data every layout needs.
func (s *server) page(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	sess := currentSession(r)
	id := sess.Identity()
	data["User"] = id.Name
	data["IsAdmin"] = id.IsAdmin
	data["CanEdit"] = id.CanEdit()
	data["Flash"] = sess.TakeFlash()
	unread, err := s.svc.UnreadCount(r.Context(), id.Name)
	if err != nil {
		s.log.Warnw("unread count failed", "user", id.Name, "error", err)
	}
	data["Unread"] = unread
	renderTemplate(w, name, data)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
