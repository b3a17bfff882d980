package main

import (
	"github.com/kidandcat/badiri/internal/extract"
	"github.com/kidandcat/badiri/internal/tracker"
)

// suggestionBuffer is one pending extraction shown on the AI page.
type suggestionBuffer struct {
	Source      extract.Source
	Title       string
	Suggestions []extract.Suggestion
}

var bufferTitles = map[extract.Source]string{
	extract.SourceImage: "From meeting minutes",
	extract.SourceChat:  "From team chat",
	extract.SourcePlan:  "Generated plan",
}

// taskView is a workspace task with its subtasks.
type taskView struct {
	tracker.Item
	Subtasks []tracker.Item
}

// deskView splits a user's open work into the inbox and acknowledged items.
type deskView struct {
	Inbox  []tracker.Item
	Active []tracker.Item
}

func newDeskView(user string, items []tracker.Item) deskView {
	var v deskView
	for _, it := range items {
		if it.InInbox(user) {
			v.Inbox = append(v.Inbox, it)
		} else if it.Active(user) {
			v.Active = append(v.Active, it)
		}
	}
	return v
}
