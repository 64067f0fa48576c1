// Package todo persists the task list in the KV store under a single
// key, mirroring how the rest of the app stores its state.
package todo

import (
	"log/slog"
	"strings"
	"time"

	"github.com/agenda23/insightdash/internal/store"
)

const storeKey = "todos"

// Priorities in accepted order. Anything else normalizes to normal.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type Todo struct {
	ID        int64    `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Priority  string   `json:"priority"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// Stats summarizes the list for the status view.
type Stats struct {
	Total     int
	Completed int
	Open      int
}

type List struct {
	store *store.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewList(s *store.Store, log *slog.Logger) *List {
	if log == nil {
		log = slog.Default()
	}
	return &List{store: s, log: log, now: time.Now}
}

// WithClock replaces the list's clock. Tests use this to pin ids and
// creation timestamps.
func (l *List) WithClock(now func() time.Time) *List {
	l.now = now
	return l
}

// Todos returns the stored tasks, newest first.
func (l *List) Todos() []Todo {
	var todos []Todo
	l.store.Read(storeKey, &todos)
	return todos
}

// Add prepends a new task. Text is trimmed; empty text is rejected. The
// id is the creation time in epoch milliseconds, bumped past collisions
// so two adds in the same millisecond stay distinct.
func (l *List) Add(text, priority string, tags []string) (Todo, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Todo{}, false
	}

	todos := l.Todos()
	now := l.now()

	id := now.UnixMilli()
	for hasID(todos, id) {
		id++
	}

	todo := Todo{
		ID:        id,
		Text:      text,
		Priority:  normalizePriority(priority),
		Tags:      cleanTags(tags),
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	todos = append([]Todo{todo}, todos...)
	if !l.store.Write(storeKey, todos) {
		return Todo{}, false
	}
	return todo, true
}

// Update replaces the text, priority and tags of the task with id.
func (l *List) Update(id int64, text, priority string, tags []string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	todos := l.Todos()
	for i := range todos {
		if todos[i].ID == id {
			todos[i].Text = text
			todos[i].Priority = normalizePriority(priority)
			todos[i].Tags = cleanTags(tags)
			return l.store.Write(storeKey, todos)
		}
	}
	return false
}

// Toggle flips the completion state of the task with id.
func (l *List) Toggle(id int64) bool {
	todos := l.Todos()
	for i := range todos {
		if todos[i].ID == id {
			todos[i].Completed = !todos[i].Completed
			return l.store.Write(storeKey, todos)
		}
	}
	return false
}

// Delete removes the task with id.
func (l *List) Delete(id int64) bool {
	todos := l.Todos()
	for i := range todos {
		if todos[i].ID == id {
			todos = append(todos[:i], todos[i+1:]...)
			return l.store.Write(storeKey, todos)
		}
	}
	return false
}

func (l *List) Stats() Stats {
	var s Stats
	for _, t := range l.Todos() {
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Open++
		}
	}
	return s
}

func hasID(todos []Todo, id int64) bool {
	for _, t := range todos {
		if t.ID == id {
			return true
		}
	}
	return false
}

func normalizePriority(p string) string {
	switch p {
	case PriorityLow, PriorityHigh:
		return p
	default:
		return PriorityNormal
	}
}

func cleanTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
