package settings

import (
	"encoding/json"
	"time"
)

// ExportData is the portable snapshot of all user state, used to move a
// dashboard between machines.
type ExportData struct {
	APIKeys    map[string]string `json:"apiKeys"`
	Todos      json.RawMessage   `json:"todos,omitempty"`
	Theme      string            `json:"theme"`
	Settings   Settings          `json:"settings"`
	ExportDate string            `json:"exportDate"`
	Version    string            `json:"version"`
}

const exportVersion = "1.0"

// Export collects every user-owned key into one document. Todos pass
// through untyped; their shape belongs to the todo package.
func (m *Manager) Export() ExportData {
	data := ExportData{
		APIKeys:    m.APIKeys(),
		Theme:      m.Theme(),
		Settings:   m.Settings(),
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Version:    exportVersion,
	}
	var todos json.RawMessage
	if m.store.Read("todos", &todos) {
		data.Todos = todos
	}
	return data
}

// Import restores a previously exported document. Absent sections are
// skipped, present ones overwrite.
func (m *Manager) Import(data ExportData) bool {
	ok := true
	if data.APIKeys != nil {
		keys := defaultAPIKeys()
		for k, v := range data.APIKeys {
			keys[k] = v
		}
		ok = m.store.Write(KeyAPIKeys, keys) && ok
	}
	if len(data.Todos) > 0 {
		ok = m.store.Write("todos", data.Todos) && ok
	}
	if data.Theme != "" {
		ok = m.SaveTheme(data.Theme) && ok
	}
	if data.Settings.UpdateInterval != (UpdateIntervals{}) || data.Settings.Language != "" || len(data.Settings.WidgetOrder) > 0 {
		ok = m.Save(data.Settings) && ok
	}
	return ok
}
