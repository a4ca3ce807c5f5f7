package service

import (
	"database/sql"
	"fmt"

	"pagedesigner/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Remembers the last opened layout between sessions.
// Stored in SQLite as key-value rows in app_settings.

const settingLastLayout = "last_layout_id"

// SettingsService persists small application settings.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

// LastLayout returns the id of the last opened or saved layout, or "".
func (s *SettingsService) LastLayout() string {
	if s == nil || s.db == nil {
		return ""
	}
	var id string
	s.db.Conn().QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingLastLayout).Scan(&id)
	return id
}

// SetLastLayout records id as the layout to reopen on startup.
func (s *SettingsService) SetLastLayout(id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	return upsertSetting(s.db.Conn(), settingLastLayout, id)
}

func upsertSetting(conn *sql.DB, key, value string) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
