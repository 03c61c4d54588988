package store

import (
	"database/sql"
	"fmt"
	"time"
)

var speechKeys = []string{
	"speech_format",
	"speak_ampm",
	"custom_template",
}

var clockKeys = []string{
	"timezone",
	"snooze_minutes",
	"quiet_hours_enabled",
	"quiet_hours_start",
	"quiet_hours_end",
}

var backupKeys = []string{
	"backup_enabled",
	"backup_schedule_hour",
	"backup_retention_days",
	"backup_passphrase_salt",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) GetSpeechSettings() (map[string]string, error) {
	return s.getKeys(speechKeys, "speech")
}

func (s *SettingsStore) GetClockSettings() (map[string]string, error) {
	return s.getKeys(clockKeys, "clock")
}

func (s *SettingsStore) GetBackupSettings() (map[string]string, error) {
	return s.getKeys(backupKeys, "backup")
}

func (s *SettingsStore) getKeys(keys []string, group string) (map[string]string, error) {
	settings := make(map[string]string)
	for _, key := range keys {
		var value string
		err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s setting %q: %w", group, key, err)
		}
		settings[key] = value
	}
	return settings, nil
}
