package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foodbridge/foodbridge/internal/logging"
)

// GetSetting retrieves a setting value by key. Missing keys yield "".
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.queryRow(context.Background(), "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, storeError(err))
	}
	return value, nil
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.exec(context.Background(), `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.DateTime))
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, storeError(err))
	}
	return nil
}

// GetAllSettings retrieves all settings
func (db *DB) GetAllSettings() (map[string]string, error) {
	rows, err := db.query(context.Background(), "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", storeError(err))
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", storeError(err))
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// DeleteSetting removes a setting
func (db *DB) DeleteSetting(key string) error {
	_, err := db.exec(context.Background(), "DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, storeError(err))
	}
	return nil
}

// Default settings
var DefaultSettings = map[string]any{
	"log.level":        "info",
	"log.file_enabled": false,
	"log.max_size_mb":  logging.DefaultMaxSizeMB,
	"log.max_backups":  logging.DefaultMaxBackups,
	"log.max_age_days": logging.DefaultMaxAgeDays,
	"log.compress":     logging.DefaultCompress,
	"adhoc.timeout":    "5s",
	"adhoc.max_rows":   10000,
}
