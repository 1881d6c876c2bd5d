package service

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
)

// SetConfig stores a per-database analytics preference. The new value is
// checked together with the preferences already stored, so the saved set
// always loads cleanly over the defaults.
func SetConfig(db *sqlx.DB, key, value string) error {
	key = normalizeKey(key)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	if !slices.Contains(config.PreferenceKeys, key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	stored, err := ListConfig(db)
	if err != nil {
		return err
	}
	stored[key] = value
	probe := config.Default().Analytics
	if err := overlayPreferences(&probe, stored); err != nil {
		return err
	}
	if err := probe.Validate(); err != nil {
		return fmt.Errorf("%s %q conflicts with stored preferences: %w", key, value, err)
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sqlx.DB, key string) (string, bool, error) {
	key = normalizeKey(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.Get(&value, `SELECT value FROM app_config WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func UnsetConfig(db *sqlx.DB, key string) error {
	if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, normalizeKey(key)); err != nil {
		return fmt.Errorf("unset config %q: %w", key, err)
	}
	return nil
}

func ListConfig(db *sqlx.DB) (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.Select(&rows, `SELECT key, value FROM app_config ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// ApplyStoredPreferences overlays app_config rows onto a without validating.
// Callers validate once the environment and flags are layered on too.
func ApplyStoredPreferences(db *sqlx.DB, a *config.Analytics) error {
	stored, err := ListConfig(db)
	if err != nil {
		return err
	}
	return overlayPreferences(a, stored)
}

// overlayPreferences applies keys in a fixed order so a stored tolerance mode
// never clobbers a stored value.
func overlayPreferences(a *config.Analytics, stored map[string]string) error {
	for _, key := range config.PreferenceKeys {
		v, ok := stored[key]
		if !ok {
			continue
		}
		if err := a.Set(key, v); err != nil {
			return fmt.Errorf("stored preference %s: %w", key, err)
		}
	}
	return nil
}
