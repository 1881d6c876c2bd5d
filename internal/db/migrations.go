package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS profile (
  id TEXT PRIMARY KEY CHECK(id = 'profile'),
  sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
  age INTEGER NOT NULL CHECK(age > 0),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  activity_level TEXT NOT NULL,
  goal TEXT NOT NULL CHECK(goal IN ('lose', 'maintain', 'gain')),
  pace REAL NOT NULL DEFAULT 0 CHECK(pace >= 0),
  bmr INTEGER NOT NULL,
  tdee INTEGER NOT NULL,
  target_calories INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at TEXT NOT NULL,
  day_key TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  calories INTEGER NOT NULL CHECK(calories >= 0),
  protein REAL CHECK(protein IS NULL OR protein >= 0),
  carbs REAL CHECK(carbs IS NULL OR carbs >= 0),
  fat REAL CHECK(fat IS NULL OR fat >= 0)
);

CREATE INDEX IF NOT EXISTS idx_entries_day_key ON entries(day_key);
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
`,
	},
	{
		version: 2,
		name:    "deficit_settings",
		sql: `
ALTER TABLE profile ADD COLUMN deficit_goal_kg REAL NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN deficit_kcal_per_kg REAL NOT NULL DEFAULT 7700;
ALTER TABLE profile ADD COLUMN deficit_use_target_change INTEGER NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN deficit_target_before INTEGER NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN deficit_target_after INTEGER NOT NULL DEFAULT 0;
ALTER TABLE profile ADD COLUMN deficit_change_day INTEGER NOT NULL DEFAULT 1;
`,
	},
	{
		version: 3,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`,
	},
}

// LatestVersion is the schema version after all migrations are applied.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

func ApplyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.Get(&exists, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.version)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}
