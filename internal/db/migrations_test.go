package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hovosukiasyan/calorie-tracker/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kcal.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.Get(&migrationCount, `SELECT COUNT(1) FROM schema_migrations`); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != db.LatestVersion() {
		t.Fatalf("expected %d migration versions, got %d", db.LatestVersion(), migrationCount)
	}

	for _, table := range []string{"profile", "entries", "app_config"} {
		var n int
		if err := sqldb.Get(&n, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	for _, index := range []string{"idx_entries_day_key", "idx_entries_created_at"} {
		var n int
		if err := sqldb.Get(&n, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'index' AND name = ?`, index); err != nil {
			t.Fatalf("check %s index: %v", index, err)
		}
		if n != 1 {
			t.Fatalf("expected %s index to exist", index)
		}
	}

	var deficitCol int
	if err := sqldb.Get(&deficitCol, `SELECT COUNT(1) FROM pragma_table_info('profile') WHERE name = 'deficit_change_day'`); err != nil {
		t.Fatalf("check deficit_change_day column: %v", err)
	}
	if deficitCol != 1 {
		t.Fatalf("expected deficit_change_day column in profile table")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}

func TestSchemaConstraints(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "kcal.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`INSERT INTO entries(created_at, day_key, label, calories) VALUES('2024-01-01T12:00:00.000Z', '2024-01-01', 'x', -1)`); err == nil {
		t.Fatalf("expected negative calories to be rejected")
	}
	if _, err := sqldb.Exec(`
INSERT INTO profile(id, sex, age, height_cm, weight_kg, activity_level, goal, pace, bmr, tdee, target_calories, created_at, updated_at)
VALUES('other', 'female', 30, 165, 60, 'moderate', 'lose', 0.5, 1320, 2046, 1496, 'x', 'x')`); err == nil {
		t.Fatalf("expected non-singleton profile id to be rejected")
	}
}
