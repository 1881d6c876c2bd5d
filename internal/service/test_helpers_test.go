package service_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/db"
	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kcal.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

// at is noon local time on the given day, far from any day boundary.
func at(t *testing.T, day string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", day+" 12:00", time.Local)
	if err != nil {
		t.Fatalf("parse %s: %v", day, err)
	}
	return ts
}

func mustCreate(t *testing.T, sqldb *sqlx.DB, day string, calories int) int64 {
	t.Helper()
	id, err := service.CreateEntry(sqldb, service.EntryInput{CreatedAt: at(t, day), Label: "meal", Calories: calories})
	if err != nil {
		t.Fatalf("create entry on %s: %v", day, err)
	}
	return id
}

func referenceBody() energy.Body {
	return energy.Body{
		Sex:           energy.SexFemale,
		Age:           30,
		HeightCm:      165,
		WeightKg:      60,
		ActivityLevel: energy.ActivityModerate,
		Goal:          energy.GoalLose,
		PaceKgPerWeek: 0.5,
	}
}

func ptr(v float64) *float64 {
	return &v
}
