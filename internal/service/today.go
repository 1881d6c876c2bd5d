package service

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

type TodayStatus struct {
	Date       string                 `json:"date"`
	Label      string                 `json:"label"`
	Calories   int                    `json:"calories"`
	Macros     analytics.Macros       `json:"macros"`
	Entries    []model.Entry          `json:"entries"`
	HasProfile bool                   `json:"hasProfile"`
	Progress   *analytics.DayProgress `json:"progress,omitempty"`
}

// TodaySummary reports one day's intake. Without a profile the totals are
// still returned but progress is omitted.
func TodaySummary(db *sqlx.DB, day string) (*TodayStatus, error) {
	if day == "" {
		day = daykey.Today()
	}
	if !daykey.Valid(day) {
		return nil, fmt.Errorf("invalid date %q: %w", day, daykey.ErrInvalidKey)
	}
	entries, err := EntriesBetween(db, day, day)
	if err != nil {
		return nil, err
	}
	status := &TodayStatus{
		Date:     day,
		Label:    daykey.LongLabel(day),
		Calories: analytics.TotalCalories(entries),
		Macros:   analytics.MacroTotals(entries),
		Entries:  entries,
	}

	profile, err := GetProfile(db)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		status.HasProfile = true
		p := analytics.Progress(status.Calories, profile.TargetCalories, profile.TDEE)
		status.Progress = &p
	}
	return status, nil
}
