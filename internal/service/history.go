package service

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
)

const DefaultHistoryDays = 30

type HistoryDay struct {
	DayKey     string `json:"dayKey"`
	Label      string `json:"label"`
	Calories   int    `json:"calories"`
	EntryCount int    `json:"entryCount"`
	Target     int    `json:"target,omitempty"`
	Remaining  int    `json:"remaining,omitempty"`
}

// History lists the days ending at endDay, newest first. Days without
// entries are included with zero calories.
func History(db *sqlx.DB, endDay string, days int) ([]HistoryDay, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > daykey.MaxRangeDays {
		return nil, daykey.ErrRangeTooLarge
	}
	if endDay == "" {
		endDay = daykey.Today()
	}
	start, err := daykey.Subtract(endDay, days-1)
	if err != nil {
		return nil, fmt.Errorf("history start: %w", err)
	}
	entries, err := EntriesBetween(db, start, endDay)
	if err != nil {
		return nil, err
	}
	series, err := analytics.BuildDaySeries(start, endDay, entries)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(series))
	for _, e := range entries {
		counts[e.DayKey]++
	}

	profile, err := GetProfile(db)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryDay, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		p := series[i]
		d := HistoryDay{
			DayKey:     p.DayKey,
			Label:      daykey.LongLabel(p.DayKey),
			Calories:   p.Calories,
			EntryCount: counts[p.DayKey],
		}
		if profile != nil {
			d.Target = profile.TargetCalories
			d.Remaining = profile.TargetCalories - p.Calories
		}
		out = append(out, d)
	}
	return out, nil
}
