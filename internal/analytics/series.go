// Package analytics turns logged entries into per-day series and the
// statistics derived from them. Every function is pure: inputs are never
// mutated and results depend only on arguments.
package analytics

import (
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

// DayPoint is one calendar day of a series. HasEntries separates a day logged
// as zero from a day with no data.
type DayPoint struct {
	DayKey     string `json:"dayKey"`
	Label      string `json:"label"`
	Calories   int    `json:"calories"`
	HasEntries bool   `json:"hasEntries"`
}

type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// BuildDaySeries returns exactly one point per day in [start, end].
func BuildDaySeries(start, end string, entries []model.Entry) ([]DayPoint, error) {
	keys, err := daykey.Enumerate(start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(keys))
	logged := make(map[string]bool, len(keys))
	for _, e := range entries {
		totals[e.DayKey] += e.Calories
		logged[e.DayKey] = true
	}

	series := make([]DayPoint, 0, len(keys))
	for _, key := range keys {
		series = append(series, DayPoint{
			DayKey:     key,
			Label:      daykey.Label(key),
			Calories:   totals[key],
			HasEntries: logged[key],
		})
	}
	return series, nil
}

// TrackedDays keeps only the days with at least one entry.
func TrackedDays(series []DayPoint) []DayPoint {
	out := make([]DayPoint, 0, len(series))
	for _, p := range series {
		if p.HasEntries {
			out = append(out, p)
		}
	}
	return out
}

func TotalCalories(entries []model.Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}

// MacroTotals sums macros; an entry without a value contributes zero.
func MacroTotals(entries []model.Entry) Macros {
	var m Macros
	for _, e := range entries {
		if e.Protein != nil {
			m.Protein += *e.Protein
		}
		if e.Carbs != nil {
			m.Carbs += *e.Carbs
		}
		if e.Fat != nil {
			m.Fat += *e.Fat
		}
	}
	return m
}
