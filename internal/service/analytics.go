package service

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
)

type RangeKind string

const (
	RangeWeek     RangeKind = "week"
	RangeMonth    RangeKind = "month"
	RangeCustom   RangeKind = "custom"
	RangeTrailing RangeKind = "trailing"
	RangeAll      RangeKind = "all"
)

// RangeRequest selects the days a report covers. An empty Kind follows the
// configured window mode. Today overrides the current day for tests.
type RangeRequest struct {
	Kind  RangeKind
	Week  string
	Month string
	From  string
	To    string
	Days  int
	Today string
}

type ResolvedRange struct {
	Kind           RangeKind `json:"kind"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
	RequestedStart string    `json:"requestedStart"`
	RequestedEnd   string    `json:"requestedEnd"`
	Clamped        bool      `json:"clamped"`
	Days           int       `json:"days"`
}

type AnalyticsReport struct {
	Range      ResolvedRange            `json:"range"`
	Settings   config.Analytics         `json:"settings"`
	HasProfile bool                     `json:"hasProfile"`
	Target     int                      `json:"target"`
	TDEE       int                      `json:"tdee"`
	FirstDay   string                   `json:"firstLoggedDay,omitempty"`
	Series     []analytics.DayPoint     `json:"series"`
	Rolling    []analytics.RollingPoint `json:"rolling"`
	Stats      analytics.Stats          `json:"stats"`
	Macros     analytics.Macros         `json:"macros"`
	Deficit    analytics.DeficitSummary `json:"deficit"`
}

// ResolveRange turns a request into concrete day keys. Week and month ranges
// stop at today. When clamp is set the start never precedes firstLogged.
func ResolveRange(req RangeRequest, settings config.Analytics, firstLogged, lastLogged string) (ResolvedRange, error) {
	today := req.Today
	if today == "" {
		today = daykey.Today()
	}
	kind := req.Kind
	if kind == "" {
		if settings.WindowMode == config.WindowTrailing {
			kind = RangeTrailing
		} else {
			kind = RangeWeek
		}
	}

	var start, end string
	var err error
	switch kind {
	case RangeWeek:
		week := strings.TrimSpace(req.Week)
		if week == "" {
			t, perr := daykey.Parse(today)
			if perr != nil {
				return ResolvedRange{}, perr
			}
			week = daykey.CurrentISOWeek(t)
		}
		start, end, err = daykey.ISOWeekRange(week)
	case RangeMonth:
		month := strings.TrimSpace(req.Month)
		if month == "" {
			t, perr := daykey.Parse(today)
			if perr != nil {
				return ResolvedRange{}, perr
			}
			month = daykey.CurrentMonth(t)
		}
		start, end, err = daykey.MonthRange(month)
	case RangeCustom:
		start, end = strings.TrimSpace(req.From), strings.TrimSpace(req.To)
		if !daykey.Valid(start) || !daykey.Valid(end) {
			return ResolvedRange{}, fmt.Errorf("custom range needs --from and --to as YYYY-MM-DD: %w", daykey.ErrInvalidKey)
		}
	case RangeTrailing:
		days := req.Days
		if days <= 0 {
			days = settings.TrailingDays
		}
		if days > daykey.MaxRangeDays {
			return ResolvedRange{}, daykey.ErrRangeTooLarge
		}
		end = today
		start, err = daykey.Subtract(today, days-1)
	case RangeAll:
		start, end = firstLogged, today
		if start == "" {
			start = today
		}
		if lastLogged > end {
			end = lastLogged
		}
	default:
		return ResolvedRange{}, fmt.Errorf("unknown range kind %q", kind)
	}
	if err != nil {
		return ResolvedRange{}, err
	}
	if end < start {
		return ResolvedRange{}, fmt.Errorf("range %s..%s: %w", start, end, daykey.ErrInvalidRange)
	}

	out := ResolvedRange{Kind: kind, RequestedStart: start, RequestedEnd: end}
	if (kind == RangeWeek || kind == RangeMonth) && start <= today && end > today {
		end = today
	}
	if settings.ClampToFirstEntry && firstLogged != "" && firstLogged <= end {
		clamped := daykey.ClampStart(start, firstLogged)
		out.Clamped = clamped != start
		start = clamped
	}

	n, err := daykey.Diff(start, end)
	if err != nil {
		return ResolvedRange{}, err
	}
	if n+1 > daykey.MaxRangeDays {
		return ResolvedRange{}, daykey.ErrRangeTooLarge
	}
	out.Start, out.End, out.Days = start, end, n+1
	return out, nil
}

// BuildAnalyticsReport reads one snapshot of the store and runs the pure
// analytics over it. A missing profile or an empty range yields zero values.
func BuildAnalyticsReport(db *sqlx.DB, req RangeRequest, settings config.Analytics) (*AnalyticsReport, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	firstLogged, lastLogged, err := EntryDayBounds(db)
	if err != nil {
		return nil, err
	}
	rng, err := ResolveRange(req, settings, firstLogged, lastLogged)
	if err != nil {
		return nil, err
	}
	entries, err := EntriesBetween(db, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	profile, err := GetProfile(db)
	if err != nil {
		return nil, err
	}

	series, err := analytics.BuildDaySeries(rng.Start, rng.End, entries)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		Range:    rng,
		Settings: settings,
		FirstDay: firstLogged,
		Series:   series,
		Rolling:  analytics.RollingAverage(series, settings.RollingWindow),
		Macros:   analytics.MacroTotals(entries),
	}

	if profile == nil {
		report.Stats = analytics.Summarize(series, 0, settings.Tolerance())
		report.Stats.Best = nil
		report.Stats.AdherenceCount = 0
		report.Stats.AdherencePct = 0
		report.Deficit = analytics.DeficitSummary{Config: analytics.DeficitConfig{}.Normalized(), Points: []analytics.CumulativePoint{}}
		return report, nil
	}

	report.HasProfile = true
	report.Target = profile.TargetCalories
	report.TDEE = profile.TDEE
	report.Stats = analytics.Summarize(series, profile.TargetCalories, settings.Tolerance())
	report.Deficit, err = analytics.SummarizeDeficit(series, firstLogged, DeficitConfig(profile))
	if err != nil {
		return nil, err
	}
	return report, nil
}
