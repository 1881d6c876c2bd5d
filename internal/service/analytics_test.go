package service_test

import (
	"errors"
	"testing"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

func TestResolveRange(t *testing.T) {
	t.Parallel()
	settings := config.Default().Analytics

	cases := []struct {
		name      string
		req       service.RangeRequest
		first     string
		wantStart string
		wantEnd   string
		clamped   bool
	}{
		{"week stops at today", service.RangeRequest{Kind: service.RangeWeek, Week: "2024-W10", Today: "2024-03-06"}, "", "2024-03-04", "2024-03-06", false},
		{"past week is whole", service.RangeRequest{Kind: service.RangeWeek, Week: "2024-W09", Today: "2024-03-06"}, "", "2024-02-26", "2024-03-03", false},
		{"default week is current", service.RangeRequest{Today: "2024-03-06"}, "", "2024-03-04", "2024-03-06", false},
		{"default month is current", service.RangeRequest{Kind: service.RangeMonth, Today: "2024-03-06"}, "", "2024-03-01", "2024-03-06", false},
		{"month clamps to first logged", service.RangeRequest{Kind: service.RangeMonth, Month: "2024-02", Today: "2024-03-06"}, "2024-02-15", "2024-02-15", "2024-02-29", true},
		{"custom", service.RangeRequest{Kind: service.RangeCustom, From: "2024-01-01", To: "2024-01-10", Today: "2024-03-06"}, "2023-12-01", "2024-01-01", "2024-01-10", false},
		{"logging after range keeps zero days", service.RangeRequest{Kind: service.RangeCustom, From: "2024-01-01", To: "2024-01-10", Today: "2024-03-06"}, "2024-02-01", "2024-01-01", "2024-01-10", false},
		{"trailing", service.RangeRequest{Kind: service.RangeTrailing, Days: 30, Today: "2024-03-06"}, "", "2024-02-06", "2024-03-06", false},
		{"all", service.RangeRequest{Kind: service.RangeAll, Today: "2024-03-06"}, "2024-01-20", "2024-01-20", "2024-03-06", false},
		{"all on empty store", service.RangeRequest{Kind: service.RangeAll, Today: "2024-03-06"}, "", "2024-03-06", "2024-03-06", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.ResolveRange(tc.req, settings, tc.first, "")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.Start != tc.wantStart || got.End != tc.wantEnd || got.Clamped != tc.clamped {
				t.Fatalf("got %s..%s clamped=%v, want %s..%s clamped=%v", got.Start, got.End, got.Clamped, tc.wantStart, tc.wantEnd, tc.clamped)
			}
		})
	}

	t.Run("trailing window mode is selectable", func(t *testing.T) {
		s := settings
		s.WindowMode = config.WindowTrailing
		s.ClampToFirstEntry = false
		got, err := service.ResolveRange(service.RangeRequest{Today: "2024-03-30"}, s, "2024-03-20", "")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.Kind != service.RangeTrailing || got.Start != "2024-03-01" || got.Days != 30 {
			t.Fatalf("unexpected trailing range %+v", got)
		}
	})

	t.Run("malformed today", func(t *testing.T) {
		for _, kind := range []service.RangeKind{service.RangeWeek, service.RangeMonth} {
			_, err := service.ResolveRange(service.RangeRequest{Kind: kind, Today: "2024"}, settings, "", "")
			if !errors.Is(err, daykey.ErrInvalidKey) {
				t.Fatalf("%s: expected ErrInvalidKey, got %v", kind, err)
			}
		}
	})

	t.Run("reversed custom range", func(t *testing.T) {
		_, err := service.ResolveRange(service.RangeRequest{Kind: service.RangeCustom, From: "2024-02-01", To: "2024-01-01"}, settings, "", "")
		if !errors.Is(err, daykey.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("oversized custom range", func(t *testing.T) {
		_, err := service.ResolveRange(service.RangeRequest{Kind: service.RangeCustom, From: "1900-01-01", To: "2024-01-01"}, settings, "", "")
		if !errors.Is(err, daykey.ErrRangeTooLarge) {
			t.Fatalf("expected ErrRangeTooLarge, got %v", err)
		}
	})
}

func TestBuildAnalyticsReportWithoutProfile(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustCreate(t, sqldb, "2024-01-02", 1800)

	report, err := service.BuildAnalyticsReport(sqldb, service.RangeRequest{Kind: service.RangeCustom, From: "2024-01-01", To: "2024-01-07", Today: "2024-01-07"}, config.Default().Analytics)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.HasProfile {
		t.Fatalf("expected no profile")
	}
	if report.Stats.Best != nil || report.Stats.AdherencePct != 0 {
		t.Fatalf("adherence must degrade to zero without a profile: %+v", report.Stats)
	}
	if report.Deficit.TotalDeficit != 0 || len(report.Deficit.Points) != 0 {
		t.Fatalf("deficit must be empty without a profile: %+v", report.Deficit)
	}
	if report.Stats.TrackedDays != 1 || report.Stats.Average != 1800 {
		t.Fatalf("unexpected stats %+v", report.Stats)
	}
}

func TestBuildAnalyticsReportDeficitAndAdherence(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	p, err := service.SaveProfile(sqldb, referenceBody())
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := service.SetDeficitSettings(sqldb, model.DeficitSettings{
		GoalKg:          1,
		UseTargetChange: true,
		TargetBefore:    2000,
		TargetAfter:     1500,
		ChangeDay:       3,
	}); err != nil {
		t.Fatalf("set deficit: %v", err)
	}

	// 2024-01-01 is tracked day 1; the report below starts later so the
	// numbering must come from the first day ever logged.
	mustCreate(t, sqldb, "2024-01-01", 1900)
	mustCreate(t, sqldb, "2024-01-02", 1600)
	mustCreate(t, sqldb, "2024-01-02", 300)
	mustCreate(t, sqldb, "2024-01-04", 1400)

	report, err := service.BuildAnalyticsReport(sqldb, service.RangeRequest{Kind: service.RangeCustom, From: "2024-01-02", To: "2024-01-05", Today: "2024-01-05"}, config.Default().Analytics)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Target != p.TargetCalories {
		t.Fatalf("expected target %d, got %d", p.TargetCalories, report.Target)
	}
	if len(report.Series) != 4 || len(report.Rolling) != 4 {
		t.Fatalf("expected 4 series points, got %d/%d", len(report.Series), len(report.Rolling))
	}
	if report.Series[0].Calories != 1900 {
		t.Fatalf("expected summed calories on 2024-01-02, got %d", report.Series[0].Calories)
	}

	points := report.Deficit.Points
	if len(points) != 2 {
		t.Fatalf("expected 2 tracked deficit points, got %d", len(points))
	}
	if points[0].TrackedDay != 2 || points[0].Target != 2000 || points[0].Deficit != 100 {
		t.Fatalf("unexpected first point %+v", points[0])
	}
	if points[1].TrackedDay != 4 || points[1].Target != 1500 || points[1].Deficit != 100 {
		t.Fatalf("unexpected second point %+v", points[1])
	}
	if report.Deficit.TotalDeficit != 200 || points[1].TotalDeficit != 200 {
		t.Fatalf("unexpected total deficit %d", report.Deficit.TotalDeficit)
	}

	// target 1496: 1900 is 404 away, 1400 is 96 away
	if report.Stats.AdherenceCount != 1 || report.Stats.Best == nil || report.Stats.Best.DayKey != "2024-01-04" {
		t.Fatalf("unexpected adherence %+v", report.Stats)
	}

	relative := config.Default().Analytics
	if err := relative.Set(config.KeyToleranceMode, "relative"); err != nil {
		t.Fatalf("set relative: %v", err)
	}
	if err := relative.Set(config.KeyToleranceValue, "0.3"); err != nil {
		t.Fatalf("set relative value: %v", err)
	}
	wide, err := service.BuildAnalyticsReport(sqldb, service.RangeRequest{Kind: service.RangeCustom, From: "2024-01-02", To: "2024-01-05", Today: "2024-01-05"}, relative)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if wide.Stats.AdherenceCount != 2 {
		t.Fatalf("expected both days within ±30%%, got %d", wide.Stats.AdherenceCount)
	}
}
