package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

func entry(day string, calories int) model.Entry {
	return model.Entry{DayKey: day, Calories: calories, CreatedAt: time.Now()}
}

func point(day string, calories int) DayPoint {
	return DayPoint{DayKey: day, Calories: calories, HasEntries: true}
}

func gap(day string) DayPoint {
	return DayPoint{DayKey: day}
}

func TestBuildDaySeries(t *testing.T) {
	entries := []model.Entry{
		entry("2024-03-01", 500),
		entry("2024-03-01", 700),
		entry("2024-03-03", 0),
		entry("2024-02-28", 900),
		entry("2024-03-10", 400),
	}

	t.Run("one point per day with sums", func(t *testing.T) {
		series, err := BuildDaySeries("2024-02-28", "2024-03-04", entries)
		require.NoError(t, err)

		diff, err := daykey.Diff("2024-02-28", "2024-03-04")
		require.NoError(t, err)
		require.Len(t, series, diff+1)

		for i := 1; i < len(series); i++ {
			assert.Less(t, series[i-1].DayKey, series[i].DayKey)
		}

		byDay := map[string]DayPoint{}
		for _, p := range series {
			byDay[p.DayKey] = p
		}
		assert.Equal(t, 900, byDay["2024-02-28"].Calories)
		assert.Equal(t, 0, byDay["2024-02-29"].Calories)
		assert.False(t, byDay["2024-02-29"].HasEntries)
		assert.Equal(t, 1200, byDay["2024-03-01"].Calories)
		assert.True(t, byDay["2024-03-03"].HasEntries, "a day logged as zero is still tracked")
		assert.Equal(t, 0, byDay["2024-03-03"].Calories)
		assert.NotContains(t, byDay, "2024-03-10")
	})

	t.Run("single day", func(t *testing.T) {
		series, err := BuildDaySeries("2024-03-01", "2024-03-01", entries)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.Equal(t, 1200, series[0].Calories)
	})

	t.Run("reversed range fails", func(t *testing.T) {
		_, err := BuildDaySeries("2024-03-04", "2024-03-01", entries)
		assert.ErrorIs(t, err, daykey.ErrInvalidRange)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := append([]model.Entry(nil), entries...)
		_, err := BuildDaySeries("2024-02-28", "2024-03-10", entries)
		require.NoError(t, err)
		assert.Equal(t, before, entries)
	})
}

func TestMacroTotals(t *testing.T) {
	p1, c1 := 20.0, 30.5
	f2 := 7.0
	got := MacroTotals([]model.Entry{
		{Calories: 300, Protein: &p1, Carbs: &c1},
		{Calories: 100, Fat: &f2},
		{Calories: 50},
	})
	assert.Equal(t, Macros{Protein: 20, Carbs: 30.5, Fat: 7}, got)
	assert.Equal(t, 450, TotalCalories([]model.Entry{{Calories: 300}, {Calories: 150}}))
}

func TestRollingAverage(t *testing.T) {
	series := []DayPoint{
		point("d1", 1000), point("d2", 2000), point("d3", 1500), point("d4", 1800),
		point("d5", 2200), point("d6", 1700), point("d7", 1900), point("d8", 2500),
		point("d9", 1200),
	}

	got := RollingAverage(series, 7)
	require.Len(t, got, len(series))

	assert.Equal(t, series[0].Calories, got[0].Average)
	assert.Equal(t, 1500, got[1].Average)

	for i := 6; i < len(series); i++ {
		sum := 0
		for j := i - 6; j <= i; j++ {
			sum += series[j].Calories
		}
		assert.Equal(t, int(math.Round(float64(sum)/7)), got[i].Average, "index %d", i)
	}

	t.Run("non-positive window uses default", func(t *testing.T) {
		assert.Equal(t, RollingAverage(series, DefaultRollingWindow), RollingAverage(series, 0))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, RollingAverage(nil, 7))
	})
}

func TestEffectiveTarget(t *testing.T) {
	cfg := DeficitConfig{UseTargetChange: true, TargetBefore: 2200, TargetAfter: 1800, ChangeDay: 10}

	assert.Equal(t, 2200, EffectiveTarget(cfg, 1))
	assert.Equal(t, 2200, EffectiveTarget(cfg, 9))
	assert.Equal(t, 1800, EffectiveTarget(cfg, 10))
	assert.Equal(t, 1800, EffectiveTarget(cfg, 11))

	t.Run("disabled breakpoint always uses after", func(t *testing.T) {
		off := cfg
		off.UseTargetChange = false
		assert.Equal(t, 1800, EffectiveTarget(off, 1))
	})

	t.Run("change day below one clamps to one", func(t *testing.T) {
		bad := cfg
		bad.ChangeDay = -4
		assert.Equal(t, 1, bad.Normalized().ChangeDay)
		assert.Equal(t, 1800, EffectiveTarget(bad, 1))
	})
}

func TestDeficits(t *testing.T) {
	t.Run("sign convention", func(t *testing.T) {
		pts, err := Deficits([]DayPoint{point("2024-01-01", 1800)}, "", DeficitConfig{TargetAfter: 2000})
		require.NoError(t, err)
		require.Len(t, pts, 1)
		assert.Equal(t, 200, pts[0].Deficit)
		assert.Equal(t, 1, pts[0].TrackedDay)
	})

	t.Run("untracked days are skipped and numbering counts calendar days", func(t *testing.T) {
		series := []DayPoint{
			point("2024-01-05", 2100),
			gap("2024-01-06"),
			point("2024-01-07", 1900),
		}
		cfg := DeficitConfig{UseTargetChange: true, TargetBefore: 2200, TargetAfter: 1800, ChangeDay: 7}
		pts, err := Deficits(series, "2024-01-01", cfg)
		require.NoError(t, err)
		require.Len(t, pts, 2)

		assert.Equal(t, 5, pts[0].TrackedDay)
		assert.Equal(t, 2200, pts[0].Target)
		assert.Equal(t, 100, pts[0].Deficit)

		assert.Equal(t, 7, pts[1].TrackedDay)
		assert.Equal(t, 1800, pts[1].Target)
		assert.Equal(t, -100, pts[1].Deficit)
	})

	t.Run("breakpoint boundary", func(t *testing.T) {
		var series []DayPoint
		for i := 0; i < 12; i++ {
			key, err := daykey.Add("2024-05-01", i)
			require.NoError(t, err)
			series = append(series, point(key, 2000))
		}
		cfg := DeficitConfig{UseTargetChange: true, TargetBefore: 2200, TargetAfter: 1800, ChangeDay: 10}
		pts, err := Deficits(series, "2024-05-01", cfg)
		require.NoError(t, err)
		assert.Equal(t, 9, pts[8].TrackedDay)
		assert.Equal(t, 2200, pts[8].Target)
		assert.Equal(t, 10, pts[9].TrackedDay)
		assert.Equal(t, 1800, pts[9].Target)
	})

	t.Run("invalid first logged day", func(t *testing.T) {
		_, err := Deficits([]DayPoint{point("2024-01-01", 1)}, "nope", DeficitConfig{})
		assert.Error(t, err)
	})
}

func TestCumulative(t *testing.T) {
	pts, err := Deficits([]DayPoint{
		point("2024-01-01", 1800),
		point("2024-01-02", 2300),
		gap("2024-01-03"),
		point("2024-01-04", 1500),
	}, "", DeficitConfig{TargetAfter: 2000})
	require.NoError(t, err)

	cum := Cumulative(pts)
	require.Len(t, cum, len(pts))
	assert.Equal(t, pts[0].Deficit, cum[0].TotalDeficit)
	for i := 1; i < len(cum); i++ {
		assert.Equal(t, cum[i-1].TotalDeficit+pts[i].Deficit, cum[i].TotalDeficit)
	}
	assert.Equal(t, 400, cum[len(cum)-1].TotalDeficit)
}

func TestSummarizeDeficit(t *testing.T) {
	t.Run("no tracked days", func(t *testing.T) {
		s, err := SummarizeDeficit([]DayPoint{gap("2024-01-01"), gap("2024-01-02")}, "", DeficitConfig{GoalKg: 5})
		require.NoError(t, err)
		assert.Empty(t, s.Points)
		assert.Zero(t, s.TotalDeficit)
		assert.Zero(t, s.AverageDailyDeficit)
		assert.Zero(t, s.EstimatedMassChangeKg)
		assert.Zero(t, s.GoalProgress)
		assert.Equal(t, 7700.0, s.Config.KcalPerKg)
	})

	t.Run("totals and mass change", func(t *testing.T) {
		series := []DayPoint{point("2024-01-01", 1500), point("2024-01-02", 1500)}
		s, err := SummarizeDeficit(series, "", DeficitConfig{TargetAfter: 2000, GoalKg: 1})
		require.NoError(t, err)
		assert.Equal(t, 1000, s.TotalDeficit)
		assert.Equal(t, 2, s.TrackedDays)
		assert.InDelta(t, 500.0, s.AverageDailyDeficit, 1e-9)
		assert.InDelta(t, 1000.0/7700, s.EstimatedMassChangeKg, 1e-9)
		assert.InDelta(t, 1000.0/7700, s.GoalProgress, 1e-9)
	})

	t.Run("goal progress clamps to one", func(t *testing.T) {
		series := []DayPoint{point("2024-01-01", 0)}
		s, err := SummarizeDeficit(series, "", DeficitConfig{TargetAfter: 50000, GoalKg: 0.5})
		require.NoError(t, err)
		assert.Greater(t, s.EstimatedMassChangeKg, 0.5)
		assert.Equal(t, 1.0, s.GoalProgress)
	})

	t.Run("surplus clamps to zero", func(t *testing.T) {
		series := []DayPoint{point("2024-01-01", 3000)}
		s, err := SummarizeDeficit(series, "", DeficitConfig{TargetAfter: 2000, GoalKg: 2})
		require.NoError(t, err)
		assert.Less(t, s.EstimatedMassChangeKg, 0.0)
		assert.Zero(t, s.GoalProgress)
	})

	t.Run("zero goal never divides", func(t *testing.T) {
		series := []DayPoint{point("2024-01-01", 1000)}
		s, err := SummarizeDeficit(series, "", DeficitConfig{TargetAfter: 2000})
		require.NoError(t, err)
		assert.Zero(t, s.GoalProgress)
		assert.False(t, math.IsNaN(s.GoalProgress))
	})

	t.Run("custom energy constant", func(t *testing.T) {
		series := []DayPoint{point("2024-01-01", 1000)}
		s, err := SummarizeDeficit(series, "", DeficitConfig{TargetAfter: 2000, KcalPerKg: 1000})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, s.EstimatedMassChangeKg, 1e-9)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("empty series degrades to zero values", func(t *testing.T) {
		s := Summarize([]DayPoint{gap("2024-01-01")}, 2000, DefaultTolerance)
		assert.Zero(t, s.TrackedDays)
		assert.Zero(t, s.Average)
		assert.Nil(t, s.Highest)
		assert.Nil(t, s.Best)
		assert.Zero(t, s.AdherencePct)

		s = Summarize(nil, 0, DefaultTolerance)
		assert.Nil(t, s.Highest)
	})

	series := []DayPoint{
		point("2024-01-01", 2500),
		point("2024-01-02", 1950),
		gap("2024-01-03"),
		point("2024-01-04", 2500),
		point("2024-01-05", 2050),
		point("2024-01-06", 1850),
	}

	t.Run("aggregates with absolute tolerance", func(t *testing.T) {
		s := Summarize(series, 2000, DefaultTolerance)
		assert.Equal(t, 5, s.TrackedDays)
		assert.InDelta(t, 10850.0/5, s.Average, 1e-9)
		require.NotNil(t, s.Highest)
		assert.Equal(t, "2024-01-01", s.Highest.DayKey, "first occurrence wins ties")
		require.NotNil(t, s.Best)
		assert.Equal(t, "2024-01-02", s.Best.DayKey, "first occurrence wins ties")
		assert.Equal(t, 2, s.AdherenceCount)
		assert.InDelta(t, 40.0, s.AdherencePct, 1e-9)
	})

	t.Run("relative tolerance is selectable", func(t *testing.T) {
		s := Summarize(series, 2000, Tolerance{Mode: ToleranceRelative, Value: DefaultRelativeTolerance})
		assert.Equal(t, 3, s.AdherenceCount)
		assert.InDelta(t, 60.0, s.AdherencePct, 1e-9)
	})

	t.Run("band edges are inclusive", func(t *testing.T) {
		assert.True(t, DefaultTolerance.Within(2100, 2000))
		assert.True(t, DefaultTolerance.Within(1900, 2000))
		assert.False(t, DefaultTolerance.Within(2101, 2000))
	})
}

func TestDefaultTolerance(t *testing.T) {
	assert.Equal(t, Tolerance{Mode: ToleranceAbsolute, Value: 100}, DefaultTolerance)

	mode, err := ParseToleranceMode(" Relative ")
	require.NoError(t, err)
	assert.Equal(t, ToleranceRelative, mode)

	_, err = ParseToleranceMode("percent")
	assert.Error(t, err)

	assert.Error(t, Tolerance{Mode: ToleranceRelative, Value: 10}.Validate())
	assert.NoError(t, DefaultTolerance.Validate())
}

func TestProgress(t *testing.T) {
	p := Progress(1500, 2000, 2400)
	assert.Equal(t, 500, p.Remaining)
	assert.InDelta(t, 75.0, p.Percent, 1e-9)
	assert.Equal(t, -900, p.DeltaVsTDEE)
	assert.False(t, p.OverTarget)

	over := Progress(2600, 2000, 2400)
	assert.Equal(t, -600, over.Remaining)
	assert.Equal(t, 100.0, over.PercentBar)
	assert.True(t, over.OverTarget)

	none := Progress(800, 0, 0)
	assert.Zero(t, none.Percent)
}
