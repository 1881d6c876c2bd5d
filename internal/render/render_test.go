package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
)

func TestFormatInt(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-2500:   "-2,500",
		-100:    "-100",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatInt(in))
	}
	assert.Equal(t, "+250 kcal", SignedKcal(250))
	assert.Equal(t, "-250 kcal", SignedKcal(-250))
}

func TestStatCardContainsLabelAndValue(t *testing.T) {
	out := CardRow(Card{Label: "Average", Value: "1,850 kcal"}, Card{Label: "Adherence", Value: "60%", Hint: "±100 kcal"})
	for _, want := range []string{"Average", "1,850 kcal", "Adherence", "60%", "±100 kcal"} {
		assert.Contains(t, out, want)
	}
}

func TestProgressBar(t *testing.T) {
	out := ProgressBar(analytics.Progress(1000, 2000, 2400), 10)
	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Contains(t, out, "50%")

	over := ProgressBar(analytics.Progress(2600, 2000, 2400), 10)
	assert.Equal(t, 10, strings.Count(over, "█"))
	assert.Contains(t, over, "130%")
}

func TestCharts(t *testing.T) {
	assert.Equal(t, noData, CaloriesChart(nil, 2000))
	assert.Equal(t, noData, DeficitChart(nil))

	series := []analytics.DayPoint{
		{DayKey: "2024-01-01", Calories: 1800, HasEntries: true},
		{DayKey: "2024-01-02", Calories: 2200, HasEntries: true},
		{DayKey: "2024-01-03", Calories: 1900, HasEntries: true},
	}
	chart := CaloriesChart(analytics.RollingAverage(series, 7), 2000)
	assert.Contains(t, chart, "target 2000")

	pts, err := analytics.Deficits(series, "", analytics.DeficitConfig{TargetAfter: 2000})
	assert.NoError(t, err)
	assert.Contains(t, DeficitChart(analytics.Cumulative(pts)), "3 tracked days")
}
