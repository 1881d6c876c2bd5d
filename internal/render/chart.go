package render

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
)

const (
	chartHeight = 10
	chartWidth  = 60
)

const noData = "(no data to chart)"

// CaloriesChart plots daily intake with its rolling average and, when
// target > 0, a flat target line.
func CaloriesChart(rolling []analytics.RollingPoint, target int) string {
	if len(rolling) == 0 {
		return noData
	}
	daily := make([]float64, len(rolling))
	avg := make([]float64, len(rolling))
	for i, p := range rolling {
		daily[i] = float64(p.Calories)
		avg[i] = float64(p.Average)
	}
	series := [][]float64{daily, avg}
	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Blue}
	caption := fmt.Sprintf("daily kcal (green), rolling average (blue), %s..%s", rolling[0].DayKey, rolling[len(rolling)-1].DayKey)
	if target > 0 {
		line := make([]float64, len(rolling))
		for i := range line {
			line[i] = float64(target)
		}
		series = append(series, line)
		colors = append(colors, asciigraph.Red)
		caption = fmt.Sprintf("daily kcal (green), rolling average (blue), target %d (red)", target)
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

// DeficitChart plots the running deficit total over tracked days.
func DeficitChart(points []analytics.CumulativePoint) string {
	if len(points) == 0 {
		return noData
	}
	totals := make([]float64, len(points))
	for i, p := range points {
		totals[i] = float64(p.TotalDeficit)
	}
	return asciigraph.Plot(totals,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("cumulative deficit over %d tracked days", len(points))),
	)
}
