package analytics

import "math"

const DefaultRollingWindow = 7

type RollingPoint struct {
	DayPoint
	Average int `json:"average"`
}

// RollingAverage computes a trailing mean over at most window points. Near
// the start of the series the window is truncated, so the first average is
// the first day's own total.
func RollingAverage(series []DayPoint, window int) []RollingPoint {
	if window <= 0 {
		window = DefaultRollingWindow
	}
	out := make([]RollingPoint, 0, len(series))
	sum := 0
	for i, p := range series {
		sum += p.Calories
		if i >= window {
			sum -= series[i-window].Calories
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out = append(out, RollingPoint{
			DayPoint: p,
			Average:  int(math.Round(float64(sum) / float64(n))),
		})
	}
	return out
}
