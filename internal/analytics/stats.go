package analytics

import (
	"fmt"
	"math"
	"strings"
)

type ToleranceMode string

const (
	ToleranceAbsolute ToleranceMode = "absolute"
	ToleranceRelative ToleranceMode = "relative"
)

// Tolerance is the adherence band around the target. Absolute values are in
// kcal; relative values are a fraction of the target (0.10 is ±10%).
type Tolerance struct {
	Mode  ToleranceMode `json:"mode"`
	Value float64       `json:"value"`
}

var DefaultTolerance = Tolerance{Mode: ToleranceAbsolute, Value: 100}

// DefaultRelativeTolerance is used when relative mode is selected without a value.
const DefaultRelativeTolerance = 0.10

func ParseToleranceMode(s string) (ToleranceMode, error) {
	switch ToleranceMode(strings.ToLower(strings.TrimSpace(s))) {
	case ToleranceAbsolute:
		return ToleranceAbsolute, nil
	case ToleranceRelative:
		return ToleranceRelative, nil
	default:
		return "", fmt.Errorf("invalid tolerance mode %q (use absolute or relative)", s)
	}
}

func (t Tolerance) Validate() error {
	if _, err := ParseToleranceMode(string(t.Mode)); err != nil {
		return err
	}
	if t.Value < 0 {
		return fmt.Errorf("tolerance must be >= 0")
	}
	if t.Mode == ToleranceRelative && t.Value > 1 {
		return fmt.Errorf("relative tolerance must be a fraction between 0 and 1")
	}
	return nil
}

// Band returns the half-width of the band in kcal for the given target.
func (t Tolerance) Band(target int) float64 {
	if t.Mode == ToleranceRelative {
		return math.Abs(float64(target)) * t.Value
	}
	return t.Value
}

func (t Tolerance) Within(calories, target int) bool {
	return math.Abs(float64(calories-target)) <= t.Band(target)
}

func (t Tolerance) String() string {
	if t.Mode == ToleranceRelative {
		return fmt.Sprintf("±%.0f%%", t.Value*100)
	}
	return fmt.Sprintf("±%.0f kcal", t.Value)
}

// Stats aggregates the tracked days of a series. Highest and Best are nil when
// nothing was logged.
type Stats struct {
	TrackedDays    int       `json:"trackedDays"`
	TotalCalories  int       `json:"totalCalories"`
	Average        float64   `json:"average"`
	Highest        *DayPoint `json:"highestDay"`
	Best           *DayPoint `json:"bestDay"`
	Target         int       `json:"target"`
	Tolerance      Tolerance `json:"tolerance"`
	AdherenceCount int       `json:"adherenceCount"`
	AdherencePct   float64   `json:"adherencePercentage"`
}

// Summarize computes the aggregate statistics over tracked days. Ties on the
// highest and best day go to the earliest day.
func Summarize(series []DayPoint, target int, tol Tolerance) Stats {
	stats := Stats{Target: target, Tolerance: tol}
	tracked := TrackedDays(series)
	if len(tracked) == 0 {
		return stats
	}

	bestDist := math.Inf(1)
	for i := range tracked {
		p := tracked[i]
		stats.TotalCalories += p.Calories
		if stats.Highest == nil || p.Calories > stats.Highest.Calories {
			stats.Highest = &tracked[i]
		}
		if dist := math.Abs(float64(p.Calories - target)); dist < bestDist {
			bestDist = dist
			stats.Best = &tracked[i]
		}
		if tol.Within(p.Calories, target) {
			stats.AdherenceCount++
		}
	}

	stats.TrackedDays = len(tracked)
	stats.Average = float64(stats.TotalCalories) / float64(len(tracked))
	stats.AdherencePct = float64(stats.AdherenceCount) / float64(len(tracked)) * 100
	return stats
}
