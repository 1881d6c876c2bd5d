package analytics

import (
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
)

// DeficitConfig drives the deficit engine. With UseTargetChange set, the
// target switches from TargetBefore to TargetAfter on tracked day ChangeDay.
type DeficitConfig struct {
	GoalKg          float64 `json:"goalKg"`
	KcalPerKg       float64 `json:"kcalPerKg"`
	UseTargetChange bool    `json:"useTargetChange"`
	TargetBefore    int     `json:"targetBefore"`
	TargetAfter     int     `json:"targetAfter"`
	ChangeDay       int     `json:"changeDay"`
}

// Normalized applies the default energy constant and clamps ChangeDay to 1.
func (c DeficitConfig) Normalized() DeficitConfig {
	if c.KcalPerKg <= 0 {
		c.KcalPerKg = energy.KcalPerKg
	}
	if c.ChangeDay < 1 {
		c.ChangeDay = 1
	}
	return c
}

type DeficitPoint struct {
	DayPoint
	TrackedDay int `json:"trackedDay"`
	Target     int `json:"target"`
	Deficit    int `json:"deficit"`
}

type CumulativePoint struct {
	DeficitPoint
	TotalDeficit int `json:"totalDeficit"`
}

type DeficitSummary struct {
	Config                DeficitConfig     `json:"config"`
	Points                []CumulativePoint `json:"points"`
	TrackedDays           int               `json:"trackedDays"`
	TotalDeficit          int               `json:"totalDeficit"`
	AverageDailyDeficit   float64           `json:"averageDailyDeficit"`
	EstimatedMassChangeKg float64           `json:"estimatedMassChangeKg"`
	GoalProgress          float64           `json:"goalProgress"`
}

// EffectiveTarget resolves the target for a 1-based tracked day. The switch
// happens on ChangeDay itself.
func EffectiveTarget(cfg DeficitConfig, trackedDay int) int {
	cfg = cfg.Normalized()
	if !cfg.UseTargetChange {
		return cfg.TargetAfter
	}
	if trackedDay < cfg.ChangeDay {
		return cfg.TargetBefore
	}
	return cfg.TargetAfter
}

// Deficits computes target minus consumed for every tracked day of series.
// Tracked days are numbered from firstLogged, the first day ever logged; when
// empty the first tracked day of series is used.
func Deficits(series []DayPoint, firstLogged string, cfg DeficitConfig) ([]DeficitPoint, error) {
	tracked := TrackedDays(series)
	if len(tracked) == 0 {
		return []DeficitPoint{}, nil
	}
	if firstLogged == "" {
		firstLogged = tracked[0].DayKey
	}
	cfg = cfg.Normalized()

	out := make([]DeficitPoint, 0, len(tracked))
	for _, p := range tracked {
		offset, err := daykey.Diff(firstLogged, p.DayKey)
		if err != nil {
			return nil, err
		}
		day := offset + 1
		target := EffectiveTarget(cfg, day)
		out = append(out, DeficitPoint{
			DayPoint:   p,
			TrackedDay: day,
			Target:     target,
			Deficit:    target - p.Calories,
		})
	}
	return out, nil
}

// Cumulative carries a running total of deficits forward point by point.
func Cumulative(points []DeficitPoint) []CumulativePoint {
	out := make([]CumulativePoint, 0, len(points))
	total := 0
	for _, p := range points {
		total += p.Deficit
		out = append(out, CumulativePoint{DeficitPoint: p, TotalDeficit: total})
	}
	return out
}

func SummarizeDeficit(series []DayPoint, firstLogged string, cfg DeficitConfig) (DeficitSummary, error) {
	cfg = cfg.Normalized()
	summary := DeficitSummary{Config: cfg, Points: []CumulativePoint{}}

	points, err := Deficits(series, firstLogged, cfg)
	if err != nil {
		return summary, err
	}
	if len(points) == 0 {
		return summary, nil
	}

	summary.Points = Cumulative(points)
	summary.TrackedDays = len(points)
	summary.TotalDeficit = summary.Points[len(summary.Points)-1].TotalDeficit
	summary.AverageDailyDeficit = float64(summary.TotalDeficit) / float64(len(points))
	summary.EstimatedMassChangeKg = float64(summary.TotalDeficit) / cfg.KcalPerKg
	summary.GoalProgress = GoalProgress(summary.EstimatedMassChangeKg, cfg.GoalKg)
	return summary, nil
}

// GoalProgress is massKg/goalKg clamped to [0, 1]; zero when no goal is set.
func GoalProgress(massKg, goalKg float64) float64 {
	if goalKg <= 0 {
		return 0
	}
	return clamp(massKg/goalKg, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
