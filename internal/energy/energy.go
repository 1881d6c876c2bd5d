// Package energy estimates basal and total daily energy expenditure and the
// daily calorie target implied by a weight goal.
package energy

import (
	"fmt"
	"math"
	"strings"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very-active"
)

// ActivityLevels lists the tiers from least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

const (
	// KcalPerKg is the energy content assumed for one kilogram of body mass.
	KcalPerKg = 7700.0

	// MinTargetCalories is the policy floor for computed targets.
	MinTargetCalories = 1200.0
)

func ParseSex(value string) (Sex, error) {
	switch s := Sex(strings.ToLower(strings.TrimSpace(value))); s {
	case SexMale, SexFemale:
		return s, nil
	default:
		return "", fmt.Errorf("invalid sex %q (use male or female)", value)
	}
}

func ParseActivityLevel(value string) (ActivityLevel, error) {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(value)))
	if level == "very_active" || level == "veryactive" {
		level = ActivityVeryActive
	}
	if _, ok := activityMultipliers[level]; !ok {
		return "", fmt.Errorf("invalid activity level %q (use sedentary, light, moderate, active, or very-active)", value)
	}
	return level, nil
}

func ParseGoal(value string) (Goal, error) {
	switch g := Goal(strings.ToLower(strings.TrimSpace(value))); g {
	case GoalLose, GoalMaintain, GoalGain:
		return g, nil
	default:
		return "", fmt.Errorf("invalid goal %q (use lose, maintain, or gain)", value)
	}
}

// Multiplier returns the TDEE multiplier for an activity level.
func Multiplier(level ActivityLevel) (float64, error) {
	m, ok := activityMultipliers[level]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q", level)
	}
	return m, nil
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(sex Sex, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == SexMale {
		return base + 5
	}
	return base - 161
}

func TDEE(bmr float64, level ActivityLevel) (float64, error) {
	m, err := Multiplier(level)
	if err != nil {
		return 0, err
	}
	return bmr * m, nil
}

// DailyAdjustment converts a weekly pace in kg to a daily kcal delta.
func DailyAdjustment(paceKgPerWeek float64) float64 {
	return paceKgPerWeek * KcalPerKg / 7
}

// TargetCalories adjusts tdee for the goal. Lose and gain targets never fall
// below MinTargetCalories; maintain returns tdee untouched.
func TargetCalories(tdee float64, goal Goal, paceKgPerWeek float64) float64 {
	if goal == GoalMaintain {
		return tdee
	}
	adjustment := DailyAdjustment(paceKgPerWeek)
	target := tdee + adjustment
	if goal == GoalLose {
		target = tdee - adjustment
	}
	return math.Max(target, MinTargetCalories)
}
