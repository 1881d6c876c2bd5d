package energy

import (
	"fmt"
	"math"
)

// Body is the full input set a profile's derived values depend on.
type Body struct {
	Sex           Sex
	Age           int
	HeightCm      float64
	WeightKg      float64
	ActivityLevel ActivityLevel
	Goal          Goal
	PaceKgPerWeek float64
}

// Derived holds the values computed from a Body, rounded to whole kcal.
type Derived struct {
	BMR            int `json:"bmr"`
	TDEE           int `json:"tdee"`
	TargetCalories int `json:"targetCalories"`
}

func (b Body) Validate() error {
	if b.Sex != SexMale && b.Sex != SexFemale {
		return fmt.Errorf("invalid sex %q (use male or female)", b.Sex)
	}
	if b.Age < 13 || b.Age > 120 {
		return fmt.Errorf("age must be between 13 and 120")
	}
	if b.HeightCm < 120 || b.HeightCm > 230 {
		return fmt.Errorf("height must be between 120 and 230 cm")
	}
	if b.WeightKg < 30 || b.WeightKg > 250 {
		return fmt.Errorf("weight must be between 30 and 250 kg")
	}
	if _, err := Multiplier(b.ActivityLevel); err != nil {
		return err
	}
	switch b.Goal {
	case GoalMaintain:
	case GoalLose, GoalGain:
		if b.PaceKgPerWeek < 0.1 || b.PaceKgPerWeek > 1 {
			return fmt.Errorf("pace must be between 0.1 and 1 kg/week")
		}
	default:
		return fmt.Errorf("invalid goal %q (use lose, maintain, or gain)", b.Goal)
	}
	return nil
}

// Estimate validates b and computes BMR, TDEE and target together. Rounding
// happens here once; callers store and reuse the integers.
func Estimate(b Body) (Derived, error) {
	if err := b.Validate(); err != nil {
		return Derived{}, err
	}
	bmr := BMR(b.Sex, b.WeightKg, b.HeightCm, b.Age)
	tdee, err := TDEE(bmr, b.ActivityLevel)
	if err != nil {
		return Derived{}, err
	}
	target := TargetCalories(tdee, b.Goal, b.PaceKgPerWeek)
	return Derived{
		BMR:            int(math.Round(bmr)),
		TDEE:           int(math.Round(tdee)),
		TargetCalories: int(math.Round(target)),
	}, nil
}
