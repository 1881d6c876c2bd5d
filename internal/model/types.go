package model

import (
	"time"

	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
)

// ProfileID is the fixed key of the single stored profile.
const ProfileID = "profile"

type Entry struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	DayKey    string    `json:"dayKey"`
	Label     string    `json:"label"`
	Calories  int       `json:"calories"`
	Protein   *float64  `json:"protein,omitempty"`
	Carbs     *float64  `json:"carbs,omitempty"`
	Fat       *float64  `json:"fat,omitempty"`
}

type DeficitSettings struct {
	GoalKg          float64 `json:"goalKg"`
	KcalPerKg       float64 `json:"kcalPerKg"`
	UseTargetChange bool    `json:"useTargetChange"`
	TargetBefore    int     `json:"targetBefore"`
	TargetAfter     int     `json:"targetAfter"`
	ChangeDay       int     `json:"changeDay"`
}

type Profile struct {
	Sex           energy.Sex           `json:"sex"`
	Age           int                  `json:"age"`
	HeightCm      float64              `json:"heightCm"`
	WeightKg      float64              `json:"weightKg"`
	ActivityLevel energy.ActivityLevel `json:"activityLevel"`
	Goal          energy.Goal          `json:"goal"`
	Pace          float64              `json:"pace"`

	BMR            int `json:"bmr"`
	TDEE           int `json:"tdee"`
	TargetCalories int `json:"targetCalories"`

	Deficit DeficitSettings `json:"deficit"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Profile) Body() energy.Body {
	return energy.Body{
		Sex:           p.Sex,
		Age:           p.Age,
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
		PaceKgPerWeek: p.Pace,
	}
}
