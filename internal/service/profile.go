package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

type profileRow struct {
	ID             string  `db:"id"`
	Sex            string  `db:"sex"`
	Age            int     `db:"age"`
	HeightCm       float64 `db:"height_cm"`
	WeightKg       float64 `db:"weight_kg"`
	ActivityLevel  string  `db:"activity_level"`
	Goal           string  `db:"goal"`
	Pace           float64 `db:"pace"`
	BMR            int     `db:"bmr"`
	TDEE           int     `db:"tdee"`
	TargetCalories int     `db:"target_calories"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`

	DeficitGoalKg          float64 `db:"deficit_goal_kg"`
	DeficitKcalPerKg       float64 `db:"deficit_kcal_per_kg"`
	DeficitUseTargetChange bool    `db:"deficit_use_target_change"`
	DeficitTargetBefore    int     `db:"deficit_target_before"`
	DeficitTargetAfter     int     `db:"deficit_target_after"`
	DeficitChangeDay       int     `db:"deficit_change_day"`
}

func (r profileRow) toModel() (*model.Profile, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("profile created_at: %w", err)
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("profile updated_at: %w", err)
	}
	return &model.Profile{
		Sex:            energy.Sex(r.Sex),
		Age:            r.Age,
		HeightCm:       r.HeightCm,
		WeightKg:       r.WeightKg,
		ActivityLevel:  energy.ActivityLevel(r.ActivityLevel),
		Goal:           energy.Goal(r.Goal),
		Pace:           r.Pace,
		BMR:            r.BMR,
		TDEE:           r.TDEE,
		TargetCalories: r.TargetCalories,
		Deficit: model.DeficitSettings{
			GoalKg:          r.DeficitGoalKg,
			KcalPerKg:       r.DeficitKcalPerKg,
			UseTargetChange: r.DeficitUseTargetChange,
			TargetBefore:    r.DeficitTargetBefore,
			TargetAfter:     r.DeficitTargetAfter,
			ChangeDay:       r.DeficitChangeDay,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetProfile returns nil without an error when no profile has been saved.
func GetProfile(db sqlx.Queryer) (*model.Profile, error) {
	var row profileRow
	err := sqlx.Get(db, &row, `SELECT * FROM profile WHERE id = ?`, model.ProfileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return row.toModel()
}

// RequireProfile is GetProfile for callers that cannot continue without one.
func RequireProfile(db *sqlx.DB) (*model.Profile, error) {
	p, err := GetProfile(db)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoProfile
	}
	return p, nil
}

// SaveProfile is the only write path for body inputs. BMR, TDEE and target are
// always recomputed together from the full input set.
func SaveProfile(db *sqlx.DB, body energy.Body) (*model.Profile, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin profile tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveProfileTx(tx, body, nil, time.Now()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return GetProfile(db)
}

// saveProfileTx upserts the profile. A nil deficit keeps the stored settings.
func saveProfileTx(tx *sqlx.Tx, body energy.Body, deficit *model.DeficitSettings, now time.Time) error {
	if body.Goal == energy.GoalMaintain {
		body.PaceKgPerWeek = 0
	}
	derived, err := energy.Estimate(body)
	if err != nil {
		return err
	}

	ts := formatTime(now)
	if _, err := tx.Exec(`
INSERT INTO profile(id, sex, age, height_cm, weight_kg, activity_level, goal, pace, bmr, tdee, target_calories, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  sex = excluded.sex,
  age = excluded.age,
  height_cm = excluded.height_cm,
  weight_kg = excluded.weight_kg,
  activity_level = excluded.activity_level,
  goal = excluded.goal,
  pace = excluded.pace,
  bmr = excluded.bmr,
  tdee = excluded.tdee,
  target_calories = excluded.target_calories,
  updated_at = excluded.updated_at
`, model.ProfileID, string(body.Sex), body.Age, body.HeightCm, body.WeightKg, string(body.ActivityLevel), string(body.Goal), body.PaceKgPerWeek,
		derived.BMR, derived.TDEE, derived.TargetCalories, ts, ts); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if deficit != nil {
		if err := writeDeficitSettings(tx, *deficit, now); err != nil {
			return err
		}
	}
	return nil
}

func normalizeDeficitSettings(s model.DeficitSettings) (model.DeficitSettings, error) {
	if s.GoalKg < 0 {
		return s, fmt.Errorf("deficit goal must be >= 0 kg")
	}
	if s.TargetBefore < 0 || s.TargetAfter < 0 {
		return s, fmt.Errorf("deficit targets must be >= 0")
	}
	cfg := analytics.DeficitConfig{KcalPerKg: s.KcalPerKg, ChangeDay: s.ChangeDay}.Normalized()
	s.KcalPerKg = cfg.KcalPerKg
	s.ChangeDay = cfg.ChangeDay
	return s, nil
}

func writeDeficitSettings(ex sqlx.Execer, s model.DeficitSettings, now time.Time) error {
	s, err := normalizeDeficitSettings(s)
	if err != nil {
		return err
	}
	res, err := ex.Exec(`
UPDATE profile SET
  deficit_goal_kg = ?,
  deficit_kcal_per_kg = ?,
  deficit_use_target_change = ?,
  deficit_target_before = ?,
  deficit_target_after = ?,
  deficit_change_day = ?,
  updated_at = ?
WHERE id = ?
`, s.GoalKg, s.KcalPerKg, s.UseTargetChange, s.TargetBefore, s.TargetAfter, s.ChangeDay, formatTime(now), model.ProfileID)
	if err != nil {
		return fmt.Errorf("save deficit settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save deficit settings: %w", err)
	}
	if n == 0 {
		return ErrNoProfile
	}
	return nil
}

func SetDeficitSettings(db *sqlx.DB, s model.DeficitSettings) error {
	return writeDeficitSettings(db, s, time.Now())
}

// DeficitConfig adapts stored settings to the deficit engine. Unset targets
// fall back to the profile's target calories.
func DeficitConfig(p *model.Profile) analytics.DeficitConfig {
	if p == nil {
		return analytics.DeficitConfig{}.Normalized()
	}
	cfg := analytics.DeficitConfig{
		GoalKg:          p.Deficit.GoalKg,
		KcalPerKg:       p.Deficit.KcalPerKg,
		UseTargetChange: p.Deficit.UseTargetChange,
		TargetBefore:    p.Deficit.TargetBefore,
		TargetAfter:     p.Deficit.TargetAfter,
		ChangeDay:       p.Deficit.ChangeDay,
	}
	if cfg.TargetBefore <= 0 {
		cfg.TargetBefore = p.TargetCalories
	}
	if cfg.TargetAfter <= 0 {
		cfg.TargetAfter = p.TargetCalories
	}
	return cfg.Normalized()
}

// ResetAll removes the profile and every entry. Preferences are kept.
func ResetAll(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range []string{
		`DELETE FROM entries`,
		`DELETE FROM profile`,
		`DELETE FROM sqlite_sequence WHERE name = 'entries'`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("reset data: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
