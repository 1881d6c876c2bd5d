package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

// ExportProfile and ExportEntry use the field names of the original browser
// app so exports from either can be imported by the other.
type ExportProfile struct {
	Sex            string  `json:"sex"`
	Age            int     `json:"age"`
	HeightCm       float64 `json:"heightCm"`
	WeightKg       float64 `json:"weightKg"`
	ActivityLevel  string  `json:"activityLevel"`
	Goal           string  `json:"goal"`
	Pace           float64 `json:"pace"`
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"targetCalories"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`

	DeficitGoalKg          *float64 `json:"deficitGoalKg,omitempty"`
	DeficitKcalPerKg       *float64 `json:"deficitKcalPerKg,omitempty"`
	DeficitUseTargetChange *bool    `json:"deficitUseTargetChange,omitempty"`
	DeficitTargetBefore    *float64 `json:"deficitTargetBefore,omitempty"`
	DeficitTargetAfter     *float64 `json:"deficitTargetAfter,omitempty"`
	DeficitChangeDay       *float64 `json:"deficitChangeDay,omitempty"`
}

type ExportEntry struct {
	ID        *int64   `json:"id,omitempty"`
	CreatedAt string   `json:"createdAt"`
	DayKey    string   `json:"dayKey,omitempty"`
	Label     string   `json:"label,omitempty"`
	Calories  *float64 `json:"calories"`
	Protein   *float64 `json:"protein,omitempty"`
	Carbs     *float64 `json:"carbs,omitempty"`
	Fat       *float64 `json:"fat,omitempty"`
}

// ExportData is the bulk document. A nil Entries slice on import leaves the
// stored entries alone; an empty one clears them.
type ExportData struct {
	Profile *ExportProfile `json:"profile,omitempty"`
	Entries []ExportEntry  `json:"entries"`
}

type ImportMode string

const (
	ImportModeReplace ImportMode = "replace"
	ImportModeMerge   ImportMode = "merge"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	ProfileImported bool     `json:"profileImported"`
	Inserted        int      `json:"inserted"`
	Replaced        int      `json:"replaced"`
	Skipped         int      `json:"skipped"`
	Warnings        []string `json:"warnings,omitempty"`
	DryRun          bool     `json:"dryRun,omitempty"`
}

func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportModeReplace:
		return ImportModeReplace, nil
	case ImportModeMerge:
		return ImportModeMerge, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (use replace or merge)", s)
	}
}

func ExportSnapshot(db *sqlx.DB) (*ExportData, error) {
	out := &ExportData{Entries: []ExportEntry{}}

	profile, err := GetProfile(db)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		out.Profile = toExportProfile(profile)
	}

	entries, err := AllEntries(db)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		id := e.ID
		calories := float64(e.Calories)
		out.Entries = append(out.Entries, ExportEntry{
			ID:        &id,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
			DayKey:    e.DayKey,
			Label:     e.Label,
			Calories:  &calories,
			Protein:   e.Protein,
			Carbs:     e.Carbs,
			Fat:       e.Fat,
		})
	}
	return out, nil
}

func toExportProfile(p *model.Profile) *ExportProfile {
	d := p.Deficit
	useChange := d.UseTargetChange
	before, after, changeDay := float64(d.TargetBefore), float64(d.TargetAfter), float64(d.ChangeDay)
	return &ExportProfile{
		Sex:                    string(p.Sex),
		Age:                    p.Age,
		HeightCm:               p.HeightCm,
		WeightKg:               p.WeightKg,
		ActivityLevel:          string(p.ActivityLevel),
		Goal:                   string(p.Goal),
		Pace:                   p.Pace,
		BMR:                    float64(p.BMR),
		TDEE:                   float64(p.TDEE),
		TargetCalories:         float64(p.TargetCalories),
		CreatedAt:              p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:              p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		DeficitGoalKg:          floatPtr(d.GoalKg),
		DeficitKcalPerKg:       floatPtr(d.KcalPerKg),
		DeficitUseTargetChange: &useChange,
		DeficitTargetBefore:    &before,
		DeficitTargetAfter:     &after,
		DeficitChangeDay:       &changeDay,
	}
}

// DecodeExport reads a bulk document and rejects unknown shapes early.
func DecodeExport(r io.Reader) (*ExportData, error) {
	var data ExportData
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode import json: %w", err)
	}
	if data.Profile == nil && data.Entries == nil {
		return nil, fmt.Errorf("import json has neither profile nor entries")
	}
	return &data, nil
}

// ImportSnapshot applies a bulk document in one transaction. Malformed
// entries are skipped with a warning; valid ones are kept. Derived profile
// fields in the document are ignored and recomputed.
func ImportSnapshot(db *sqlx.DB, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{DryRun: opts.DryRun}
	mode, err := ParseImportMode(string(opts.Mode))
	if err != nil {
		return report, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if data.Profile != nil {
		body, deficit, err := fromExportProfile(data.Profile)
		if err != nil {
			return report, fmt.Errorf("import profile: %w", err)
		}
		if err := saveProfileTx(tx, body, &deficit, time.Now()); err != nil {
			return report, fmt.Errorf("import profile: %w", err)
		}
		report.ProfileImported = true
	}

	if data.Entries != nil {
		if mode == ImportModeReplace {
			var existing int
			if err := tx.Get(&existing, `SELECT COUNT(1) FROM entries`); err != nil {
				return report, fmt.Errorf("count entries before replace: %w", err)
			}
			if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
				return report, fmt.Errorf("clear entries for replace: %w", err)
			}
			report.Replaced = existing
		}
		for i, raw := range data.Entries {
			in, err := fromExportEntry(raw)
			if err != nil {
				report.Skipped++
				report.Warnings = append(report.Warnings, fmt.Sprintf("entry %d skipped: %v", i+1, err))
				continue
			}
			if _, err := insertEntry(tx, in); err != nil {
				report.Skipped++
				report.Warnings = append(report.Warnings, fmt.Sprintf("entry %d skipped: %v", i+1, err))
				continue
			}
			report.Inserted++
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import: %w", err)
	}
	return report, nil
}

func fromExportProfile(p *ExportProfile) (energy.Body, model.DeficitSettings, error) {
	sex, err := energy.ParseSex(p.Sex)
	if err != nil {
		return energy.Body{}, model.DeficitSettings{}, err
	}
	level, err := energy.ParseActivityLevel(p.ActivityLevel)
	if err != nil {
		return energy.Body{}, model.DeficitSettings{}, err
	}
	goal, err := energy.ParseGoal(p.Goal)
	if err != nil {
		return energy.Body{}, model.DeficitSettings{}, err
	}
	body := energy.Body{
		Sex:           sex,
		Age:           p.Age,
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		ActivityLevel: level,
		Goal:          goal,
		PaceKgPerWeek: p.Pace,
	}

	d := model.DeficitSettings{KcalPerKg: energy.KcalPerKg, ChangeDay: 1}
	if p.DeficitGoalKg != nil {
		d.GoalKg = *p.DeficitGoalKg
	}
	if p.DeficitKcalPerKg != nil {
		d.KcalPerKg = *p.DeficitKcalPerKg
	}
	if p.DeficitUseTargetChange != nil {
		d.UseTargetChange = *p.DeficitUseTargetChange
	}
	if p.DeficitTargetBefore != nil {
		d.TargetBefore = roundKcal(*p.DeficitTargetBefore)
	}
	if p.DeficitTargetAfter != nil {
		d.TargetAfter = roundKcal(*p.DeficitTargetAfter)
	}
	if p.DeficitChangeDay != nil {
		d.ChangeDay = roundKcal(*p.DeficitChangeDay)
	}
	return body, d, nil
}

func fromExportEntry(e ExportEntry) (EntryInput, error) {
	if strings.TrimSpace(e.CreatedAt) == "" {
		return EntryInput{}, fmt.Errorf("createdAt is required")
	}
	createdAt, err := parseTime(e.CreatedAt)
	if err != nil {
		return EntryInput{}, err
	}
	if e.Calories == nil {
		return EntryInput{}, fmt.Errorf("calories is required")
	}
	if math.IsNaN(*e.Calories) || math.IsInf(*e.Calories, 0) {
		return EntryInput{}, fmt.Errorf("calories must be a finite number")
	}
	in := EntryInput{
		CreatedAt: createdAt,
		Label:     e.Label,
		Calories:  roundKcal(*e.Calories),
		Protein:   e.Protein,
		Carbs:     e.Carbs,
		Fat:       e.Fat,
	}
	return in, in.Validate()
}

func roundKcal(v float64) int {
	return int(math.Round(v))
}

var csvHeader = []string{"id", "created_at", "day_key", "label", "calories", "protein", "carbs", "fat"}

// WriteEntriesCSV writes every entry, oldest first. Missing macros are blank.
func WriteEntriesCSV(db *sqlx.DB, w io.Writer) (int, error) {
	entries, err := AllEntries(db)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write export csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.DayKey,
			e.Label,
			strconv.Itoa(e.Calories),
			csvFloat(e.Protein),
			csvFloat(e.Carbs),
			csvFloat(e.Fat),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write export csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush export csv: %w", err)
	}
	return len(entries), nil
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
