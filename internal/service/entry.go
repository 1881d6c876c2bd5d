package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
)

type EntryInput struct {
	CreatedAt time.Time
	Label     string
	Calories  int
	Protein   *float64
	Carbs     *float64
	Fat       *float64
}

type ListEntriesFilter struct {
	Day   string
	From  string
	To    string
	Limit int
}

type entryRow struct {
	ID        int64           `db:"id"`
	CreatedAt string          `db:"created_at"`
	DayKey    string          `db:"day_key"`
	Label     string          `db:"label"`
	Calories  int             `db:"calories"`
	Protein   sql.NullFloat64 `db:"protein"`
	Carbs     sql.NullFloat64 `db:"carbs"`
	Fat       sql.NullFloat64 `db:"fat"`
}

const entryColumns = `id, created_at, day_key, label, calories, protein, carbs, fat`

func (r entryRow) toModel() (model.Entry, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return model.Entry{}, fmt.Errorf("entry %d: %w", r.ID, err)
	}
	e := model.Entry{
		ID:        r.ID,
		CreatedAt: createdAt,
		DayKey:    r.DayKey,
		Label:     r.Label,
		Calories:  r.Calories,
	}
	if r.Protein.Valid {
		e.Protein = floatPtr(r.Protein.Float64)
	}
	if r.Carbs.Valid {
		e.Carbs = floatPtr(r.Carbs.Float64)
	}
	if r.Fat.Valid {
		e.Fat = floatPtr(r.Fat.Float64)
	}
	return e, nil
}

func rowsToEntries(rows []entryRow) ([]model.Entry, error) {
	out := make([]model.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (in *EntryInput) normalize() error {
	in.Label = strings.TrimSpace(in.Label)
	if err := validateLabel(in.Label); err != nil {
		return err
	}
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein", in.Protein); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs", in.Carbs); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("fat", in.Fat); err != nil {
		return err
	}
	if in.CreatedAt.IsZero() {
		return fmt.Errorf("created time is required")
	}
	return nil
}

// Validate checks an entry the way writes do, without touching storage.
func (in EntryInput) Validate() error {
	return in.normalize()
}

func CreateEntry(db *sqlx.DB, in EntryInput) (int64, error) {
	return insertEntry(db, in)
}

func insertEntry(ex sqlx.Execer, in EntryInput) (int64, error) {
	if err := in.normalize(); err != nil {
		return 0, err
	}
	res, err := ex.Exec(`
INSERT INTO entries(created_at, day_key, label, calories, protein, carbs, fat)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, formatTime(in.CreatedAt), daykey.FromTime(in.CreatedAt), in.Label, in.Calories, in.Protein, in.Carbs, in.Fat)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve inserted entry id: %w", err)
	}
	return id, nil
}

// UpdateEntry replaces every field of an entry. The day key follows the new
// creation time.
func UpdateEntry(db *sqlx.DB, id int64, in EntryInput) error {
	if id <= 0 {
		return fmt.Errorf("entry id must be > 0")
	}
	if err := in.normalize(); err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE entries
SET created_at = ?, day_key = ?, label = ?, calories = ?, protein = ?, carbs = ?, fat = ?
WHERE id = ?
`, formatTime(in.CreatedAt), daykey.FromTime(in.CreatedAt), in.Label, in.Calories, in.Protein, in.Carbs, in.Fat, id)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	return requireAffected(res, "entry", id)
}

func DeleteEntry(db *sqlx.DB, id int64) error {
	if id <= 0 {
		return fmt.Errorf("entry id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return requireAffected(res, "entry", id)
}

func EntryByID(db *sqlx.DB, id int64) (model.Entry, error) {
	var row entryRow
	err := db.Get(&row, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	return row.toModel()
}

// ListEntries returns entries newest first.
func ListEntries(db *sqlx.DB, f ListEntriesFilter) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	args := make([]any, 0)

	if day := strings.TrimSpace(f.Day); day != "" {
		if !daykey.Valid(day) {
			return nil, fmt.Errorf("invalid --date %q: %w", day, daykey.ErrInvalidKey)
		}
		query += ` AND day_key = ?`
		args = append(args, day)
	}
	if from := strings.TrimSpace(f.From); from != "" {
		if !daykey.Valid(from) {
			return nil, fmt.Errorf("invalid --from %q: %w", from, daykey.ErrInvalidKey)
		}
		query += ` AND day_key >= ?`
		args = append(args, from)
	}
	if to := strings.TrimSpace(f.To); to != "" {
		if !daykey.Valid(to) {
			return nil, fmt.Errorf("invalid --to %q: %w", to, daykey.ErrInvalidKey)
		}
		query += ` AND day_key <= ?`
		args = append(args, to)
	}
	if f.From != "" && f.To != "" && strings.TrimSpace(f.From) > strings.TrimSpace(f.To) {
		return nil, daykey.ErrInvalidRange
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	var rows []entryRow
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return rowsToEntries(rows)
}

// EntriesBetween returns every entry whose day key falls in [start, end],
// oldest first.
func EntriesBetween(db *sqlx.DB, start, end string) ([]model.Entry, error) {
	if !daykey.Valid(start) || !daykey.Valid(end) {
		return nil, daykey.ErrInvalidKey
	}
	if end < start {
		return nil, daykey.ErrInvalidRange
	}
	var rows []entryRow
	if err := db.Select(&rows, `
SELECT `+entryColumns+` FROM entries
WHERE day_key >= ? AND day_key <= ?
ORDER BY created_at ASC, id ASC
`, start, end); err != nil {
		return nil, fmt.Errorf("list entries between %s and %s: %w", start, end, err)
	}
	return rowsToEntries(rows)
}

func AllEntries(db *sqlx.DB) ([]model.Entry, error) {
	var rows []entryRow
	if err := db.Select(&rows, `SELECT `+entryColumns+` FROM entries ORDER BY created_at ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	return rowsToEntries(rows)
}

// EntryDayBounds returns the first and last logged day keys, or empty strings
// when nothing has been logged.
func EntryDayBounds(db *sqlx.DB) (string, string, error) {
	var bounds struct {
		First sql.NullString `db:"first"`
		Last  sql.NullString `db:"last"`
	}
	if err := db.Get(&bounds, `SELECT MIN(day_key) AS first, MAX(day_key) AS last FROM entries`); err != nil {
		return "", "", fmt.Errorf("entry day bounds: %w", err)
	}
	return bounds.First.String, bounds.Last.String, nil
}

func CountEntries(db *sqlx.DB) (int, error) {
	var n int
	if err := db.Get(&n, `SELECT COUNT(1) FROM entries`); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
