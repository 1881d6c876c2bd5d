package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"createdAt"`
	SizeBytes int64     `json:"sizeBytes"`
}

type DoctorReport struct {
	Entries           int      `json:"entries"`
	StaleDayKeys      int      `json:"staleDayKeys"`
	InvalidTimestamps int      `json:"invalidTimestamps"`
	NegativeValues    int      `json:"negativeValues"`
	ProfileStale      bool     `json:"profileStale"`
	FixedDayKeys      int      `json:"fixedDayKeys,omitempty"`
	FixedProfile      bool     `json:"fixedProfile,omitempty"`
	Issues            []string `json:"issues,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.StaleDayKeys == 0 && r.InvalidTimestamps == 0 && r.NegativeValues == 0 && !r.ProfileStale
}

// CreateBackup writes a consistent copy of the open database with a sha256
// sidecar file.
func CreateBackup(db *sqlx.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// DefaultBackupName is a sortable file name for a backup taken at t.
func DefaultBackupName(t time.Time) string {
	return "kcal-" + t.Format("20060102-150405") + ".db"
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

// ListBackups returns backups in dir, newest first. A missing dir is empty.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks that stored day keys still match their timestamps in the
// local time zone and that the profile's derived fields are current. With fix
// set, stale day keys and derived fields are rewritten.
func RunDoctor(db *sqlx.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	var rows []entryRow
	if err := db.Select(&rows, `SELECT `+entryColumns+` FROM entries ORDER BY id ASC`); err != nil {
		return report, fmt.Errorf("doctor entries query: %w", err)
	}
	report.Entries = len(rows)

	type staleKey struct {
		id  int64
		key string
	}
	stale := make([]staleKey, 0)
	for _, r := range rows {
		createdAt, err := parseTime(r.CreatedAt)
		if err != nil {
			report.InvalidTimestamps++
			report.Issues = append(report.Issues, fmt.Sprintf("entry %d has unreadable created_at %q", r.ID, r.CreatedAt))
			continue
		}
		if want := daykey.FromTime(createdAt); want != r.DayKey {
			report.StaleDayKeys++
			report.Issues = append(report.Issues, fmt.Sprintf("entry %d day_key %s should be %s", r.ID, r.DayKey, want))
			stale = append(stale, staleKey{id: r.ID, key: want})
		}
		if r.Calories < 0 || negative(r.Protein.Float64) || negative(r.Carbs.Float64) || negative(r.Fat.Float64) {
			report.NegativeValues++
			report.Issues = append(report.Issues, fmt.Sprintf("entry %d has a negative value", r.ID))
		}
	}

	profile, err := GetProfile(db)
	if err != nil {
		return report, err
	}
	if profile != nil {
		derived, err := energy.Estimate(profile.Body())
		switch {
		case err != nil:
			report.ProfileStale = true
			report.Issues = append(report.Issues, fmt.Sprintf("profile inputs are invalid: %v", err))
		case derived.BMR != profile.BMR || derived.TDEE != profile.TDEE || derived.TargetCalories != profile.TargetCalories:
			report.ProfileStale = true
			report.Issues = append(report.Issues, fmt.Sprintf("profile derived fields are stale (target %d, expected %d)", profile.TargetCalories, derived.TargetCalories))
		}
	}

	if !fix {
		return report, nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, s := range stale {
		if _, err := tx.Exec(`UPDATE entries SET day_key = ? WHERE id = ?`, s.key, s.id); err != nil {
			return report, fmt.Errorf("doctor fix day_key for entry %d: %w", s.id, err)
		}
		report.FixedDayKeys++
	}
	if report.ProfileStale && profile != nil {
		if err := saveProfileTx(tx, profile.Body(), nil, time.Now()); err == nil {
			report.FixedProfile = true
		}
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}
	return report, nil
}

func negative(v float64) bool {
	return v < 0
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
