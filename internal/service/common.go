package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hovosukiasyan/calorie-tracker/internal/db"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNoProfile = errors.New("no profile saved; run `kcal profile set` first")
)

const MaxLabelLength = 60

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value *float64) error {
	if value == nil {
		return nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if *value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateLabel(label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return fmt.Errorf("label must be at most %d characters", MaxLabelLength)
	}
	return nil
}

func normalizeKey(key string) string {
	return strings.TrimSpace(strings.ToLower(key))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(db.TimeLayout)
}

// parseTime accepts the storage layout and any RFC 3339 timestamp.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(db.TimeLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
