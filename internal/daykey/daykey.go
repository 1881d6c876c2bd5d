// Package daykey converts instants to local calendar-day keys (YYYY-MM-DD)
// and performs calendar arithmetic on them. Keys sort lexicographically in
// chronological order.
package daykey

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	Layout = "2006-01-02"

	// MaxRangeDays caps Enumerate so a malformed range can never loop unbounded.
	MaxRangeDays = 5000
)

var (
	ErrInvalidKey    = errors.New("invalid day key")
	ErrInvalidRange  = errors.New("end day precedes start day")
	ErrRangeTooLarge = fmt.Errorf("day range exceeds %d days", MaxRangeDays)
	ErrInvalidPeriod = errors.New("invalid period")
)

var (
	keyPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekPattern  = regexp.MustCompile(`^\d{4}-W\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// FromTime returns the key of the local calendar day containing t.
func FromTime(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// Today returns the key for the current local day.
func Today() string {
	return FromTime(time.Now())
}

// Parse returns local noon of the day named by key. Anchoring at noon keeps
// day arithmetic clear of daylight-saving transitions.
func Parse(key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if !keyPattern.MatchString(key) {
		return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD)", ErrInvalidKey, key)
	}
	t, err := time.ParseInLocation(Layout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD)", ErrInvalidKey, key)
	}
	return noon(t), nil
}

func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

func Add(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

func Subtract(key string, n int) (string, error) {
	return Add(key, -n)
}

// Diff returns the signed number of days from "from" to "to".
func Diff(from, to string) (int, error) {
	a, err := Parse(from)
	if err != nil {
		return 0, err
	}
	b, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return int(math.Round(b.Sub(a).Hours() / 24)), nil
}

// Enumerate lists every key from start to end inclusive.
func Enumerate(start, end string) ([]string, error) {
	n, err := Diff(start, end)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	if n+1 > MaxRangeDays {
		return nil, fmt.Errorf("%w: %s to %s", ErrRangeTooLarge, start, end)
	}
	first, _ := Parse(start)
	keys := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		keys = append(keys, first.AddDate(0, 0, i).Format(Layout))
	}
	return keys, nil
}

// MonthRange resolves "YYYY-MM" to the first and last day of that month.
func MonthRange(yearMonth string) (string, string, error) {
	yearMonth = strings.TrimSpace(yearMonth)
	if !monthPattern.MatchString(yearMonth) {
		return "", "", fmt.Errorf("%w: month %q (expected YYYY-MM)", ErrInvalidPeriod, yearMonth)
	}
	parsed, err := time.ParseInLocation("2006-01", yearMonth, time.Local)
	if err != nil {
		return "", "", fmt.Errorf("%w: month %q (expected YYYY-MM)", ErrInvalidPeriod, yearMonth)
	}
	start := time.Date(parsed.Year(), parsed.Month(), 1, 12, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	return start.Format(Layout), end.Format(Layout), nil
}

// CurrentMonth returns the YYYY-MM of t in local time.
func CurrentMonth(t time.Time) string {
	return t.In(time.Local).Format("2006-01")
}

// ISOWeekRange resolves "YYYY-Www" to its Monday..Sunday window.
func ISOWeekRange(week string) (string, string, error) {
	week = strings.TrimSpace(week)
	if !weekPattern.MatchString(week) {
		return "", "", fmt.Errorf("%w: week %q (expected YYYY-Www)", ErrInvalidPeriod, week)
	}
	var year, num int
	if _, err := fmt.Sscanf(week, "%4d-W%2d", &year, &num); err != nil {
		return "", "", fmt.Errorf("%w: week %q (expected YYYY-Www)", ErrInvalidPeriod, week)
	}
	maxWeek := weeksInISOYear(year)
	if num < 1 || num > maxWeek {
		return "", "", fmt.Errorf("%w: week %q (must be between 01 and %02d for %d)", ErrInvalidPeriod, week, maxWeek, year)
	}
	start := isoWeekStart(year, num)
	return start.Format(Layout), start.AddDate(0, 0, 6).Format(Layout), nil
}

// CurrentISOWeek formats the ISO week containing t as "YYYY-Www".
func CurrentISOWeek(t time.Time) string {
	year, week := t.In(time.Local).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ClampStart moves start forward to firstLogged when the requested range
// begins before anything was ever logged.
func ClampStart(start, firstLogged string) string {
	if firstLogged == "" || start >= firstLogged {
		return start
	}
	return firstLogged
}

// Label renders a short display label such as "Mon, Feb 2".
func Label(key string) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	return t.Format("Mon, Jan 2")
}

// LongLabel renders "Monday, February 2, 2026".
func LongLabel(key string) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	return t.Format("Monday, January 2, 2006")
}

func noon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local)
}

// week 1 is the week containing January 4th
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, 1, 4, 12, 0, 0, 0, time.Local)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(weekday - 1))
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

func weeksInISOYear(year int) int {
	_, wk := time.Date(year, 12, 28, 12, 0, 0, 0, time.Local).ISOWeek()
	return wk
}
