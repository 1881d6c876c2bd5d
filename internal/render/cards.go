package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
)

// Card is one labelled figure in a row of stat cards.
type Card struct {
	Label string
	Value string
	Hint  string
}

func Title(s string) string {
	return titleStyle.Render(s)
}

func Muted(s string) string {
	return mutedStyle.Render(s)
}

func StatCard(c Card) string {
	lines := []string{cardLabelStyle.Render(c.Label), cardValueStyle.Render(c.Value)}
	if c.Hint != "" {
		lines = append(lines, mutedStyle.Render(c.Hint))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// CardRow lays cards out side by side.
func CardRow(cards ...Card) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, StatCard(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// ProgressBar draws percent (0..100) as a bar of the given width. The bar
// turns amber past 90% and red past 100% of the raw value.
func ProgressBar(p analytics.DayProgress, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := int(math.Round(p.PercentBar / 100 * float64(width)))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := goodStyle
	switch {
	case p.OverTarget:
		style = badStyle
	case p.Percent >= 90:
		style = warnStyle
	}
	return fmt.Sprintf("%s %3.0f%%", style.Render(bar), p.Percent)
}

func Kcal(v int) string {
	return FormatInt(v) + " kcal"
}

// SignedKcal prefixes positive values with +.
func SignedKcal(v int) string {
	if v > 0 {
		return "+" + Kcal(v)
	}
	return Kcal(v)
}

// FormatInt groups thousands with commas.
func FormatInt(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
