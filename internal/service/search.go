package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sahilm/fuzzy"
)

// LabelMatch is a previously logged label that matches a search, with the
// calories it was last logged at so it can be logged again.
type LabelMatch struct {
	Label        string    `json:"label"`
	Uses         int       `json:"uses"`
	LastCalories int       `json:"lastCalories"`
	LastLoggedAt time.Time `json:"lastLoggedAt"`
	Score        int       `json:"score"`
}

type labelRow struct {
	Label        string `db:"label"`
	Uses         int    `db:"uses"`
	LastCalories int    `db:"last_calories"`
	LastLoggedAt string `db:"last_logged_at"`
}

type labelSource []labelRow

func (s labelSource) String(i int) string { return s[i].Label }
func (s labelSource) Len() int            { return len(s) }

// SearchEntries fuzzy-matches query against distinct entry labels. Results are
// ranked by match score, best first.
func SearchEntries(db *sqlx.DB, query string, limit int) ([]LabelMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}

	var rows []labelRow
	if err := db.Select(&rows, `
SELECT e.label AS label,
       COUNT(1) AS uses,
       (SELECT x.calories FROM entries x WHERE x.label = e.label ORDER BY x.created_at DESC, x.id DESC LIMIT 1) AS last_calories,
       MAX(e.created_at) AS last_logged_at
FROM entries e
WHERE e.label <> ''
GROUP BY e.label
ORDER BY last_logged_at DESC
`); err != nil {
		return nil, fmt.Errorf("list entry labels: %w", err)
	}

	matches := fuzzy.FindFrom(query, labelSource(rows))
	out := make([]LabelMatch, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) >= limit {
			break
		}
		r := rows[m.Index]
		lastLogged, err := parseTime(r.LastLoggedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, LabelMatch{
			Label:        r.Label,
			Uses:         r.Uses,
			LastCalories: r.LastCalories,
			LastLoggedAt: lastLogged,
			Score:        m.Score,
		})
	}
	return out, nil
}
