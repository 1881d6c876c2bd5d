package kcal

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/render"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake and progress toward the target",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := strings.TrimSpace(todayDate)
		if day != "" && !daykey.Valid(day) {
			return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", todayDate)
		}
		return withDB(func(sqldb *sqlx.DB) error {
			status, err := service.TodaySummary(sqldb, day)
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printToday(cmd, status)
			return nil
		})
	},
}

func printToday(cmd *cobra.Command, s *service.TodayStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title(s.Label))
	if s.Progress == nil {
		fmt.Fprintf(out, "Intake: %s\n", render.Kcal(s.Calories))
		fmt.Fprintln(out, render.Muted("No profile yet. Run `kcal profile set` to get a daily target."))
	} else {
		p := s.Progress
		remaining := render.Card{Label: "Remaining", Value: render.Kcal(p.Remaining)}
		if p.OverTarget {
			remaining = render.Card{Label: "Over target", Value: render.Kcal(-p.Remaining)}
		}
		fmt.Fprintln(out, render.CardRow(
			render.Card{Label: "Consumed", Value: render.Kcal(p.Consumed)},
			render.Card{Label: "Target", Value: render.Kcal(p.Target)},
			remaining,
			render.Card{Label: "vs TDEE", Value: render.SignedKcal(p.DeltaVsTDEE), Hint: "TDEE " + render.Kcal(p.TDEE)},
		))
		fmt.Fprintln(out, render.ProgressBar(*p, 40))
	}
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", s.Macros.Protein, s.Macros.Carbs, s.Macros.Fat)
	if len(s.Entries) == 0 {
		fmt.Fprintln(out, "No entries logged.")
		return
	}
	fmt.Fprintln(out, "ID\tTIME\tLABEL\tKCAL")
	for _, e := range s.Entries {
		fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", e.ID, e.CreatedAt.Local().Format("15:04"), e.Label, e.Calories)
	}
}

var (
	historyDays int
	historyEnd  string
	historyJSON bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily totals for recent days, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		end := strings.TrimSpace(historyEnd)
		if end != "" && !daykey.Valid(end) {
			return fmt.Errorf("invalid --end %q (expected YYYY-MM-DD)", historyEnd)
		}
		return withDB(func(sqldb *sqlx.DB) error {
			days, err := service.History(sqldb, end, historyDays)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd.OutOrStdout(), days)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tDAY\tKCAL\tENTRIES\tREMAINING")
			for _, d := range days {
				remaining := "-"
				if d.Target > 0 {
					remaining = fmt.Sprintf("%d", d.Remaining)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%d\t%s\n", d.DayKey, d.Label, d.Calories, d.EntryCount, remaining)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, historyCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output as JSON")

	historyCmd.Flags().IntVar(&historyDays, "days", service.DefaultHistoryDays, "Number of days to show")
	historyCmd.Flags().StringVar(&historyEnd, "end", "", "Last day YYYY-MM-DD (default today)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}
