package kcal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/render"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "View weekly, monthly, range and trailing analytics",
	Long: "Reports daily totals, a rolling average, adherence to the daily target and the deficit summary. " +
		"Without a subcommand the configured window mode decides the range.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, service.RangeRequest{})
	},
}

var (
	analyticsJSON          bool
	analyticsChart         bool
	analyticsToleranceMode string
	analyticsTolerance     float64
	analyticsWindow        int
)

var weekArg string

var analyticsWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Analytics for an ISO week (default: this week)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, service.RangeRequest{Kind: service.RangeWeek, Week: weekArg})
	},
}

var monthArg string

var analyticsMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Analytics for a calendar month (default: this month)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, service.RangeRequest{Kind: service.RangeMonth, Month: monthArg})
	},
}

var (
	rangeFrom string
	rangeTo   string
)

var analyticsRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Analytics for a custom range of days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rangeFrom == "" || rangeTo == "" {
			return fmt.Errorf("--from and --to are required")
		}
		return runAnalytics(cmd, service.RangeRequest{Kind: service.RangeCustom, From: rangeFrom, To: rangeTo})
	},
}

var trailingDays int

var analyticsTrailingCmd = &cobra.Command{
	Use:   "trailing",
	Short: "Analytics for the last N days ending today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, service.RangeRequest{Kind: service.RangeTrailing, Days: trailingDays})
	},
}

var analyticsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Analytics from the first logged day to today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, service.RangeRequest{Kind: service.RangeAll})
	},
}

func runAnalytics(cmd *cobra.Command, req service.RangeRequest) error {
	return withDB(func(sqldb *sqlx.DB) error {
		report, err := buildReport(cmd, sqldb, req)
		if err != nil {
			return err
		}
		if analyticsJSON {
			return printJSON(cmd.OutOrStdout(), report)
		}
		printAnalytics(cmd, report, analyticsChart)
		return nil
	})
}

func buildReport(cmd *cobra.Command, sqldb *sqlx.DB, req service.RangeRequest) (*service.AnalyticsReport, error) {
	cfg, err := loadSettings(sqldb)
	if err != nil {
		return nil, err
	}
	settings := cfg.Analytics
	if err := applyAnalyticsFlags(cmd, &settings); err != nil {
		return nil, err
	}
	return service.BuildAnalyticsReport(sqldb, req, settings)
}

// applyAnalyticsFlags is the last layer of settings resolution. Flags that
// are not registered on cmd are skipped.
func applyAnalyticsFlags(cmd *cobra.Command, settings *config.Analytics) error {
	flags := cmd.Flags()
	if f := flags.Lookup("tolerance-mode"); f != nil && f.Changed {
		if err := settings.Set(config.KeyToleranceMode, analyticsToleranceMode); err != nil {
			return err
		}
	}
	if f := flags.Lookup("tolerance"); f != nil && f.Changed {
		if err := settings.Set(config.KeyToleranceValue, strconv.FormatFloat(analyticsTolerance, 'f', -1, 64)); err != nil {
			return err
		}
	}
	if f := flags.Lookup("window"); f != nil && f.Changed {
		if err := settings.Set(config.KeyRollingWindow, strconv.Itoa(analyticsWindow)); err != nil {
			return err
		}
	}
	return settings.Validate()
}

func printAnalytics(cmd *cobra.Command, r *service.AnalyticsReport, chart bool) {
	out := cmd.OutOrStdout()
	printRange(cmd, r.Range)

	s := r.Stats
	if s.TrackedDays == 0 {
		fmt.Fprintln(out, "No entries logged in this range.")
	}
	adherence := render.Card{Label: "Adherence", Value: "-", Hint: "needs a profile"}
	if r.HasProfile {
		adherence = render.Card{
			Label: "Adherence",
			Value: fmt.Sprintf("%d/%d days (%.0f%%)", s.AdherenceCount, s.TrackedDays, s.AdherencePct),
			Hint:  s.Tolerance.String() + " of " + render.Kcal(r.Target),
		}
	}
	fmt.Fprintln(out, render.CardRow(
		render.Card{Label: "Tracked days", Value: fmt.Sprintf("%d of %d", s.TrackedDays, r.Range.Days)},
		render.Card{Label: "Average", Value: render.Kcal(int(math.Round(s.Average))), Hint: "per tracked day"},
		render.Card{Label: "Total", Value: render.Kcal(s.TotalCalories)},
		adherence,
	))
	if s.Highest != nil {
		fmt.Fprintf(out, "Highest day: %s (%s)\n", s.Highest.DayKey, render.Kcal(s.Highest.Calories))
	}
	if s.Best != nil {
		fmt.Fprintf(out, "Closest to target: %s (%s)\n", s.Best.DayKey, render.Kcal(s.Best.Calories))
	}
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", r.Macros.Protein, r.Macros.Carbs, r.Macros.Fat)

	fmt.Fprintf(out, "\nDaily totals (%d-day rolling average)\n", r.Settings.RollingWindow)
	fmt.Fprintln(out, "DATE\tDAY\tKCAL\tAVG")
	for _, p := range r.Rolling {
		kcal := "-"
		if p.HasEntries {
			kcal = strconv.Itoa(p.Calories)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%d\n", p.DayKey, p.Label, kcal, p.Average)
	}
	if chart {
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.CaloriesChart(r.Rolling, r.Target))
	}

	fmt.Fprintln(out)
	printDeficit(cmd, r, chart)
}

var rangeTitles = map[service.RangeKind]string{
	service.RangeWeek:     "Week",
	service.RangeMonth:    "Month",
	service.RangeCustom:   "Range",
	service.RangeTrailing: "Trailing",
	service.RangeAll:      "All time",
}

func printRange(cmd *cobra.Command, rng service.ResolvedRange) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title(fmt.Sprintf("%s: %s to %s (%d days)", rangeTitles[rng.Kind], rng.Start, rng.End, rng.Days)))
	if rng.Clamped {
		fmt.Fprintln(out, render.Muted(fmt.Sprintf("Start moved from %s to the first logged day.", rng.RequestedStart)))
	}
}

func printDeficit(cmd *cobra.Command, r *service.AnalyticsReport, chart bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title("Deficit"))
	if !r.HasProfile {
		fmt.Fprintln(out, "No profile yet. Run `kcal profile set` to track your deficit.")
		return
	}
	d := r.Deficit
	if d.TrackedDays == 0 {
		fmt.Fprintln(out, "No tracked days in this range.")
		return
	}
	cards := []render.Card{
		{Label: "Total deficit", Value: render.SignedKcal(d.TotalDeficit), Hint: fmt.Sprintf("%d tracked days", d.TrackedDays)},
		{Label: "Daily average", Value: render.SignedKcal(int(math.Round(d.AverageDailyDeficit)))},
		{Label: "Est. mass change", Value: fmt.Sprintf("%.2f kg", d.EstimatedMassChangeKg), Hint: fmt.Sprintf("at %.0f kcal/kg", d.Config.KcalPerKg)},
	}
	if d.Config.GoalKg > 0 {
		cards = append(cards, render.Card{Label: "Goal progress", Value: fmt.Sprintf("%.0f%%", d.GoalProgress*100), Hint: fmt.Sprintf("of %.1f kg", d.Config.GoalKg)})
	}
	fmt.Fprintln(out, render.CardRow(cards...))
	if chart {
		fmt.Fprintln(out, render.DeficitChart(d.Points))
	}
}

var (
	deficitWeek  string
	deficitMonth string
	deficitFrom  string
	deficitTo    string
	deficitDays  int
	deficitAll   bool
)

var deficitCmd = &cobra.Command{
	Use:   "deficit",
	Short: "Show the cumulative deficit or surplus against your target",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := deficitRangeRequest()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sqlx.DB) error {
			report, err := buildReport(cmd, sqldb, req)
			if err != nil {
				return err
			}
			if analyticsJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"range":      report.Range,
					"hasProfile": report.HasProfile,
					"target":     report.Target,
					"deficit":    report.Deficit,
				})
			}
			printRange(cmd, report.Range)
			printDeficit(cmd, report, analyticsChart)
			return nil
		})
	},
}

func deficitRangeRequest() (service.RangeRequest, error) {
	var req service.RangeRequest
	selected := 0
	if deficitAll {
		req.Kind = service.RangeAll
		selected++
	}
	if deficitWeek != "" {
		req.Kind, req.Week = service.RangeWeek, deficitWeek
		selected++
	}
	if deficitMonth != "" {
		req.Kind, req.Month = service.RangeMonth, deficitMonth
		selected++
	}
	if deficitFrom != "" || deficitTo != "" {
		if deficitFrom == "" || deficitTo == "" {
			return req, fmt.Errorf("--from and --to must be used together")
		}
		req.Kind, req.From, req.To = service.RangeCustom, deficitFrom, deficitTo
		selected++
	}
	if deficitDays > 0 {
		req.Kind, req.Days = service.RangeTrailing, deficitDays
		selected++
	}
	if selected > 1 {
		return service.RangeRequest{}, fmt.Errorf("use only one of --all, --week, --month, --from/--to or --days")
	}
	return req, nil
}

func addReportFlags(c *cobra.Command) {
	c.Flags().BoolVar(&analyticsJSON, "json", false, "Output as JSON")
	c.Flags().BoolVar(&analyticsChart, "chart", false, "Draw ASCII charts")
	c.Flags().StringVar(&analyticsToleranceMode, "tolerance-mode", "", "Adherence tolerance mode: absolute|relative")
	c.Flags().Float64Var(&analyticsTolerance, "tolerance", 0, "Adherence tolerance (kcal when absolute, 0.10 = 10% when relative)")
	c.Flags().IntVar(&analyticsWindow, "window", 0, "Rolling average window in days")
}

func init() {
	rootCmd.AddCommand(analyticsCmd, deficitCmd)
	analyticsCmd.AddCommand(analyticsWeekCmd, analyticsMonthCmd, analyticsRangeCmd, analyticsTrailingCmd, analyticsAllCmd)

	for _, c := range []*cobra.Command{analyticsCmd, analyticsWeekCmd, analyticsMonthCmd, analyticsRangeCmd, analyticsTrailingCmd, analyticsAllCmd, deficitCmd} {
		addReportFlags(c)
	}
	analyticsWeekCmd.Flags().StringVar(&weekArg, "week", "", "ISO week in format YYYY-Www")
	analyticsMonthCmd.Flags().StringVar(&monthArg, "month", "", "Month in format YYYY-MM")
	analyticsRangeCmd.Flags().StringVar(&rangeFrom, "from", "", "Start date YYYY-MM-DD")
	analyticsRangeCmd.Flags().StringVar(&rangeTo, "to", "", "End date YYYY-MM-DD")
	analyticsTrailingCmd.Flags().IntVar(&trailingDays, "days", 0, "Number of days (default: trailing_days setting)")

	deficitCmd.Flags().StringVar(&deficitWeek, "week", "", "ISO week in format YYYY-Www")
	deficitCmd.Flags().StringVar(&deficitMonth, "month", "", "Month in format YYYY-MM")
	deficitCmd.Flags().StringVar(&deficitFrom, "from", "", "Start date YYYY-MM-DD")
	deficitCmd.Flags().StringVar(&deficitTo, "to", "", "End date YYYY-MM-DD")
	deficitCmd.Flags().IntVar(&deficitDays, "days", 0, "Last N days ending today")
	deficitCmd.Flags().BoolVar(&deficitAll, "all", false, "From the first logged day to today")
}
