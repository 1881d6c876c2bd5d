package kcal

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/model"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage calorie entries",
}

var (
	entryLabel    string
	entryCalories int
	entryProtein  float64
	entryCarbs    float64
	entryFat      float64
	entryDate     string
	entryTime     string
	entryLike     string
)

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := parseDateTimeOrNow(entryDate, entryTime)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		return withDB(func(sqldb *sqlx.DB) error {
			in := service.EntryInput{
				CreatedAt: created,
				Label:     entryLabel,
				Calories:  entryCalories,
				Protein:   optionalFloat(flags.Changed("protein"), entryProtein),
				Carbs:     optionalFloat(flags.Changed("carbs"), entryCarbs),
				Fat:       optionalFloat(flags.Changed("fat"), entryFat),
			}
			if strings.TrimSpace(entryLike) != "" {
				matches, err := service.SearchEntries(sqldb, entryLike, 1)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("no logged entry matches %q", entryLike)
				}
				if !flags.Changed("label") {
					in.Label = matches[0].Label
				}
				if !flags.Changed("calories") {
					in.Calories = matches[0].LastCalories
				}
			} else if !flags.Changed("calories") {
				return fmt.Errorf("--calories is required")
			}
			id, err := service.CreateEntry(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d (%d kcal)\n", id, in.Calories)
			return nil
		})
	},
}

var (
	listDate  string
	listFrom  string
	listTo    string
	listLimit int
	listJSON  bool
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListEntriesFilter{
			Day:   listDate,
			From:  listFrom,
			To:    listTo,
			Limit: listLimit,
		}
		return withDB(func(sqldb *sqlx.DB) error {
			entries, err := service.ListEntries(sqldb, filter)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tLABEL\tKCAL\tP\tC\tF")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Label, e.Calories, fmtMacro(e.Protein), fmtMacro(e.Carbs), fmtMacro(e.Fat))
			}
			return nil
		})
	},
}

var entryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sqlx.DB) error {
			e, err := service.EntryByID(sqldb, id)
			if err != nil {
				return err
			}
			printEntry(cmd, e)
			return nil
		})
	},
}

var entryClearMacros bool

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an entry; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		return withDB(func(sqldb *sqlx.DB) error {
			e, err := service.EntryByID(sqldb, id)
			if err != nil {
				return err
			}
			in := service.EntryInput{
				CreatedAt: e.CreatedAt,
				Label:     e.Label,
				Calories:  e.Calories,
				Protein:   e.Protein,
				Carbs:     e.Carbs,
				Fat:       e.Fat,
			}
			if entryClearMacros {
				in.Protein, in.Carbs, in.Fat = nil, nil, nil
			}
			if flags.Changed("date") || flags.Changed("time") {
				date := entryDate
				if date == "" {
					date = e.DayKey
				}
				timeStr := entryTime
				if timeStr == "" {
					timeStr = e.CreatedAt.Local().Format("15:04")
				}
				if in.CreatedAt, err = parseDateTimeOrNow(date, timeStr); err != nil {
					return err
				}
			}
			if flags.Changed("label") {
				in.Label = entryLabel
			}
			if flags.Changed("calories") {
				in.Calories = entryCalories
			}
			if flags.Changed("protein") {
				in.Protein = optionalFloat(true, entryProtein)
			}
			if flags.Changed("carbs") {
				in.Carbs = optionalFloat(true, entryCarbs)
			}
			if flags.Changed("fat") {
				in.Fat = optionalFloat(true, entryFat)
			}
			if err := service.UpdateEntry(sqldb, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", id)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sqlx.DB) error {
			if err := service.DeleteEntry(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

var searchLimit int

var entrySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search previously logged labels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withDB(func(sqldb *sqlx.DB) error {
			matches, err := service.SearchEntries(sqldb, query, searchLimit)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No labels match %q\n", query)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "LABEL\tUSES\tLAST KCAL\tLAST LOGGED")
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%s\n", m.Label, m.Uses, m.LastCalories, m.LastLoggedAt.Local().Format("2006-01-02"))
			}
			return nil
		})
	},
}

func printEntry(cmd *cobra.Command, e model.Entry) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %d\n", e.ID)
	fmt.Fprintf(out, "Date: %s (day %s)\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.DayKey)
	fmt.Fprintf(out, "Label: %s\n", e.Label)
	fmt.Fprintf(out, "Calories: %d\n", e.Calories)
	fmt.Fprintf(out, "Protein: %s\nCarbs: %s\nFat: %s\n", fmtMacro(e.Protein), fmtMacro(e.Carbs), fmtMacro(e.Fat))
}

func addEntryFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entryLabel, "label", "", "Entry label (max 60 characters)")
	cmd.Flags().IntVar(&entryCalories, "calories", 0, "Calories")
	cmd.Flags().Float64Var(&entryProtein, "protein", 0, "Protein grams")
	cmd.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbs grams")
	cmd.Flags().Float64Var(&entryFat, "fat", 0, "Fat grams")
	cmd.Flags().StringVar(&entryDate, "date", "", "Date in YYYY-MM-DD")
	cmd.Flags().StringVar(&entryTime, "time", "", "Time in HH:MM")
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryShowCmd, entryUpdateCmd, entryDeleteCmd, entrySearchCmd)

	addEntryFields(entryAddCmd)
	entryAddCmd.Flags().StringVar(&entryLike, "like", "", "Reuse the label and calories of the best matching logged entry")

	addEntryFields(entryUpdateCmd)
	entryUpdateCmd.Flags().BoolVar(&entryClearMacros, "clear-macros", false, "Remove protein, carbs and fat before applying flags")

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Filter by day YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listFrom, "from", "", "Filter start day YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listTo, "to", "", "Filter end day YYYY-MM-DD")
	entryListCmd.Flags().IntVar(&listLimit, "limit", 50, "Max rows")
	entryListCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	entrySearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Max matches")
}
