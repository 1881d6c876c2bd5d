package kcal

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var (
	doctorFix  bool
	doctorJSON bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	Long: "Checks that every entry's day key matches its timestamp in the current time zone, " +
		"that stored values are non-negative and that the profile's BMR, TDEE and target are current.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Entries checked: %d\n", report.Entries)
				fmt.Fprintf(out, "Stale day keys: %d\n", report.StaleDayKeys)
				fmt.Fprintf(out, "Invalid timestamps: %d\n", report.InvalidTimestamps)
				fmt.Fprintf(out, "Negative values: %d\n", report.NegativeValues)
				fmt.Fprintf(out, "Profile stale: %t\n", report.ProfileStale)
				if verbose {
					for _, issue := range report.Issues {
						fmt.Fprintf(out, "  - %s\n", issue)
					}
				}
			}
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed day keys: %d | Fixed profile: %t\n", report.FixedDayKeys, report.FixedProfile)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rewrite stale day keys and derived profile fields")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}
