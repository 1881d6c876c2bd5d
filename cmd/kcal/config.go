package kcal

import (
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage analytics preferences stored in the database",
	Long: "Preferences: " + fmt.Sprint(config.PreferenceKeys) + ". " +
		"Stored values override the YAML config file; KCAL_* environment variables and flags override both.",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			value, ok, err := service.GetConfig(sqldb, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			if err := service.UnsetConfig(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		})
	},
}

var configEffective bool

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			if configEffective {
				cfg, err := loadSettings(sqldb)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, stored[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configUnsetCmd, configListCmd)
	configListCmd.Flags().BoolVar(&configEffective, "effective", false, "Show the fully resolved settings as JSON")
}
