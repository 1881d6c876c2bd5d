package kcal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/app"
	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/db"
)

var initWriteConfig bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local kcal database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized kcal database at %s\n", path)

		if initWriteConfig {
			cfgPath := configPath
			if cfgPath == "" {
				if cfgPath, err = app.DefaultConfigPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(cfgPath); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists at %s\n", cfgPath)
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat config file: %w", err)
			}
			cfg := config.Default()
			cfg.DBPath = path
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", cfgPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "Also write a default YAML config file")
}
