package kcal

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
	resetYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile and entries (json) or entries only (csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withDB(func(sqldb *sqlx.DB) error {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()

			switch strings.ToLower(strings.TrimSpace(exportFormat)) {
			case "json":
				data, err := service.ExportSnapshot(sqldb)
				if err != nil {
					return err
				}
				if err := printJSON(f, data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(data.Entries), exportOut)
			case "csv":
				n, err := service.WriteEntriesCSV(sqldb, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, exportOut)
			default:
				return fmt.Errorf("unsupported --format %q (use json or csv)", exportFormat)
			}
			if err := f.Sync(); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export",
	Long: "Imports a JSON document with an optional profile and an entries array. " +
		"Replace mode swaps out all entries; merge mode appends. Malformed entries are skipped with a warning. " +
		"A document without an entries field leaves existing entries untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		mode, err := service.ParseImportMode(importMode)
		if err != nil {
			return err
		}
		f, err := os.Open(importIn)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		data, err := service.DecodeExport(f)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sqlx.DB) error {
			report, err := service.ImportSnapshot(sqldb, data, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			logWarnings(cmd.ErrOrStderr(), report.Warnings)
			prefix := "Imported"
			if report.DryRun {
				prefix = "Dry-run:"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s inserted=%d replaced=%d skipped=%d profile=%t\n", prefix, report.Inserted, report.Replaced, report.Skipped, report.ProfileImported)
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the profile and all entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset deletes all data; rerun with --yes to confirm")
		}
		return withDB(func(sqldb *sqlx.DB) error {
			if err := service.ResetAll(sqldb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted profile and all entries")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input JSON file path")
	importCmd.Flags().StringVar(&importMode, "mode", string(service.ImportModeReplace), "Import mode: replace|merge")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing data")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm deleting all data")
}
