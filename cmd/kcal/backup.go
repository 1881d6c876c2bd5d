package kcal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/app"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore database snapshots",
}

var (
	backupOut    string
	backupDir    string
	backupJSON   bool
	restoreFile  string
	restoreForce bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the database with a sha256 sidecar",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := backupDirectory()
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(dir, service.DefaultBackupName(time.Now()))
		}
		return withDB(func(sqldb *sqlx.DB) error {
			info, err := service.CreateBackup(sqldb, out)
			if err != nil {
				return err
			}
			if backupJSON {
				return printJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%s)\n", info.Path, humanSize(info.SizeBytes))
			fmt.Fprintf(cmd.OutOrStdout(), "sha256 %s\n", info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := backupDirectory()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", dir)
			return nil
		}
		for _, it := range items {
			verified := "unverified"
			if len(it.Checksum) >= 12 {
				verified = it.Checksum[:12]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %8s  %s  %s\n",
				it.CreatedAt.Local().Format("2006-01-02 15:04"), humanSize(it.SizeBytes), verified, filepath.Base(it.Path))
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace the database with a snapshot",
	Long: "Restores a snapshot over the configured database. The snapshot's sha256 sidecar is checked when present. " +
		"With --force an existing database is first snapshotted next to the other backups.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := restoreFile
		if len(args) == 1 {
			file = args[0]
		}
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("a backup file is required (argument or --file)")
		}
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if restoreForce {
			if _, err := os.Stat(path); err == nil {
				safety := filepath.Join(app.BackupDir(path), "pre-restore-"+service.DefaultBackupName(time.Now()))
				err := withDB(func(sqldb *sqlx.DB) error {
					_, err := service.CreateBackup(sqldb, safety)
					return err
				})
				if err != nil {
					return fmt.Errorf("snapshot current database: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved current database to %s\n", safety)
			}
		}
		if err := service.RestoreBackup(file, path, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s\n", file, path)
		return nil
	},
}

func backupDirectory() (string, error) {
	if backupDir != "" {
		return backupDir, nil
	}
	path, err := resolveDBPath()
	if err != nil {
		return "", err
	}
	return app.BackupDir(path), nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	for _, c := range []*cobra.Command{backupCreateCmd, backupListCmd} {
		c.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ next to the database)")
		c.Flags().BoolVar(&backupJSON, "json", false, "Output as JSON")
	}
	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Snapshot file path (overrides --dir)")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Snapshot .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite an existing database")
}
