package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/db"
	"github.com/example/gtdstore/internal/wire"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage store backups and safety-net exports",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		handles, err := wire.Backups().List()
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(handles) == 0 {
			fmt.Println("No backups found.")
			return nil
		}

		fmt.Printf("Found %d backup(s):\n\n", len(handles))
		for _, h := range handles {
			fmt.Printf("  v%-3d %s  %s\n", h.Version, h.TakenAt.Format("2006-01-02 15:04:05"), h.Path)
		}
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Discard snapshots older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetInt("hours")

		if err := wire.Backups().Prune(time.Duration(hours) * time.Hour); err != nil {
			return fmt.Errorf("failed to prune backups: %w", err)
		}
		fmt.Printf("✓ Pruned backups older than %dh (most recent always kept)\n", hours)
		return nil
	},
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON safety-net export of every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(wire.StorePath())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer database.Close()

		path, err := wire.Backups().ExportSafetyNet(database)
		if err != nil {
			return fmt.Errorf("failed to export store: %w", err)
		}
		fmt.Printf("✓ Exported store to %s\n", path)
		return nil
	},
}

func init() {
	backupPruneCmd.Flags().Int("hours", 168, "Retention window in hours")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPruneCmd)
	backupCmd.AddCommand(backupExportCmd)
}

// BackupCmd returns the backup command tree
func BackupCmd() *cobra.Command {
	return backupCmd
}
