package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/wire"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the store's schema version",
	Long: `Apply or roll back schema migrations. Every step is bracketed by a
backup snapshot and integrity checks; a failed step restores the store
to its pre-step state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetInt("to")

		engine := wire.Engine()
		if target < 0 {
			target = engine.Latest()
		}

		ctx := context.Background()
		current, err := engine.CurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if current == target {
			fmt.Printf("Store already at schema version %d\n", current)
			return nil
		}

		version, err := engine.MigrateTo(ctx, target)
		if err != nil {
			return fmt.Errorf("migration failed (store restored to version %d): %w", version, err)
		}
		fmt.Printf("✓ Migrated from version %d to %d\n", current, version)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current and latest schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := wire.Engine()
		current, err := engine.CurrentVersion(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		fmt.Printf("Current version: %d\n", current)
		fmt.Printf("Latest version:  %d\n", engine.Latest())
		if current < engine.Latest() {
			fmt.Println("\nRun 'gtdstore migrate' to upgrade.")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Int("to", -1, "Target schema version (default: latest)")
	migrateCmd.AddCommand(migrateStatusCmd)
}

// MigrateCmd returns the migrate command tree
func MigrateCmd() *cobra.Command {
	return migrateCmd
}
