package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/db"
	"github.com/example/gtdstore/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the gtdstore database",
		Long: `Initialize the gtdstore database at ~/.gtdstore/gtdstore.db and
migrate it to the latest schema version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath := wire.StorePath()
			fmt.Printf("Initializing gtdstore database at %s\n", storePath)

			engine := wire.Engine()
			version, err := engine.MigrateTo(context.Background(), engine.Latest())
			if err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Printf("✓ Database initialized at schema version %d\n", version)

			if seed {
				database, err := db.Open(storePath)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer database.Close()
				if err := db.SeedFixtures(database); err != nil {
					return fmt.Errorf("failed to seed fixtures: %w", err)
				}
				fmt.Println("✓ Development fixtures seeded")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  gtdstore item capture \"My first task\"")
			fmt.Println("  gtdstore status")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Seed development fixtures")
	return cmd
}
