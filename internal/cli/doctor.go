package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/db"
	"github.com/example/gtdstore/internal/migrate"
	"github.com/example/gtdstore/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for store health checks
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the store's health and invariants",
		Long: `Health check for the gtdstore database.

Validates:
- Store file existence
- Schema version against the latest published catalog version
- Foreign key integrity and domain invariants (bounded energy,
  single accountable, unique context names, bounded nesting)

Examples:
  gtdstore doctor          # Run full health check
  gtdstore doctor --quiet  # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkStoreFile(),
				checkSchemaVersion(),
				checkInvariants(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s:\n%s\n\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("⚠ Issues found.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("store validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Exit code only, no output")
	return cmd
}

func checkStoreFile() CheckResult {
	result := CheckResult{Name: "Store file"}
	if _, err := os.Stat(wire.StorePath()); err != nil {
		result.Status = "✗"
		result.Details = fmt.Sprintf("store not found at %s; run 'gtdstore init'", wire.StorePath())
		return result
	}
	result.Status = "✓"
	return result
}

func checkSchemaVersion() CheckResult {
	result := CheckResult{Name: "Schema version"}
	engine := wire.Engine()
	current, err := engine.CurrentVersion(context.Background())
	if err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	if current < engine.Latest() {
		result.Status = "⚠"
		result.Details = fmt.Sprintf("store at v%d, latest is v%d; run 'gtdstore migrate'", current, engine.Latest())
		return result
	}
	result.Status = "✓"
	return result
}

func checkInvariants() CheckResult {
	result := CheckResult{Name: "Invariants"}
	database, err := db.Open(wire.StorePath())
	if err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	defer database.Close()

	violations, err := migrate.NewValidator().VerifyPostconditions(database)
	if err != nil {
		result.Status = "✗"
		result.Details = err.Error()
		return result
	}
	if len(violations) > 0 {
		result.Status = "✗"
		for _, v := range violations {
			result.Details += fmt.Sprintf("  %s\n", v)
		}
		return result
	}
	result.Status = "✓"
	return result
}
