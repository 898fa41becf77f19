package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
	"github.com/example/gtdstore/internal/wire"
)

// StatusCmd returns the status command showing a workflow overview
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a workflow overview of the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			engine := wire.Engine()
			version, err := engine.CurrentVersion(ctx)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Printf("Store: %s (schema v%d)\n\n", wire.StorePath(), version)

			repo := wire.ItemRepository()
			statuses := []string{
				models.StatusInbox, models.StatusClarified, models.StatusOrganized,
				models.StatusReviewing, models.StatusComplete, models.StatusSomeday,
			}
			for _, status := range statuses {
				items, err := repo.List(ctx, secondary.ItemFilter{Status: status})
				if err != nil {
					return fmt.Errorf("failed to list items: %w", err)
				}
				fmt.Printf("%-10s %s\n", status, statusColor(status).Sprintf("%d", len(items)))
			}

			next, err := repo.ListNextActions(ctx)
			if err != nil {
				return fmt.Errorf("failed to list next actions: %w", err)
			}
			if len(next) > 0 {
				fmt.Println("\nNext actions:")
				for _, it := range next {
					fmt.Printf("  %s  %s\n", it.ID, it.Title)
				}
			}
			return nil
		},
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case models.StatusInbox:
		return color.New(color.FgYellow)
	case models.StatusOrganized:
		return color.New(color.FgCyan)
	case models.StatusComplete:
		return color.New(color.FgGreen)
	case models.StatusSomeday:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgWhite)
	}
}
