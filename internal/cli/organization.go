package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
	"github.com/example/gtdstore/internal/wire"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new organization",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orgType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")

		o := &models.Organization{
			Name:        strings.Join(args, " "),
			Type:        orgType,
			Description: description,
		}
		if err := wire.OrganizationRepository().Create(context.Background(), o); err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}
		fmt.Printf("✓ Created organization %s: %s (%s)\n", o.ID, o.Name, o.Type)
		return nil
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgType, _ := cmd.Flags().GetString("type")

		orgs, err := wire.OrganizationRepository().List(context.Background(),
			secondary.OrganizationFilter{Type: orgType})
		if err != nil {
			return fmt.Errorf("failed to list organizations: %w", err)
		}
		if len(orgs) == 0 {
			fmt.Println("No organizations found.")
			return nil
		}
		fmt.Printf("Found %d organization(s):\n\n", len(orgs))
		for _, o := range orgs {
			fmt.Printf("  %s  %-10s %s\n", o.ID, o.Type, o.Name)
		}
		return nil
	},
}

func init() {
	orgCreateCmd.Flags().StringP("type", "t", models.OrgTypeInternal, "Organization type (internal, customer, partner, other)")
	orgCreateCmd.Flags().StringP("description", "d", "", "Organization description")

	orgListCmd.Flags().StringP("type", "t", "", "Filter by type")

	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgListCmd)
}

// OrgCmd returns the organization command tree
func OrgCmd() *cobra.Command {
	return orgCmd
}
