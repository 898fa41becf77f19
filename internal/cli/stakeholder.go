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

var stakeholderCmd = &cobra.Command{
	Use:   "stakeholder",
	Short: "Manage stakeholders and their RACI assignments",
}

var stakeholderCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new stakeholder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contact, _ := cmd.Flags().GetString("contact")
		orgID, _ := cmd.Flags().GetString("org")

		s := &models.Stakeholder{
			Name:           strings.Join(args, " "),
			Contact:        contact,
			OrganizationID: orgID,
		}
		if err := wire.StakeholderRepository().Create(context.Background(), s); err != nil {
			return fmt.Errorf("failed to create stakeholder: %w", err)
		}
		fmt.Printf("✓ Created stakeholder %s: %s\n", s.ID, s.Name)
		return nil
	},
}

var stakeholderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stakeholders",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID, _ := cmd.Flags().GetString("org")

		stakeholders, err := wire.StakeholderRepository().List(context.Background(),
			secondary.StakeholderFilter{OrganizationID: orgID})
		if err != nil {
			return fmt.Errorf("failed to list stakeholders: %w", err)
		}
		if len(stakeholders) == 0 {
			fmt.Println("No stakeholders found.")
			return nil
		}
		fmt.Printf("Found %d stakeholder(s):\n\n", len(stakeholders))
		for _, s := range stakeholders {
			line := fmt.Sprintf("  %s  %s <%s>", s.ID, s.Name, s.Contact)
			if s.OrganizationID != "" {
				line += fmt.Sprintf("  [%s]", s.OrganizationID)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var stakeholderAssignCmd = &cobra.Command{
	Use:   "assign [stakeholder-id] [item-id] [role]",
	Short: "Assign a RACI role on an item",
	Long: `Assign a stakeholder to an item with one of the RACI roles:
responsible, accountable, consulted, informed.
An item holds at most one accountable stakeholder.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		stakeholderID, itemID, role := args[0], args[1], args[2]
		if err := wire.AssignmentRepository().Assign(context.Background(), itemID, stakeholderID, role); err != nil {
			return fmt.Errorf("failed to assign: %w", err)
		}
		fmt.Printf("✓ %s is now %s on %s\n", stakeholderID, role, itemID)
		return nil
	},
}

var stakeholderUnassignCmd = &cobra.Command{
	Use:   "unassign [stakeholder-id] [item-id] [role]",
	Short: "Remove a RACI role from an item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		stakeholderID, itemID, role := args[0], args[1], args[2]
		if err := wire.AssignmentRepository().Remove(context.Background(), itemID, stakeholderID, role); err != nil {
			return fmt.Errorf("failed to unassign: %w", err)
		}
		fmt.Printf("✓ Removed %s as %s on %s\n", stakeholderID, role, itemID)
		return nil
	},
}

func init() {
	stakeholderCreateCmd.Flags().StringP("contact", "c", "", "Contact (email or handle)")
	stakeholderCreateCmd.Flags().String("org", "", "Organization ID")

	stakeholderListCmd.Flags().String("org", "", "Filter by organization")

	stakeholderCmd.AddCommand(stakeholderCreateCmd)
	stakeholderCmd.AddCommand(stakeholderListCmd)
	stakeholderCmd.AddCommand(stakeholderAssignCmd)
	stakeholderCmd.AddCommand(stakeholderUnassignCmd)
}

// StakeholderCmd returns the stakeholder command tree
func StakeholderCmd() *cobra.Command {
	return stakeholderCmd
}
