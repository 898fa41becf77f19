package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
	"github.com/example/gtdstore/internal/wire"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage tracked items (actions and projects)",
	Long:  "Capture, clarify, organize, and complete items in the gtdstore workflow",
}

var itemCaptureCmd = &cobra.Command{
	Use:   "capture [title]",
	Short: "Capture a new item into the inbox",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := strings.Join(args, " ")
		description, _ := cmd.Flags().GetString("description")
		isProject, _ := cmd.Flags().GetBool("project")
		parent, _ := cmd.Flags().GetString("parent")
		criteria, _ := cmd.Flags().GetString("criteria")
		energy, _ := cmd.Flags().GetInt("energy")
		due, _ := cmd.Flags().GetString("due")

		it := &models.Item{
			Title:           title,
			Description:     description,
			Type:            models.ItemTypeAction,
			ProjectID:       parent,
			SuccessCriteria: criteria,
		}
		if isProject {
			it.Type = models.ItemTypeProject
		}
		if energy > 0 {
			it.EnergyLevel = &energy
		}
		if due != "" {
			dueDate, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid due date %q (want YYYY-MM-DD): %w", due, err)
			}
			it.DueDate = &dueDate
		}

		if err := wire.ItemRepository().Create(ctx, it); err != nil {
			return fmt.Errorf("failed to capture item: %w", err)
		}

		fmt.Printf("✓ Captured %s %s: %s\n", it.Type, it.ID, it.Title)
		if it.ProjectID != "" {
			fmt.Printf("  Under project: %s\n", it.ProjectID)
		}
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		status, _ := cmd.Flags().GetString("status")
		itemType, _ := cmd.Flags().GetString("type")
		parent, _ := cmd.Flags().GetString("parent")
		contextName, _ := cmd.Flags().GetString("context")

		filter := secondary.ItemFilter{Status: status, Type: itemType, ProjectID: parent}
		if contextName != "" {
			c, err := wire.ContextRepository().FindByName(ctx, contextName)
			if err != nil {
				return fmt.Errorf("failed to resolve context: %w", err)
			}
			filter.ContextID = c.ID
		}

		items, err := wire.ItemRepository().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		printItems(items)
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		it, err := wire.ItemRepository().Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}

		fmt.Printf("%s  %s\n", it.ID, color.New(color.Bold).Sprint(it.Title))
		fmt.Printf("  Type:    %s\n", it.Type)
		fmt.Printf("  Status:  %s\n", statusColor(it.Status).Sprint(it.Status))
		if it.Description != "" {
			fmt.Printf("  Notes:   %s\n", it.Description)
		}
		if it.ProjectID != "" {
			fmt.Printf("  Project: %s\n", it.ProjectID)
		}
		if it.EnergyLevel != nil {
			fmt.Printf("  Energy:  %d\n", *it.EnergyLevel)
		}
		if it.DueDate != nil {
			fmt.Printf("  Due:     %s\n", it.DueDate.Format("2006-01-02"))
		}
		if it.SuccessCriteria != "" {
			fmt.Printf("  Done when: %s\n", it.SuccessCriteria)
		}
		if it.CompletedAt != nil {
			fmt.Printf("  Completed: %s\n", it.CompletedAt.Format("2006-01-02 15:04"))
		}

		assignments, err := wire.AssignmentRepository().ListByItem(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		if len(assignments) > 0 {
			fmt.Println("  RACI:")
			for _, a := range assignments {
				fmt.Printf("    %-12s %s\n", a.Role, a.StakeholderID)
			}
		}
		return nil
	},
}

// transitionCommands maps one subcommand per lifecycle move.
var transitionCommands = []struct {
	use    string
	short  string
	target string
}{
	{"clarify [id]", "Mark an item as clarified", models.StatusClarified},
	{"organize [id]", "Mark an item as organized (actions need a context)", models.StatusOrganized},
	{"review [id]", "Move an organized item into review", models.StatusReviewing},
	{"complete [id]", "Complete an item", models.StatusComplete},
	{"someday [id]", "Shelve an item for someday/maybe", models.StatusSomeday},
	{"reopen [id]", "Re-open a complete item back to organized", models.StatusOrganized},
}

func newTransitionCmd(use, short, target string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := wire.ItemRepository().ChangeStatus(context.Background(), args[0], target)
			if err != nil {
				return fmt.Errorf("failed to change status: %w", err)
			}
			fmt.Printf("✓ %s is now %s\n", it.ID, it.Status)
			return nil
		},
	}
}

var itemUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update an item's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo := wire.ItemRepository()

		it, err := repo.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}

		if title, _ := cmd.Flags().GetString("title"); title != "" {
			it.Title = title
		}
		if description, _ := cmd.Flags().GetString("description"); description != "" {
			it.Description = description
		}
		if criteria, _ := cmd.Flags().GetString("criteria"); criteria != "" {
			it.SuccessCriteria = criteria
		}
		if parent, _ := cmd.Flags().GetString("parent"); parent != "" {
			it.ProjectID = parent
		}
		if energy, _ := cmd.Flags().GetString("energy"); energy != "" {
			level, err := strconv.Atoi(energy)
			if err != nil {
				return fmt.Errorf("invalid energy level %q: %w", energy, err)
			}
			it.EnergyLevel = &level
		}
		if due, _ := cmd.Flags().GetString("due"); due != "" {
			dueDate, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid due date %q (want YYYY-MM-DD): %w", due, err)
			}
			it.DueDate = &dueDate
		}

		if err := repo.Update(ctx, it); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		fmt.Printf("✓ Updated %s\n", it.ID)
		return nil
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.ItemRepository().Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

var itemLinkCmd = &cobra.Command{
	Use:   "link [id] [context]",
	Short: "Link an action to a context (by name or ID)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		contextID, err := resolveContextID(ctx, args[1])
		if err != nil {
			return err
		}

		if err := wire.ItemRepository().LinkContext(ctx, args[0], contextID); err != nil {
			return fmt.Errorf("failed to link context: %w", err)
		}
		fmt.Printf("✓ Linked %s to %s\n", args[0], args[1])
		return nil
	},
}

var itemUnlinkCmd = &cobra.Command{
	Use:   "unlink [id] [context]",
	Short: "Unlink a context from an action",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		contextID, err := resolveContextID(ctx, args[1])
		if err != nil {
			return err
		}

		if err := wire.ItemRepository().UnlinkContext(ctx, args[0], contextID); err != nil {
			return fmt.Errorf("failed to unlink context: %w", err)
		}
		fmt.Printf("✓ Unlinked %s from %s\n", args[0], args[1])
		return nil
	},
}

var itemNextCmd = &cobra.Command{
	Use:   "next",
	Short: "List next actions (organized actions ready to work)",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := wire.ItemRepository().ListNextActions(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list next actions: %w", err)
		}
		printItems(items)
		return nil
	},
}

var itemEnergyCmd = &cobra.Command{
	Use:   "energy [min] [max]",
	Short: "List active actions within an energy range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		min, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid minimum %q: %w", args[0], err)
		}
		max, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid maximum %q: %w", args[1], err)
		}

		items, err := wire.ItemRepository().ListByEnergy(context.Background(), min, max)
		if err != nil {
			return fmt.Errorf("failed to list by energy: %w", err)
		}
		printItems(items)
		return nil
	},
}

var itemOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List incomplete actions past their due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := wire.ItemRepository().ListOverdue(context.Background(), time.Now())
		if err != nil {
			return fmt.Errorf("failed to list overdue items: %w", err)
		}
		printItems(items)
		return nil
	},
}

// resolveContextID accepts either a context ID or an @name.
func resolveContextID(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "@") {
		return ref, nil
	}
	c, err := wire.ContextRepository().FindByName(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to resolve context: %w", err)
	}
	return c.ID, nil
}

func printItems(items []*models.Item) {
	if len(items) == 0 {
		fmt.Println("No items found.")
		return
	}
	fmt.Printf("Found %d item(s):\n\n", len(items))
	for _, it := range items {
		marker := ""
		if it.IsProject() {
			marker = color.New(color.FgHiBlue).Sprint(" [project]")
		}
		fmt.Printf("  %s  %-10s %s%s\n", it.ID, statusColor(it.Status).Sprint(it.Status), it.Title, marker)
	}
}

func init() {
	itemCaptureCmd.Flags().StringP("description", "d", "", "Item description")
	itemCaptureCmd.Flags().Bool("project", false, "Capture as a project instead of an action")
	itemCaptureCmd.Flags().String("parent", "", "Parent project ID")
	itemCaptureCmd.Flags().String("criteria", "", "Success criteria (projects only)")
	itemCaptureCmd.Flags().Int("energy", 0, "Energy level 1-5 (actions only)")
	itemCaptureCmd.Flags().String("due", "", "Due date YYYY-MM-DD (actions only)")

	itemListCmd.Flags().StringP("status", "s", "", "Filter by status")
	itemListCmd.Flags().StringP("type", "t", "", "Filter by type (action, project)")
	itemListCmd.Flags().String("parent", "", "Filter by parent project")
	itemListCmd.Flags().String("context", "", "Filter by context name")

	itemUpdateCmd.Flags().String("title", "", "New title")
	itemUpdateCmd.Flags().StringP("description", "d", "", "New description")
	itemUpdateCmd.Flags().String("criteria", "", "New success criteria")
	itemUpdateCmd.Flags().String("parent", "", "New parent project")
	itemUpdateCmd.Flags().String("energy", "", "New energy level 1-5")
	itemUpdateCmd.Flags().String("due", "", "New due date YYYY-MM-DD")

	itemCmd.AddCommand(itemCaptureCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemUpdateCmd)
	itemCmd.AddCommand(itemDeleteCmd)
	itemCmd.AddCommand(itemLinkCmd)
	itemCmd.AddCommand(itemUnlinkCmd)
	itemCmd.AddCommand(itemNextCmd)
	itemCmd.AddCommand(itemEnergyCmd)
	itemCmd.AddCommand(itemOverdueCmd)
	for _, tc := range transitionCommands {
		itemCmd.AddCommand(newTransitionCmd(tc.use, tc.short, tc.target))
	}
}

// ItemCmd returns the item command tree
func ItemCmd() *cobra.Command {
	return itemCmd
}
