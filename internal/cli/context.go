package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
	"github.com/example/gtdstore/internal/wire"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage contexts (@computer, @office, ...)",
}

var contextCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		c := &models.Context{Name: args[0], Description: description}
		if err := wire.ContextRepository().Create(context.Background(), c); err != nil {
			return fmt.Errorf("failed to create context: %w", err)
		}
		fmt.Printf("✓ Created context %s: %s\n", c.ID, c.Name)
		return nil
	},
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, err := wire.ContextRepository().List(context.Background(), secondary.ContextFilter{})
		if err != nil {
			return fmt.Errorf("failed to list contexts: %w", err)
		}
		if len(contexts) == 0 {
			fmt.Println("No contexts found.")
			return nil
		}
		fmt.Printf("Found %d context(s):\n\n", len(contexts))
		for _, c := range contexts {
			line := fmt.Sprintf("  %s  %s", c.ID, c.Name)
			if c.Description != "" {
				line += fmt.Sprintf("  (%s)", c.Description)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a context (item links cascade)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.ContextRepository().Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete context: %w", err)
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	contextCreateCmd.Flags().StringP("description", "d", "", "Context description")

	contextCmd.AddCommand(contextCreateCmd)
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextDeleteCmd)
}

// ContextCmd returns the context command tree
func ContextCmd() *cobra.Command {
	return contextCmd
}
