package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/gtdstore/internal/cli"
	"github.com/example/gtdstore/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "gtdstore",
		Short:   "gtdstore - local task tracking with a versioned store",
		Version: version.String(),
		Long: `gtdstore is a CLI for a local GTD-style task datastore.
It tracks actions, projects, contexts, and stakeholder accountability,
backed by a SQLite store with versioned, reversible schema migrations.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.BackupCmd())
	rootCmd.AddCommand(cli.ItemCmd())
	rootCmd.AddCommand(cli.ContextCmd())
	rootCmd.AddCommand(cli.StakeholderCmd())
	rootCmd.AddCommand(cli.OrgCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
