// Package cli implements the production-planner command-line
// interface, grounded on acdtunes-spacetraders's
// internal/adapters/cli: one cobra.Command constructor per
// subcommand, wired together by a root command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand builds the top-level "production-planner" command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "production-planner",
		Short: "Production Table Solver and Cost Analysis engine",
		Long: `production-planner imports a mod pack's static recipe data,
solves production tables against it, and serves the same engines over
a stdio JSON-RPC tool protocol.

Examples:
  production-planner import --pack data/modpack.json
  production-planner solve --table table.json
  production-planner cost --recipe 42
  production-planner serve
  production-planner config show`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Directory containing config.yaml")

	root.AddCommand(newImportCommand())
	root.AddCommand(newSolveCommand())
	root.AddCommand(newCostCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newConfigCommand())

	return root
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
