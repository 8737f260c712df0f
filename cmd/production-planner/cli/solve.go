package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foundryworks/production-planner/internal/planner/flow"
	"github.com/foundryworks/production-planner/internal/planner/server"
	"github.com/foundryworks/production-planner/internal/planner/solve"
	"github.com/foundryworks/production-planner/pkg/planner"
)

func newSolveCommand() *cobra.Command {
	var tablePath string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a flat production table and print each row's rate",
		Long: `Read a JSON document shaped like the "solve_table" tool's
request (rows + links) and run the Production Table Solver against it,
printing each row's recipes-per-second and the table's aggregated
flow.

Example:
  production-planner solve --table table.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tablePath == "" {
				return fmt.Errorf("--table is required")
			}

			ctx := cmd.Context()
			cat, analysis, cfg, err := loadEngine(ctx)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(tablePath)
			if err != nil {
				return fmt.Errorf("reading table: %w", err)
			}
			var req server.SolveTableRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsing table: %w", err)
			}

			arena := server.BuildArena(&req)
			result, err := solve.Solve(solve.Context{
				DB:     cat,
				Params: paramsContext(cfg, cat),
				Cost:   analysis,
			}, arena, 0)
			if err != nil {
				return fmt.Errorf("solving table: %w", err)
			}

			if !result.OK {
				fmt.Printf("solve failed: %s\n", result.Message)
				return nil
			}
			if result.Message != "" {
				fmt.Printf("warning: %s\n", result.Message)
			}

			for _, rowIdx := range arena.Tables[0].Rows {
				row := &arena.Rows[rowIdx]
				recipe := cat.RecipeByID(row.Recipe)
				fmt.Printf("%-30s %s/s  (%s buildings)\n",
					recipe.Name,
					planner.DisplayAmount(row.RecipesPerSecond),
					planner.DisplayBuildingCount(row.BuiltBuildings))
			}

			fmt.Println("\nflow:")
			for _, e := range flow.Aggregate(cat, arena, 0) {
				goods := cat.GoodsByID(e.Goods)
				fmt.Printf("  %-30s %s/s\n", goods.Name, planner.DisplayAmount(e.Amount))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "Path to the solve_table-shaped JSON document")
	return cmd
}
