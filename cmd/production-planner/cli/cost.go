package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundryworks/production-planner/pkg/planner"
)

func newCostCommand() *cobra.Command {
	var recipeID int32

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Print a recipe's Cost Analysis figures",
		Long: `Look up a recipe by catalog id and print its solved cost,
product cost, and waste percentage.

Example:
  production-planner cost --recipe 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, analysis, _, err := loadEngine(ctx)
			if err != nil {
				return err
			}

			id := planner.ID(recipeID)
			if int(id) < 0 || int(id) >= len(cat.Recipes) {
				return fmt.Errorf("unknown recipe id %d", recipeID)
			}
			recipe := cat.RecipeByID(id)

			fmt.Printf("%s\n", recipe.Name)
			fmt.Printf("  cost:             %s\n", planner.DisplayCost(analysis.RecipeCost(id)))
			fmt.Printf("  product cost:     %s\n", planner.DisplayCost(analysis.RecipeProductCost(id)))
			fmt.Printf("  waste:            %.1f%%\n", analysis.RecipeWastePercentage(id)*100)
			return nil
		},
	}

	cmd.Flags().Int32Var(&recipeID, "recipe", -1, "Recipe catalog id")
	return cmd
}
