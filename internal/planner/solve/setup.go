// Package solve implements the Production Table Solver (spec.md
// §4.3): it turns one ProductionTable (and every enabled table nested
// under it) into an LP via internal/planner/lp, solves it, diagnoses
// infeasibility when the solve fails, and writes the result back onto
// the Arena.
package solve

import "github.com/foundryworks/production-planner/pkg/planner"

// Setup recursively collects every enabled RecipeRow and
// ProductionLink reachable from tableIdx, clearing the solved output
// of any disabled row (and recursively, its entire disabled subtree)
// along the way. This is the pre-pass spec.md §4.3 runs before LP
// construction on every solve.
func Setup(arena *planner.Arena, tableIdx int) (rows []int, links []int) {
	table := &arena.Tables[tableIdx]

	for _, rowIdx := range table.Rows {
		row := &arena.Rows[rowIdx]
		if !row.Enabled {
			clearDisabled(arena, rowIdx)
			continue
		}
		rows = append(rows, rowIdx)
		if row.Subgroup >= 0 {
			subRows, subLinks := Setup(arena, row.Subgroup)
			rows = append(rows, subRows...)
			links = append(links, subLinks...)
		}
	}

	for _, linkIdx := range table.Links {
		link := &arena.Links[linkIdx]
		link.CapturedRecipes = nil
		link.Flags = 0
		link.LinkFlow = 0
		link.NotMatchedFlow = 0
		link.DualValue = 0
		links = append(links, linkIdx)
	}

	return rows, links
}

// clearDisabled zeroes a disabled row's solved output and recurses
// into its subgroup (if any) without adding anything to the Setup
// result: a disabled row contributes nothing to the LP being built.
func clearDisabled(arena *planner.Arena, rowIdx int) {
	row := &arena.Rows[rowIdx]
	row.RecipesPerSecond = 0
	row.BuiltBuildings = 0
	row.WarningFlags = 0
	row.Parameters = planner.Parameters{}

	if row.Subgroup < 0 {
		return
	}
	sub := &arena.Tables[row.Subgroup]
	for _, childIdx := range sub.Rows {
		clearDisabled(arena, childIdx)
	}
}
