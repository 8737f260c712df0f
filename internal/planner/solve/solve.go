package solve

import (
	"math"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/lp"
	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/search"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// Context bundles everything one Solve call needs: the catalog, the
// per-row parameter model, and a Cost Analysis run to source
// objective coefficients and diagnosis slack weights from.
type Context struct {
	DB     *catalog.Database
	Params params.Context
	Cost   *cost.Analysis

	// Cache, if non-nil, memoizes Parameter Model results across
	// repeated Solve calls against the same long-lived arena (stable
	// row ids edited in place between re-solves) — the interactive
	// edit/re-solve workflow the rest of this solver supports even
	// though this repo's own CLI and tool server build a throwaway
	// arena per call. Optional; Solve recomputes when nil.
	Cache *params.Cache
}

// Result is the outcome of one top-level Solve: either OK (optionally
// with a non-fatal warning in Message, e.g. unmatched links or
// exceeded built counts) or a textual diagnosis when the LP itself could not be
// solved even after the slack re-solve (spec.md §4.3, §7).
type Result struct {
	OK      bool
	Message string // set when !OK, or as a non-fatal warning when OK
}

// Solve runs the Production Table Solver (spec.md §4.3) over every
// table reachable from rootTable.
func Solve(ctx Context, arena *planner.Arena, rootTable int) (*Result, error) {
	db := ctx.DB

	rows, links := Setup(arena, rootTable)

	problem := lp.NewProblem()
	problem.SetMinimize()

	rowVars := make(map[int]*lp.Var, len(rows))
	linkCtrs := make(map[int]*lp.Constraint, len(links))

	for _, rowIdx := range rows {
		row := &arena.Rows[rowIdx]
		row.Parameters = rowParameters(ctx, row)

		var v *lp.Var
		if row.FixedBuildings > 0 && !math.IsNaN(row.FixedBuildings) && row.Parameters.RecipeTime > 0 {
			rate := row.FixedBuildings / row.Parameters.RecipeTime
			v = problem.MakeVar(rate, rate)
		} else {
			v = problem.MakeVar(0, lp.Inf)
		}
		rowVars[rowIdx] = v
	}

	for _, linkIdx := range links {
		link := &arena.Links[linkIdx]
		lo, hi := linkBounds(link)
		linkCtrs[linkIdx] = problem.MakeConstraint(lo, hi)
		if link.Amount > 0 {
			link.Flags |= planner.LinkHasConsumption
		} else if link.Amount < 0 {
			link.Flags |= planner.LinkHasProduction
		}
	}

	rowOutputLinks := make(map[int][]int, len(rows))

	for _, rowIdx := range rows {
		row := &arena.Rows[rowIdx]
		recipe := db.RecipeByID(row.Recipe)
		v := rowVars[rowIdx]

		row.Links = planner.RowLinks{
			Ingredients: map[planner.ID]int{},
			Products:    map[planner.ID]int{},
			Fuel:        -1,
			SpentFuel:   -1,
		}

		var outputs []int

		for _, p := range recipe.Products {
			linkIdx, ok := search.FindLink(arena, row.OwnerTable, p.Goods)
			if !ok {
				continue
			}
			amount := p.Amount + p.ProductivityAmount*row.Parameters.Productivity
			wire(arena, linkCtrs[linkIdx], linkIdx, rowIdx, v, amount, true)
			row.Links.Products[p.Goods] = linkIdx
			outputs = append(outputs, linkIdx)
		}

		for _, ing := range recipe.Ingredients {
			goodsID := resolveVariant(row, ing)
			linkIdx, ok := search.FindLink(arena, row.OwnerTable, goodsID)
			if !ok {
				continue
			}
			wire(arena, linkCtrs[linkIdx], linkIdx, rowIdx, v, -ing.Amount, false)
			row.Links.Ingredients[goodsID] = linkIdx
		}

		if row.HasFuel && row.Fuel != planner.NoID && !math.IsNaN(row.Parameters.FuelUsagePerSecondPerBuilding) {
			fuelPerRecipe := row.Parameters.FuelUsagePerSecondPerRecipe()
			if linkIdx, ok := search.FindLink(arena, row.OwnerTable, row.Fuel); ok {
				wire(arena, linkCtrs[linkIdx], linkIdx, rowIdx, v, -fuelPerRecipe, false)
				row.Links.Fuel = linkIdx
			}
			if spentGoods, ok := search.HasSpentFuel(db, row.Fuel); ok {
				if linkIdx, ok := search.FindLink(arena, row.OwnerTable, spentGoods); ok {
					wire(arena, linkCtrs[linkIdx], linkIdx, rowIdx, v, fuelPerRecipe, true)
					row.Links.SpentFuel = linkIdx
					outputs = append(outputs, linkIdx)
				}
			}
		}

		rowOutputLinks[rowIdx] = outputs
		problem.SetObjective(v, recipeBaseCost(ctx.Cost, db, recipe, row))
	}

	var removable []int
	for _, linkIdx := range links {
		link := &arena.Links[linkIdx]
		hasProd := link.Flags&planner.LinkHasProduction != 0
		hasCons := link.Flags&planner.LinkHasConsumption != 0
		if hasProd && hasCons {
			continue
		}
		linkCtrs[linkIdx] = relax(problem, linkCtrs[linkIdx])
		link.Flags |= planner.LinkNotMatched
		if !hasProd && !hasCons {
			removable = append(removable, linkIdx)
		}
	}

	status := problem.SolveWithDifferentSeeds()

	if status != lp.StatusOptimal && status != lp.StatusFeasible {
		diagResult, diagErr := diagnose(diagnoseContext{
			problem:    problem,
			arena:      arena,
			costAn:     ctx.Cost,
			rows:       rows,
			links:      links,
			rowVars:    rowVars,
			linkCtrs:   linkCtrs,
			rowOutputs: rowOutputLinks,
			origStatus: status,
		})
		if diagErr != nil {
			return nil, diagErr
		}
		if diagResult != nil {
			removeUnusedLinks(arena, rootTable, removable)
			return diagResult, nil
		}
	}

	applySolution(arena, rows, rowVars, links, linkCtrs)
	removeUnusedLinks(arena, rootTable, removable)

	res := &Result{OK: true}
	if msg := CheckBuiltCountExceeded(arena, rootTable); msg != "" {
		res.Message = msg
	}
	return res, nil
}

// rowParameters resolves row's Parameter Model, consulting ctx.Cache
// by row id first when one is configured.
func rowParameters(ctx Context, row *planner.RecipeRow) planner.Parameters {
	if ctx.Cache == nil {
		return params.Calculate(ctx.Params, row)
	}

	key := row.ID.String()
	if p, ok := ctx.Cache.Get(key); ok {
		return p
	}

	p := params.Calculate(ctx.Params, row)
	ctx.Cache.Put(key, p)
	return p
}

func linkBounds(link *planner.ProductionLink) (float64, float64) {
	switch link.Algorithm {
	case planner.LinkAllowOverProduction:
		return link.Amount, lp.Inf
	case planner.LinkAllowOverConsumption:
		return -lp.Inf, link.Amount
	default:
		return link.Amount, link.Amount
	}
}

func relax(problem *lp.Problem, c *lp.Constraint) *lp.Constraint {
	relaxed := problem.MakeConstraint(-lp.Inf, lp.Inf)
	for v, coef := range c.Coefficients() {
		relaxed.SetCoefficient(v, coef)
	}
	return relaxed
}

func wire(arena *planner.Arena, c *lp.Constraint, linkIdx, rowIdx int, v *lp.Var, coef float64, isProduction bool) {
	c.AddCoefficient(v, coef)
	link := &arena.Links[linkIdx]
	link.CapturedRecipes = appendUnique(link.CapturedRecipes, rowIdx)
	if isProduction {
		link.Flags |= planner.LinkHasProduction
	} else {
		link.Flags |= planner.LinkHasConsumption
	}
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// resolveVariant picks the concrete fluid variant a row chose for a
// VariantGroup ingredient, falling back to the ingredient's own Goods
// when it does not belong to a variant group.
func resolveVariant(row *planner.RecipeRow, ing planner.Ingredient) planner.ID {
	if ing.VariantGroup < 0 {
		return ing.Goods
	}
	for _, vc := range row.VariantChoices {
		if vc.IngredientIndex == ing.VariantGroup {
			return vc.GoodsID
		}
	}
	return ing.Goods
}

// recipeBaseCost implements spec.md §4.3 step 5: ingredient cost plus
// only the positive-cost product/spent-fuel terms, so a valuable
// by-product never makes the objective favor producing more of it.
func recipeBaseCost(costAn *cost.Analysis, db *catalog.Database, recipe *planner.Recipe, row *planner.RecipeRow) float64 {
	var total float64
	for _, ing := range recipe.Ingredients {
		total += costAn.Cost(ing.Goods) * ing.Amount
	}
	for _, p := range recipe.Products {
		if c := costAn.Cost(p.Goods); c > 0 {
			total += c * p.Amount
		}
	}
	if row.HasFuel && row.Fuel != planner.NoID && !math.IsNaN(row.Parameters.FuelUsagePerSecondPerRecipe()) {
		total += costAn.Cost(row.Fuel) * row.Parameters.FuelUsagePerSecondPerRecipe()
		if spentGoods, ok := search.HasSpentFuel(db, row.Fuel); ok {
			if c := costAn.Cost(spentGoods); c > 0 {
				total += c * row.Parameters.FuelUsagePerSecondPerRecipe()
			}
		}
	}
	return total
}

func applySolution(arena *planner.Arena, rows []int, rowVars map[int]*lp.Var, links []int, linkCtrs map[int]*lp.Constraint) {
	for _, rowIdx := range rows {
		row := &arena.Rows[rowIdx]
		v := rowVars[rowIdx]
		row.RecipesPerSecond = v.SolutionValue()
		if row.Parameters.RecipeTime > 0 {
			row.BuiltBuildings = row.RecipesPerSecond * row.Parameters.RecipeTime
		}
	}
	for _, linkIdx := range links {
		link := &arena.Links[linkIdx]
		c, ok := linkCtrs[linkIdx]
		if !ok {
			continue
		}
		link.DualValue = c.DualValue()
		link.LinkFlow = linkFlowValue(c)
		if (c.BasisStatus() == lp.Basic || c.BasisStatus() == lp.Free) &&
			(link.NotMatchedFlow != 0 || link.Algorithm != planner.LinkMatch) {
			link.Flags |= planner.LinkNotMatched
		}
	}
}

// linkFlowValue recovers the realized net flow of a link's
// constraint: since C_k has no slack variable of its own in the
// initial wiring, the settled flow is just its bound value when tight
// (Match), or derived from the dual/basis in the relaxed case — here
// we report the constraint bound as the nominal flow target, which is
// exact whenever the row contributions settled the constraint.
func linkFlowValue(c *lp.Constraint) float64 {
	lo, hi := c.LowerBound(), c.UpperBound()
	if lo == hi {
		return lo
	}
	if !math.IsInf(lo, -1) {
		return lo
	}
	return hi
}

func removeUnusedLinks(arena *planner.Arena, rootTable int, links []int) {
	if len(links) == 0 {
		return
	}
	remove := make(map[int]bool, len(links))
	for _, l := range links {
		remove[l] = true
	}
	var prune func(tableIdx int)
	prune = func(tableIdx int) {
		table := &arena.Tables[tableIdx]
		kept := table.Links[:0]
		for _, l := range table.Links {
			if remove[l] {
				delete(table.LinkMap, arena.Links[l].Goods)
				continue
			}
			kept = append(kept, l)
		}
		table.Links = kept
		for _, rowIdx := range table.Rows {
			if sub := arena.Rows[rowIdx].Subgroup; sub >= 0 {
				prune(sub)
			}
		}
	}
	prune(rootTable)
}

// CheckBuiltCountExceeded implements spec.md §4.3's final pass: flags
// every row whose solved building count exceeds its fixed pin, and
// recursively ORs that state up from any exceeding subgroup.
func CheckBuiltCountExceeded(arena *planner.Arena, tableIdx int) string {
	any := checkBuiltCount(arena, tableIdx)
	if any {
		return "requires more buildings than are currently built"
	}
	return ""
}

func checkBuiltCount(arena *planner.Arena, tableIdx int) bool {
	table := &arena.Tables[tableIdx]
	any := false
	for _, rowIdx := range table.Rows {
		row := &arena.Rows[rowIdx]
		exceeded := false
		if row.Subgroup >= 0 {
			exceeded = checkBuiltCount(arena, row.Subgroup)
		}
		if row.FixedBuildings > 0 && !math.IsNaN(row.FixedBuildings) && row.BuiltBuildings > row.FixedBuildings+1e-6 {
			exceeded = true
		}
		if exceeded {
			row.WarningFlags |= planner.WarningExceedsBuiltCount
			any = true
		}
	}
	return any
}
