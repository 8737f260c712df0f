// Package cost implements Cost Analysis (spec.md §4.2): a single
// global LP over every accessible goods and recipe, producing a
// hypothetical non-negative cost per goods used by the Production
// Table Solver as an objective-coefficient oracle and by the UI for
// waste/importance ranking.
package cost

import (
	"math"
	"sort"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/lp"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// Context selects which accessibility horizon and (optionally) which
// single target technology's science-pack demand to analyze, per
// spec.md §4.2 ("maximized once per mod pack, or twice when a
// 'current milestones' view is requested") and the milestone-restricted
// cost view supplemented in SPEC_FULL.md §3.
type Context struct {
	DB                  *catalog.Database
	MilestoneRestricted bool
	TargetTechnology    planner.ID // planner.NoID for the whole-tech-tree default
}

// Analysis holds the solved (or failed) result of one Cost Analysis
// run. All slices are dense, indexed by the corresponding planner.ID.
type Analysis struct {
	milestoneRestricted bool

	cost                  []float64
	recipeCost            []float64
	recipeProductCost     []float64
	recipeWastePercentage []float64
	flow                  []float64
	recipeFlow            []float64
	importantItems        []planner.ID

	// Warning is ErrAnalysisWarning if the LP failed to solve; the
	// analysis is still usable (every cost is +Inf) per spec.md §7
	// ("Cost Analysis ∞ values are a legitimate return, not an
	// error").
	Warning error
}

func (a *Analysis) Cost(g planner.ID) float64                { return a.cost[g] }
func (a *Analysis) RecipeCost(r planner.ID) float64           { return a.recipeCost[r] }
func (a *Analysis) RecipeProductCost(r planner.ID) float64    { return a.recipeProductCost[r] }
func (a *Analysis) RecipeWastePercentage(r planner.ID) float64 { return a.recipeWastePercentage[r] }
func (a *Analysis) Flow(g planner.ID) float64                 { return a.flow[g] }
func (a *Analysis) RecipeFlow(r planner.ID) float64           { return a.recipeFlow[r] }
func (a *Analysis) ImportantItems() []planner.ID              { return a.importantItems }

// Build runs the LP described in spec.md §4.2 once and returns its
// result. A failed solve is not a Go error: per spec.md §7, callers
// get back an Analysis whose costs are all +Inf and whose Warning
// field is set, except under milestone restriction where the warning
// is suppressed to avoid duplicate surfacing.
func Build(ctx Context) (*Analysis, error) {
	db := ctx.DB
	b := &builder{ctx: ctx, db: db}
	return b.build()
}

type builder struct {
	ctx Context
	db  *catalog.Database

	problem *lp.Problem
	vars    []*lp.Var // per-goods, nil for ineligible goods
	ctrs    []*lp.Constraint // per-recipe, nil for ineligible recipes
}

func (b *builder) accessibleObj(o *planner.Object) bool {
	if b.ctx.MilestoneRestricted {
		return o.AccessibleAtNextMilestone
	}
	return o.Accessible
}

func (b *builder) build() (*Analysis, error) {
	db := b.db
	b.problem = lp.NewProblem()
	b.problem.SetMaximize()
	b.vars = make([]*lp.Var, len(db.Goods))
	b.ctrs = make([]*lp.Constraint, len(db.Recipes))

	usage := b.sciencePackUsage()

	for i := range db.Goods {
		g := &db.Goods[i]
		if !b.accessibleObj(&g.Object) {
			continue
		}
		upper := lp.Inf
		if amt := b.mapGeneratedAmount(g.ID); amt > 0 {
			upper = CostLimitWhenGeneratesOnMap / amt
		}
		v := b.problem.MakeVar(CostLowerLimit, upper)
		b.problem.SetObjective(v, 1e-3+usage[g.ID]/1000)
		b.vars[i] = v
	}

	for i := range db.Recipes {
		r := &db.Recipes[i]
		if !b.accessibleObj(&r.Object) || len(r.Crafters) == 0 {
			continue
		}
		c := b.problem.MakeConstraint(-lp.Inf, logisticsCost(db, r))
		for _, p := range r.Products {
			if v := b.vars[p.Goods]; v != nil {
				c.AddCoefficient(v, p.Amount)
			}
		}
		for _, ing := range r.Ingredients {
			if v := b.vars[ing.Goods]; v != nil {
				c.AddCoefficient(v, -ing.Amount)
			}
		}
		if fuelGoods, amount, ok := singleFuel(db, r); ok {
			if v := b.vars[fuelGoods]; v != nil {
				c.AddCoefficient(v, -amount)
			}
		}
		b.ctrs[i] = c
	}

	b.addTieBreakConstraints()

	status := b.problem.SolveWithDifferentSeeds()

	a := &Analysis{
		milestoneRestricted:  b.ctx.MilestoneRestricted,
		cost:                  catalog.CreateMapping[float64](len(db.Goods)),
		recipeCost:            catalog.CreateMapping[float64](len(db.Recipes)),
		recipeProductCost:     catalog.CreateMapping[float64](len(db.Recipes)),
		recipeWastePercentage: catalog.CreateMapping[float64](len(db.Recipes)),
		flow:                  catalog.CreateMapping[float64](len(db.Goods)),
		recipeFlow:            catalog.CreateMapping[float64](len(db.Recipes)),
	}

	if status != lp.StatusOptimal && status != lp.StatusFeasible {
		for i := range a.cost {
			a.cost[i] = math.Inf(1)
		}
		if !b.ctx.MilestoneRestricted {
			a.Warning = planner.ErrAnalysisWarning
		}
		return a, nil
	}

	b.extractResults(a)
	b.computeImportantItems(a)

	return a, nil
}

func (b *builder) extractResults(a *Analysis) {
	db := b.db

	for i := range a.cost {
		a.cost[i] = math.Inf(1)
	}
	for i, v := range b.vars {
		if v != nil {
			a.cost[i] = v.SolutionValue()
		}
	}

	for i, c := range b.ctrs {
		if c == nil {
			continue
		}
		flowR := math.Max(0, c.DualValue())
		a.recipeFlow[i] = flowR
		for _, p := range db.Recipes[i].Products {
			a.flow[p.Goods] += flowR * p.Amount
		}
	}

	// cost[entity] = min cost[item] over items whose PlaceResult is
	// that entity (spec.md §4.2); entities have no dedicated cost
	// slot in the dense Goods space, so this is exposed via
	// EntityCost below rather than folded into a.cost.

	for i := range db.Recipes {
		r := &db.Recipes[i]
		var recipeCost, productCost float64
		for _, ing := range r.Ingredients {
			recipeCost += a.cost[ing.Goods] * ing.Amount
		}
		for _, p := range r.Products {
			productCost += a.cost[p.Goods] * p.Amount
		}
		a.recipeCost[i] = recipeCost
		a.recipeProductCost[i] = productCost
		if recipeCost > 0 && !math.IsInf(recipeCost, 1) {
			waste := 1 - productCost/recipeCost
			a.recipeWastePercentage[i] = math.Max(0, math.Min(1, waste))
		}
	}
}

// EntityCost computes cost[entity] = min cost[item] over
// itemsToPlace, per spec.md §4.2; entities are not in the Goods
// space so this is a derived lookup rather than a stored field.
func (a *Analysis) EntityCost(db *catalog.Database, entityID planner.ID) float64 {
	e := db.EntityByID(entityID)
	min := math.Inf(1)
	for _, itemID := range e.ItemsToPlace {
		if c := a.cost[itemID]; c < min {
			min = c
		}
	}
	return min
}

func (b *builder) addTieBreakConstraints() {
	db := b.db

	for i := range db.Goods {
		g := &db.Goods[i]
		if g.Item == nil || !g.Item.HasMiscSource {
			continue
		}
		src := b.vars[g.Item.MiscSource]
		item := b.vars[g.ID]
		if src == nil || item == nil {
			continue
		}
		c := b.problem.MakeConstraint(-lp.Inf, 0)
		c.SetCoefficient(item, 1)
		c.SetCoefficient(src, -1)
	}

	for _, vl := range db.FluidVariantLists {
		for i := 1; i < len(vl.Variants); i++ {
			cold, hot := b.vars[vl.Variants[i-1]], b.vars[vl.Variants[i]]
			if cold == nil || hot == nil {
				continue
			}
			// cost must be monotone non-increasing with temperature
			// (spec.md §4.2, §8 invariant): hot can never cost more
			// than cold, i.e. hot - cold <= 0.
			c := b.problem.MakeConstraint(-lp.Inf, 0)
			c.SetCoefficient(hot, 1)
			c.SetCoefficient(cold, -1)
		}
	}
}

// mapGeneratedAmount sums the per-craft product amount of every
// map-generated recipe producing g, used as the denominator of
// spec.md §4.2's upper(g) bound. Returns 0 if g has no map-generated
// source (meaning upper(g) is unbounded).
func (b *builder) mapGeneratedAmount(g planner.ID) float64 {
	db := b.db
	var total float64
	for i := range db.Recipes {
		r := &db.Recipes[i]
		if !r.HasSourceEntity || !db.EntityByID(r.SourceEntity).MapGenerated {
			continue
		}
		for _, p := range r.Products {
			if p.Goods == g {
				total += p.Amount
			}
		}
	}
	return total
}

// sciencePackUsage implements spec.md §4.2's objective term: either
// the chosen target technology's own ingredient demand, or the sum
// across every accessible technology of ingredient.amount*tech.count.
func (b *builder) sciencePackUsage() []float64 {
	db := b.db
	usage := catalog.CreateMapping[float64](len(db.Goods))

	if b.ctx.TargetTechnology != planner.NoID {
		t := db.TechnologyByID(b.ctx.TargetTechnology)
		for _, ing := range t.Ingredients {
			usage[ing.Goods] += ing.Amount
		}
		return usage
	}

	for i := range db.Technologies {
		t := &db.Technologies[i]
		if !b.accessibleObj(&t.Object) {
			continue
		}
		for _, ing := range t.Ingredients {
			usage[ing.Goods] += ing.Amount * float64(t.Count)
		}
	}
	return usage
}

// computeImportantItems implements spec.md §4.2's importantItems
// ranking: goods used by at least 2 recipes (as an ingredient),
// sorted descending by flow*cost*(count of zero-waste accessible
// usages).
func (b *builder) computeImportantItems(a *Analysis) {
	db := b.db

	usages := make(map[planner.ID][]planner.ID) // goods -> recipe ids using it as an ingredient
	for i := range db.Recipes {
		r := &db.Recipes[i]
		for _, ing := range r.Ingredients {
			usages[ing.Goods] = append(usages[ing.Goods], r.ID)
		}
	}

	type scored struct {
		id    planner.ID
		score float64
	}
	var candidates []scored
	for goodsID, recipes := range usages {
		if len(recipes) < 2 {
			continue
		}
		var zeroWasteAccessible int
		for _, rID := range recipes {
			r := db.RecipeByID(rID)
			if b.accessibleObj(&r.Object) && a.recipeWastePercentage[rID] == 0 {
				zeroWasteAccessible++
			}
		}
		score := a.flow[goodsID] * a.cost[goodsID] * float64(zeroWasteAccessible)
		candidates = append(candidates, scored{goodsID, score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	a.importantItems = make([]planner.ID, len(candidates))
	for i, c := range candidates {
		a.importantItems[i] = c.id
	}
}
