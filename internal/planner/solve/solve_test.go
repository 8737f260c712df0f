package solve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/internal/planner/solve"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// TestSolve_SingleRecipeMatchesScenario1 pins spec.md §8 scenario 1.
func TestSolve_SingleRecipeMatchesScenario1(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Time = 3.5
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, nil)
	ab.AddLink(plate, 1, planner.LinkMatch)
	arena := ab.Arena()

	res, err := solve.Solve(solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn}, arena, 0)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.InDelta(t, 1, arena.Rows[0].RecipesPerSecond, 1e-6)
}

// TestSolve_FuelConsumingRecipeMatchesScenario2 pins spec.md §8
// scenario 2's literal fuel-consumption value.
func TestSolve_FuelConsumingRecipeMatchesScenario2(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	coal := cat.AddItem("coal", func(g *planner.Goods) { g.Item.FuelValue = 4 })
	crafter := cat.AddEntity("burner-furnace", planner.EntityCrafter, func(e *planner.Entity) {
		e.Crafter = &planner.CrafterData{CraftingSpeed: 1}
		e.Energy = planner.EntityEnergy{Kind: planner.EnergySolidFuel, Drain: 0.15, Fuels: []planner.ID{coal}}
	})
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Time = 3.5
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, func(row *planner.RecipeRow) { row.HasFuel = true; row.Fuel = coal })
	ab.AddLink(plate, 1, planner.LinkMatch)
	ab.AddLink(coal, 0, planner.LinkAllowOverConsumption)
	arena := ab.Arena()

	res, err := solve.Solve(solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn}, arena, 0)
	require.NoError(t, err)
	require.True(t, res.OK)

	row := &arena.Rows[0]
	assert.InDelta(t, 1, row.RecipesPerSecond, 1e-6)
	assert.InDelta(t, 0.13125, row.Parameters.FuelUsagePerSecondPerRecipe(), 1e-9)
}

// TestSolve_OverproductionBranchMatchesScenario4 pins spec.md §8
// scenario 4.
func TestSolve_OverproductionBranchMatchesScenario4(t *testing.T) {
	cat := plannertest.NewCatalog()
	x := cat.AddItem("x", nil)
	y := cat.AddItem("y", nil)
	z := cat.AddItem("z", nil)
	crafter := cat.AddCrafter("assembler", 1, nil)
	recipeC := cat.AddRecipe("recipe-c", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: x, Amount: 1}}
		r.Products = []planner.Product{{Goods: y, Amount: 2}, {Goods: z, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	ab := plannertest.NewArena()
	ab.AddRow(recipeC, crafter, nil)
	ab.AddLink(y, 1, planner.LinkMatch)
	arena := ab.Arena()

	res, err := solve.Solve(solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn}, arena, 0)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.InDelta(t, 0.5, arena.Rows[0].RecipesPerSecond, 1e-6)
}

// TestSolve_DeadlockLoopDiagnosesAndRelaxes pins spec.md §8 scenario 3:
// recipe A: 1 B -> 1 A, recipe B: 1 A -> 1 B, a consumer link demanding
// 1 A/s and a balanced internal link on B. The initial solve is
// infeasible (A's equality forces vA-vB=1, B's forces vA=vB); the
// diagnosis relaxes the deadlocked link and re-solves successfully.
func TestSolve_DeadlockLoopDiagnosesAndRelaxes(t *testing.T) {
	cat := plannertest.NewCatalog()
	a := cat.AddItem("a", nil)
	b := cat.AddItem("b", nil)
	crafter := cat.AddCrafter("assembler", 1, nil)
	recipeA := cat.AddRecipe("recipe-a", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: b, Amount: 1}}
		r.Products = []planner.Product{{Goods: a, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	recipeB := cat.AddRecipe("recipe-b", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: a, Amount: 1}}
		r.Products = []planner.Product{{Goods: b, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	ab := plannertest.NewArena()
	ab.AddRow(recipeA, crafter, nil)
	ab.AddRow(recipeB, crafter, nil)
	ab.AddLink(a, 1, planner.LinkMatch)
	ab.AddLink(b, 0, planner.LinkMatch)
	arena := ab.Arena()

	res, err := solve.Solve(solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn}, arena, 0)
	require.NoError(t, err)
	require.True(t, res.OK, "relaxed re-solve should succeed: %s", res.Message)
	assert.Contains(t, res.Message, "unmatched links")

	flagged := arena.Rows[0].WarningFlags&planner.WarningDeadlockCandidate != 0 ||
		arena.Rows[1].WarningFlags&planner.WarningDeadlockCandidate != 0
	assert.True(t, flagged, "at least one recipe in the loop must be flagged DeadlockCandidate")
}

func TestSetup_Idempotent(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, nil)
	ab.AddLink(plate, 1, planner.LinkMatch)
	arena := ab.Arena()

	rows1, links1 := solve.Setup(arena, 0)
	rows2, links2 := solve.Setup(arena, 0)

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, links1, links2)
}

func TestSetup_ClearsDisabledRowOutput(t *testing.T) {
	cat := plannertest.NewCatalog()
	crafter := cat.AddCrafter("assembler", 1, nil)
	recipe := cat.AddRecipe("noop", func(r *planner.Recipe) { r.Crafters = []planner.ID{crafter} })

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, func(row *planner.RecipeRow) {
		row.Enabled = false
		row.RecipesPerSecond = 5
		row.WarningFlags = planner.WarningDeadlockCandidate
	})
	arena := ab.Arena()

	rows, _ := solve.Setup(arena, 0)
	assert.Empty(t, rows)
	assert.Equal(t, float64(0), arena.Rows[0].RecipesPerSecond)
	assert.Equal(t, planner.RowWarningFlag(0), arena.Rows[0].WarningFlags)
}

// TestSolve_DeterministicAcrossRepeatedCalls pins the §8 solver
// determinism invariant and exercises the Cache-wired rowParameters
// path used by interactive edit/re-solve workflows.
func TestSolve_DeterministicAcrossRepeatedCalls(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Time = 3.5
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, nil)
	ab.AddLink(plate, 1, planner.LinkMatch)
	arena := ab.Arena()

	cache := params.NewCache(8)
	ctx := solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn, Cache: cache}

	res1, err := solve.Solve(ctx, arena, 0)
	require.NoError(t, err)
	require.True(t, res1.OK)
	first := arena.Rows[0].RecipesPerSecond

	res2, err := solve.Solve(ctx, arena, 0)
	require.NoError(t, err)
	require.True(t, res2.OK)
	second := arena.Rows[0].RecipesPerSecond

	assert.Equal(t, first, second)
}

func TestCheckBuiltCountExceeded_FlagsOverBuiltRow(t *testing.T) {
	cat := plannertest.NewCatalog()
	crafter := cat.AddCrafter("assembler", 1, nil)
	recipe := cat.AddRecipe("noop", func(r *planner.Recipe) { r.Crafters = []planner.ID{crafter} })

	ab := plannertest.NewArena()
	ab.AddRow(recipe, crafter, func(row *planner.RecipeRow) {
		row.FixedBuildings = 1
		row.BuiltBuildings = 2
	})
	arena := ab.Arena()

	msg := solve.CheckBuiltCountExceeded(arena, 0)
	assert.Equal(t, "requires more buildings than are currently built", msg)
	assert.NotZero(t, arena.Rows[0].WarningFlags&planner.WarningExceedsBuiltCount)
}
