package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/internal/planner/search"
	"github.com/foundryworks/production-planner/pkg/planner"
)

func buildNestedArena(recipe, crafter, plate planner.ID) *planner.Arena {
	sub := plannertest.NewArena()
	sub.AddRow(recipe, crafter, nil)
	subArena := sub.Arena()

	root := plannertest.NewArena()
	rowIdx := root.AddRow(recipe, crafter, func(r *planner.RecipeRow) { r.Subgroup = 1 })
	root.AddLink(plate, 1, planner.LinkMatch)
	rootArena := root.Arena()

	rootArena.Tables = append(rootArena.Tables, planner.ProductionTable{
		ID:      subArena.Tables[0].ID,
		Owner:   rowIdx,
		Rows:    []int{1},
		Links:   nil,
		LinkMap: map[planner.ID]int{},
	})
	rootArena.Rows = append(rootArena.Rows, subArena.Rows[0])
	rootArena.Rows[1].OwnerTable = 1
	return rootArena
}

func TestFindLink_WalksUpOwnerChain(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})

	arena := buildNestedArena(recipe, crafter, plate)

	linkIdx, ok := search.FindLink(arena, 1, plate)
	require.True(t, ok)
	assert.Equal(t, 0, linkIdx)

	_, ok = search.FindLink(arena, 1, ore)
	assert.False(t, ok)
}

func TestHasSpentFuel(t *testing.T) {
	cat := plannertest.NewCatalog()
	ash := cat.AddItem("ash", nil)
	coal := cat.AddItem("coal", func(g *planner.Goods) {
		g.Item.FuelValue = 4
		g.Item.HasFuelResult = true
		g.Item.FuelResult = ash
	})
	water := cat.AddItem("water", nil)

	db := cat.Database()

	spent, ok := search.HasSpentFuel(db, coal)
	require.True(t, ok)
	assert.Equal(t, ash, spent)

	_, ok = search.HasSpentFuel(db, water)
	assert.False(t, ok)
}

func TestMatch_EmptyQueryAlwaysMatches(t *testing.T) {
	cat := plannertest.NewCatalog()
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) { r.Crafters = []planner.ID{crafter} })
	db := cat.Database()

	arena := plannertest.NewArena()
	arena.AddRow(recipe, crafter, nil)
	a := arena.Arena()

	assert.True(t, search.Match(db, a, 0, ""))
	assert.True(t, search.Match(db, a, 0, "   "))
}

func TestMatch_ByRecipeIngredientCrafterFuelName(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	coal := cat.AddItem("coal", nil)
	crafter := cat.AddCrafter("Stone Furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafter}
	})
	db := cat.Database()

	arena := plannertest.NewArena()
	arena.AddRow(recipe, crafter, func(row *planner.RecipeRow) { row.HasFuel = true; row.Fuel = coal })
	a := arena.Arena()

	assert.True(t, search.Match(db, a, 0, "iron-plate"))
	assert.True(t, search.Match(db, a, 0, "iron-ore"))
	assert.True(t, search.Match(db, a, 0, "stone furnace"))
	assert.True(t, search.Match(db, a, 0, "coal"))
	assert.False(t, search.Match(db, a, 0, "copper"))
}
