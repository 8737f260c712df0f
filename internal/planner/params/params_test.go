package params_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/pkg/planner"
)

func TestCalculate_BaseCase(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	crafter := cat.AddCrafter("furnace", 1, nil)
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Time = 3.5
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1, ProductivityAmount: 1}}
		r.Crafters = []planner.ID{crafter}
	})

	db := cat.Database()
	row := &planner.RecipeRow{Recipe: recipe, Crafter: crafter, Subgroup: -1, Enabled: true}

	p := params.Calculate(params.Context{DB: db}, row)
	assert.InDelta(t, 3.5, p.RecipeTime, 1e-9)
	assert.Equal(t, float64(0), p.Productivity)
	assert.Equal(t, float64(0), p.SpeedBonus)
	assert.Equal(t, float64(1), p.Consumption)
	assert.Equal(t, float64(0), p.FuelUsagePerSecondPerBuilding)
}

func TestCalculate_SolidFuelMatchesScenario2(t *testing.T) {
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
	row := &planner.RecipeRow{Recipe: recipe, Crafter: crafter, Subgroup: -1, Enabled: true, HasFuel: true, Fuel: coal}

	p := params.Calculate(params.Context{DB: db}, row)
	require.False(t, math.IsNaN(p.FuelUsagePerSecondPerBuilding))
	assert.InDelta(t, 0.15/4, p.FuelUsagePerSecondPerBuilding, 1e-9)
	assert.InDelta(t, 0.13125, p.FuelUsagePerSecondPerBuilding*p.RecipeTime, 1e-9)
}

func TestCalculate_NoFuelSelectedIsNaN(t *testing.T) {
	cat := plannertest.NewCatalog()
	coal := cat.AddItem("coal", func(g *planner.Goods) { g.Item.FuelValue = 4 })
	crafter := cat.AddEntity("burner-furnace", planner.EntityCrafter, func(e *planner.Entity) {
		e.Crafter = &planner.CrafterData{CraftingSpeed: 1}
		e.Energy = planner.EntityEnergy{Kind: planner.EnergySolidFuel, Drain: 0.15, Fuels: []planner.ID{coal}}
	})
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Crafters = []planner.ID{crafter}
	})

	db := cat.Database()
	row := &planner.RecipeRow{Recipe: recipe, Crafter: crafter, Subgroup: -1, Enabled: true, HasFuel: false}

	p := params.Calculate(params.Context{DB: db}, row)
	assert.True(t, math.IsNaN(p.FuelUsagePerSecondPerBuilding))
}

func TestCalculate_ModuleAllowedOnlyWhenEffectsPermitted(t *testing.T) {
	cat := plannertest.NewCatalog()
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	speedModule := cat.AddItem("speed-module", func(g *planner.Goods) {
		g.Item.Module = &planner.ModuleData{Effects: planner.ModuleEffects{Speed: 0.2}}
	})
	crafterNoSpeed := cat.AddCrafter("assembler-1", 1, func(e *planner.Entity) {
		e.Crafter.AllowedEffects = planner.EffectProductivity
	})
	crafterAllowsSpeed := cat.AddCrafter("assembler-2", 1, func(e *planner.Entity) {
		e.Crafter.AllowedEffects = planner.EffectSpeed
	})
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{crafterNoSpeed, crafterAllowsSpeed}
	})

	db := cat.Database()

	rowDenied := &planner.RecipeRow{
		Recipe: recipe, Crafter: crafterNoSpeed, Subgroup: -1, Enabled: true,
		Modules: planner.ModuleConfig{Modules: []planner.ID{speedModule}},
	}
	denied := params.Calculate(params.Context{DB: db}, rowDenied)
	assert.Equal(t, float64(0), denied.SpeedBonus)

	rowAllowed := &planner.RecipeRow{
		Recipe: recipe, Crafter: crafterAllowsSpeed, Subgroup: -1, Enabled: true,
		Modules: planner.ModuleConfig{Modules: []planner.ID{speedModule}},
	}
	allowed := params.Calculate(params.Context{DB: db}, rowAllowed)
	assert.InDelta(t, 0.2, allowed.SpeedBonus, 1e-9)
}

func TestCache_GetPutRoundTrip(t *testing.T) {
	c := params.NewCache(8)
	want := planner.Parameters{RecipeTime: 2.5, Productivity: 0.1}

	_, ok := c.Get("row-1")
	assert.False(t, ok)

	c.Put("row-1", want)
	got, ok := c.Get("row-1")
	require.True(t, ok)
	assert.Equal(t, want, got)

	c.Purge()
	_, ok = c.Get("row-1")
	assert.False(t, ok)
}
