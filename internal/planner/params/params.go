// Package params implements the Parameter Model (spec.md §4.1): a pure
// function that turns a RecipeRow's chosen crafter, fuel, modules, and
// beacons into the derived quantities the two LP engines build their
// coefficients from.
package params

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// ResearchSpeedBonus is the project-wide bonus applied to labs
// (EntityKind crafters powered by EnergyLabor), supplied by the
// project rather than derivable from the catalog alone.
type Context struct {
	DB                 *catalog.Database
	ResearchSpeedBonus float64
}

// Calculate computes Parameters for one row, per spec.md §4.1. It has
// no side effects and never mutates the catalog or the row.
func Calculate(ctx Context, row *planner.RecipeRow) planner.Parameters {
	db := ctx.DB
	recipe := db.RecipeByID(row.Recipe)
	crafter := db.EntityByID(row.Crafter)

	speedBonus := moduleSum(db, row, func(e planner.ModuleEffects) float64 { return e.Speed })
	speedBonus += beaconSpeedBonus(db, row)
	if crafter.Energy.Kind == planner.EnergyLabor {
		speedBonus += ctx.ResearchSpeedBonus
	}

	craftingSpeed := 1.0
	baseProductivity := 0.0
	if crafter.Crafter != nil {
		craftingSpeed = crafter.Crafter.CraftingSpeed
		baseProductivity = crafter.Crafter.Productivity
	}
	if craftingSpeed <= 0 {
		craftingSpeed = 1
	}

	recipeTime := recipe.Time / (craftingSpeed * (1 + speedBonus))

	productivity := baseProductivity + moduleSum(db, row, func(e planner.ModuleEffects) float64 { return e.Productivity })

	consumption := 1 + moduleSum(db, row, func(e planner.ModuleEffects) float64 { return e.Consumption })

	fuelPerBuilding := fuelUsagePerSecondPerBuilding(db, crafter, row, consumption)

	return planner.Parameters{
		RecipeTime:                    recipeTime,
		Productivity:                  productivity,
		SpeedBonus:                    speedBonus,
		Consumption:                   consumption,
		FuelUsagePerSecondPerBuilding: fuelPerBuilding,
	}
}

// moduleAllowed implements the intersection reading of the open
// question in spec.md §9: a module applies to a row only if every
// non-zero effect is permitted by the crafter's allowedEffects AND
// (when the recipe declares its own allowlist) the module is in it AND
// the module's own crafter blacklist does not exclude this crafter.
func moduleAllowed(db *catalog.Database, recipe *planner.Recipe, crafterID planner.ID, moduleID planner.ID) bool {
	mod := db.GoodsByID(moduleID)
	if mod.Item == nil || mod.Item.Module == nil {
		return false
	}
	crafter := db.EntityByID(crafterID)
	if crafter.Crafter == nil {
		return false
	}
	if !crafter.Crafter.AllowedEffects.Allows(mod.Item.Module.Effects) {
		return false
	}
	if len(recipe.AllowedModules) > 0 && !containsID(recipe.AllowedModules, moduleID) {
		return false
	}
	if containsID(mod.Item.Module.CrafterBlacklist, crafterID) {
		return false
	}
	if len(mod.Item.Module.RecipeAllowlist) > 0 && !containsID(mod.Item.Module.RecipeAllowlist, recipe.ID) {
		return false
	}
	return true
}

func containsID(ids []planner.ID, target planner.ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func moduleSum(db *catalog.Database, row *planner.RecipeRow, axis func(planner.ModuleEffects) float64) float64 {
	recipe := db.RecipeByID(row.Recipe)
	var total float64
	for _, moduleID := range row.Modules.Modules {
		if moduleID == planner.NoID {
			continue
		}
		if !moduleAllowed(db, recipe, row.Crafter, moduleID) {
			continue
		}
		mod := db.GoodsByID(moduleID)
		total += axis(mod.Item.Module.Effects)
	}
	return total
}

// beaconSpeedBonus computes beaconCount * beaconEfficiency * sum(beaconModuleSpeed),
// per spec.md §4.1.
func beaconSpeedBonus(db *catalog.Database, row *planner.RecipeRow) float64 {
	if row.Beacons.Beacon == planner.NoID || row.Beacons.BeaconCount <= 0 {
		return 0
	}
	beacon := db.EntityByID(row.Beacons.Beacon)
	if beacon.Crafter == nil {
		return 0
	}
	mod := db.GoodsByID(row.Beacons.BeaconModule)
	if mod.Item == nil || mod.Item.Module == nil {
		return 0
	}
	return float64(row.Beacons.BeaconCount) * beacon.Crafter.BeaconEfficiency * mod.Item.Module.Effects.Speed
}

// fuelUsagePerSecondPerBuilding returns NaN if the row's fuel cannot
// satisfy the crafter's energy requirement, per spec.md §4.1.
func fuelUsagePerSecondPerBuilding(db *catalog.Database, crafter *planner.Entity, row *planner.RecipeRow, consumption float64) float64 {
	switch crafter.Energy.Kind {
	case planner.EnergyVoid:
		return 0
	case planner.EnergyElectric:
		return crafter.Energy.Drain * consumption
	case planner.EnergyHeat:
		return crafter.Energy.Drain * consumption
	}

	if !row.HasFuel || row.Fuel == planner.NoID {
		return math.NaN()
	}
	fuelGoods := db.GoodsByID(row.Fuel)
	var fuelValue float64
	switch crafter.Energy.Kind {
	case planner.EnergyFluidFuel, planner.EnergyFluidHeat:
		if fuelGoods.Fluid == nil || fuelGoods.Fluid.HeatValue <= 0 {
			return math.NaN()
		}
		fuelValue = fuelGoods.Fluid.HeatValue
	default: // SolidFuel, Labor
		if fuelGoods.Item == nil || fuelGoods.Item.FuelValue <= 0 {
			return math.NaN()
		}
		fuelValue = fuelGoods.Item.FuelValue
	}

	power := crafter.Energy.Drain * consumption
	usage := power / fuelValue
	if crafter.Energy.FuelConsumptionLimit > 0 && usage > crafter.Energy.FuelConsumptionLimit {
		usage = crafter.Energy.FuelConsumptionLimit
	}
	return usage
}

// Cache memoizes Calculate results keyed by row id, across repeated
// solves against the same long-lived arena (interactive edit/re-solve
// workflows where a row's id is stable between calls). Owned by the
// caller, not the solver; pass the same Cache into solve.Context across
// calls to benefit from it.
type Cache struct {
	inner *lru.Cache[string, planner.Parameters]
}

// NewCache builds a Cache sized for a typical single-table solve; size
// is a soft cap, not a hard limit on table size.
func NewCache(size int) *Cache {
	c, _ := lru.New[string, planner.Parameters](size)
	return &Cache{inner: c}
}

func (c *Cache) Get(rowID string) (planner.Parameters, bool) {
	return c.inner.Get(rowID)
}

func (c *Cache) Put(rowID string, p planner.Parameters) {
	c.inner.Add(rowID, p)
}

func (c *Cache) Purge() {
	c.inner.Purge()
}
