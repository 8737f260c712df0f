package cost

import (
	"math"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// logisticsCost implements the per-recipe upper bound of Cost
// Analysis's constraint row (spec.md §4.2): a size-scaled base cost,
// adjusted for item/fluid flow, mining rarity, and pollution.
func logisticsCost(db *catalog.Database, r *planner.Recipe) float64 {
	size := minCrafterSize
	if avg := (len(r.Ingredients) + len(r.Products)) / 2; avg > size {
		size = avg
	}

	sizeUsage := CostPerSecond * r.Time * float64(size)
	base := sizeUsage*(1+CostPerIngredientPerSize*float64(len(r.Ingredients))+CostPerProductPerSize*float64(len(r.Products))) +
		CostPerMj*minCrafterPower(db, r)

	for _, ing := range r.Ingredients {
		base += flowCost(db, ing.Goods, ing.Amount)
	}
	for _, p := range r.Products {
		base += flowCost(db, p.Goods, p.Amount)
	}

	if r.HasSourceEntity {
		if entity := db.EntityByID(r.SourceEntity); entity.MapGenerated {
			base *= miningPenalty(entity, r)
		}
	}

	base += minCrafterEmissions(db, r) * CostPerPollution * r.Time * pollutionCostModifier

	return base
}

func flowCost(db *catalog.Database, goodsID planner.ID, amount float64) float64 {
	g := db.GoodsByID(goodsID)
	switch g.Kind {
	case planner.KindFluid:
		return CostPerFluid * amount
	default:
		return CostPerItem * amount
	}
}

// miningPenalty implements spec.md §8 scenario 6 exactly:
// 1 + min(MiningMaxExtraPenaltyForRarity, max(0, ln(MiningMaxDensityForPenalty/density))),
// where density = mapGenDensity / Σ product.amount.
func miningPenalty(source *planner.Entity, r *planner.Recipe) float64 {
	var totalProduct float64
	for _, p := range r.Products {
		totalProduct += p.Amount
	}
	if totalProduct <= 0 || source.MapGenDensity <= 0 {
		return 1
	}
	density := source.MapGenDensity / totalProduct
	extra := math.Max(0, math.Log(MiningMaxDensityForPenalty/density))
	return 1 + math.Min(MiningMaxExtraPenaltyForRarity, extra)
}

func minCrafterPower(db *catalog.Database, r *planner.Recipe) float64 {
	min := math.Inf(1)
	for _, crafterID := range r.Crafters {
		drain := db.EntityByID(crafterID).Energy.Drain
		if drain < min {
			min = drain
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

func minCrafterEmissions(db *catalog.Database, r *planner.Recipe) float64 {
	min := math.Inf(1)
	for _, crafterID := range r.Crafters {
		e := db.EntityByID(crafterID).Energy.Emissions
		if e < min {
			min = e
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

// singleFuel resolves spec.md §4.2's fuel-selection rule: if every
// crafter of r that actually burns fuel (i.e. not Void/Electric/Heat)
// agrees on exactly one candidate fuel goods with a well-defined
// power/fuelValue, the recipe carries that fuel term; otherwise it
// carries none.
func singleFuel(db *catalog.Database, r *planner.Recipe) (goods planner.ID, amount float64, ok bool) {
	var fuelGoods planner.ID = planner.NoID
	minAmount := math.Inf(1)
	any := false

	for _, crafterID := range r.Crafters {
		crafter := db.EntityByID(crafterID)
		switch crafter.Energy.Kind {
		case planner.EnergyVoid, planner.EnergyElectric, planner.EnergyHeat:
			continue
		}
		if len(crafter.Energy.Fuels) != 1 {
			return planner.NoID, 0, false
		}
		candidate := crafter.Energy.Fuels[0]
		if fuelGoods == planner.NoID {
			fuelGoods = candidate
		} else if fuelGoods != candidate {
			return planner.NoID, 0, false
		}

		fuelValue := fuelHeatValue(db, candidate)
		if fuelValue <= 0 {
			return planner.NoID, 0, false
		}
		a := crafter.Energy.Drain / fuelValue
		if a < minAmount {
			minAmount = a
		}
		any = true
	}

	if !any {
		return planner.NoID, 0, false
	}
	return fuelGoods, minAmount, true
}

func fuelHeatValue(db *catalog.Database, goodsID planner.ID) float64 {
	g := db.GoodsByID(goodsID)
	if g.Fluid != nil {
		return g.Fluid.HeatValue
	}
	if g.Item != nil {
		return g.Item.FuelValue
	}
	return 0
}
