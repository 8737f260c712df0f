package planner

import "github.com/google/uuid"

// LinkAlgorithm selects how a ProductionLink reconciles mismatched
// supply and demand (spec.md §3.2).
type LinkAlgorithm uint8

const (
	// LinkMatch requires supply to equal demand; any gap is reported
	// through NotMatchedFlow and the matching warning flags.
	LinkMatch LinkAlgorithm = iota
	// LinkAllowOverProduction lets supply exceed demand without
	// warning; the excess is simply unused.
	LinkAllowOverProduction
	// LinkAllowOverConsumption lets demand exceed supply without
	// warning, treating the shortfall as sourced externally.
	LinkAllowOverConsumption
)

// LinkFlag records the solved state of a ProductionLink.
type LinkFlag uint32

const (
	LinkHasConsumption LinkFlag = 1 << iota
	LinkHasProduction
	LinkNotMatched
	LinkRecursiveNotMatched
	LinkChildNotMatched
)

// ProductionLink ties together every RecipeRow in a ProductionTable
// that consumes or produces a given Goods. It is the thing a solve
// actually balances; rows never reference each other directly (spec.md
// §3.2, §5).
type ProductionLink struct {
	ID    uuid.UUID
	Owner int // ProductionTable arena index
	Goods ID

	Amount    float64
	Algorithm LinkAlgorithm
	Flags     LinkFlag

	LinkFlow       float64 // net flow the solver settled on
	DualValue      float64 // LP dual value, used by Cost Analysis ranking
	NotMatchedFlow float64

	// CapturedRecipes lists the RecipeRow arena indices this link
	// currently binds together. Rebuilt at the start of every solve.
	CapturedRecipes []int
}

// RowWarningFlag records solver-detected anomalies on a RecipeRow that
// do not, by themselves, make the table infeasible.
type RowWarningFlag uint32

const (
	WarningOverproductionRequired RowWarningFlag = 1 << iota
	WarningDeadlockCandidate
	WarningExceedsBuiltCount
)

// VariantChoice records which concrete fluid temperature variant a row
// chose for one of its recipe's VariantGroup ingredients.
type VariantChoice struct {
	IngredientIndex int
	GoodsID         ID
}

// ModuleConfig is the module arrangement chosen for a single
// RecipeRow's crafter.
type ModuleConfig struct {
	Modules []ID // item ids, one entry per filled module slot
}

// BeaconConfig is the beacon arrangement affecting a single
// RecipeRow, aggregated to a single multiplier per module.
type BeaconConfig struct {
	Beacon       ID // entity id, NoID if none
	BeaconCount  int
	BeaconModule ID // item id inserted into each beacon
}

// RowLinks resolves, per RecipeRow, which ProductionLink arena index
// carries each of its ingredients, products, and (if applicable) fuel
// and spent-fuel goods. Keyed by Goods rather than positionally so a
// row with repeated goods across ingredients/products still resolves
// correctly.
type RowLinks struct {
	Ingredients map[ID]int
	Products    map[ID]int
	Fuel        int // -1 if row has no fuel
	SpentFuel   int // -1 if the fuel has no spent-fuel result
}

// RecipeRow is one line of a ProductionTable: a recipe being executed
// by a chosen crafter, at a solved building count.
type RecipeRow struct {
	ID         uuid.UUID
	OwnerTable int // ProductionTable arena index

	Recipe  ID
	Crafter ID
	Fuel    ID
	HasFuel bool

	Modules ModuleConfig
	Beacons BeaconConfig

	VariantChoices []VariantChoice

	// Subgroup is the ProductionTable arena index nested under this
	// row, or -1 if the row has no nested table (spec.md §9 Design
	// Notes: "{ownerTableIdx, subgroupIdx?}").
	Subgroup int

	Enabled bool

	FixedBuildings   float64 // user-pinned building count, NaN if unset
	BuiltBuildings   float64 // solved building count
	RecipesPerSecond float64 // solved crafting rate

	WarningFlags RowWarningFlag
	Links        RowLinks

	// Parameters caches params.Calculate's last result for this row;
	// invalidated and refreshed at the start of each solve.
	Parameters Parameters
}

// ProductionTable is one page of recipe rows: either the project root
// or the contents nested under a RecipeRow's Subgroup.
type ProductionTable struct {
	ID uuid.UUID

	// Owner is the RecipeRow arena index this table is nested under,
	// or -1 for the project's root table.
	Owner int

	Rows  []int // RecipeRow arena indices, in display order
	Links []int // ProductionLink arena indices

	// LinkMap resolves Goods to a Links entry in O(1) within this
	// table, without scanning Links.
	LinkMap map[ID]int
}

// Arena stores every ProductionTable, RecipeRow, and ProductionLink of
// a project in flat, stable-indexed slices, replacing weak
// upward-pointer owner chains with plain integer indices (spec.md §9
// Design Notes).
type Arena struct {
	Tables []ProductionTable
	Rows   []RecipeRow
	Links  []ProductionLink
}

// RootTable returns the arena index of the project's top-level table.
func (a *Arena) RootTable() int {
	for i, t := range a.Tables {
		if t.Owner < 0 {
			return i
		}
	}
	return -1
}

// OwningRow walks from a ProductionTable up to the RecipeRow it is
// nested under, or returns (-1, false) for the root table.
func (a *Arena) OwningRow(tableIdx int) (int, bool) {
	owner := a.Tables[tableIdx].Owner
	if owner < 0 {
		return -1, false
	}
	return owner, true
}

// Depth returns how many ProductionTable levels separate tableIdx from
// the project root (0 for the root itself).
func (a *Arena) Depth(tableIdx int) int {
	depth := 0
	for {
		rowIdx, ok := a.OwningRow(tableIdx)
		if !ok {
			return depth
		}
		tableIdx = a.Rows[rowIdx].OwnerTable
		depth++
	}
}
