package planner

// Goods is anything a Recipe can consume or produce: an Item, a Fluid,
// or a Special good (power, research). Dispatch on Kind instead of
// interface methods, per the closed-set-of-kinds pattern: exactly one
// of Item/Fluid/Special is non-nil, matching Kind.
type Goods struct {
	Object

	Item    *ItemData
	Fluid   *FluidData
	Special *SpecialData
}

// ModuleEffects describes the bonuses a module item grants when
// inserted into a crafter or beacon.
type ModuleEffects struct {
	Speed         float64
	Productivity  float64
	Consumption   float64
	Pollution     float64
}

// ItemData holds the attributes specific to Item goods.
type ItemData struct {
	StackSize int

	HasFuelResult bool
	FuelResult    ID // item produced when this item is burned as fuel

	// FuelValue is the energy released per unit when this item is
	// burned as a SolidFuel-kind energy source (spec.md §8 scenario 2);
	// zero if this item is never used as fuel.
	FuelValue float64

	HasPlaceResult bool
	PlaceResult    ID // entity id this item places when built

	// HasMiscSource marks an item derived from a single simpler goods
	// (e.g. a barrelled fluid's contents) used only for Cost
	// Analysis's tie-break constraint (spec.md §4.2, §8 invariant):
	// cost[item] is never allowed to exceed cost[MiscSource].
	HasMiscSource bool
	MiscSource    ID

	// Module-specific fields; nil unless this item is usable as a
	// module.
	Module *ModuleData
}

// ModuleData captures the module-acceptance rules from spec.md §4.1:
// "(module, crafter) is allowed iff every non-zero effect of the
// module is permitted by crafter.allowedEffects. Recipes may further
// restrict via their own module list".
type ModuleData struct {
	Effects ModuleEffects

	// RecipeAllowlist, if non-empty, lists the only recipes this
	// module may be used with.
	RecipeAllowlist []ID

	// CrafterBlacklist lists entities this module may never be
	// inserted into regardless of allowedEffects.
	CrafterBlacklist []ID
}

// FluidData holds the attributes specific to Fluid goods. Fluids at
// different temperatures are distinct Goods that share an
// OriginalName and are linked through a FluidVariantList.
type FluidData struct {
	Temperature    float64
	TemperatureMin float64
	TemperatureMax float64
	HeatCapacity   float64
	HeatValue      float64

	OriginalName string

	// VariantListID indexes into Database.FluidVariantLists; all
	// fluids sharing an OriginalName share a VariantListID.
	VariantListID int
}

// FluidVariantList is a temperature-ascending list of Goods IDs for
// fluids sharing an OriginalName. Cost Analysis ties successive pairs
// together so that cost is monotone non-increasing with temperature
// (spec.md §3.1, §4.2).
type FluidVariantList struct {
	OriginalName string
	// Variants is sorted ascending by temperature.
	Variants []ID
}

// SpecialData holds the attributes specific to Special goods (power,
// research units, and similar non-physical goods).
type SpecialData struct {
	IsPower    bool
	IsResearch bool
}
