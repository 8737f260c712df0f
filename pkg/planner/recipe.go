package planner

// RecipeFlag holds boolean recipe attributes that would otherwise be
// scattered bool fields. Bit flags keep Recipe small and let the
// solver test multiple conditions with one mask compare.
type RecipeFlag uint32

const (
	// RecipeFlagTimeOverridden marks a special marker recipe (spec.md
	// §3.1) whose Time is not a real crafting duration but a
	// bookkeeping value supplied by the flag-specific caller.
	RecipeFlagTimeOverridden RecipeFlag = 1 << iota
	// RecipeFlagMapGeneratedSource marks a recipe whose SourceEntity
	// is itself map-generated (mining recipes), triggering the
	// logistics-cost mining penalty in Cost Analysis.
	RecipeFlagMapGeneratedSource
)

// Ingredient is one required input of a Recipe.
type Ingredient struct {
	Goods  ID
	Amount float64

	// IsCatalyst marks the portion of this ingredient that is
	// returned by a matching Product; catalyst amounts do not count
	// against the productivity-eligible portion of that product
	// (spec.md §3.1, glossary "Catalyst").
	IsCatalyst bool

	// VariantGroup is >=0 when this ingredient accepts any fluid
	// temperature variant from a FluidVariantList; RecipeRow.Links
	// resolves the concrete choice per row.
	VariantGroup int
}

// Product is one output of a Recipe.
type Product struct {
	Goods       ID
	Probability float64
	AmountMin   float64
	AmountMax   float64

	// Amount = Probability * (AmountMin + AmountMax) / 2, precomputed
	// at catalog build time (spec.md §3.1).
	Amount float64

	// CatalystAmount is the portion of Amount that re-enters the
	// recipe as a matching ingredient.
	CatalystAmount float64

	// ProductivityAmount is Amount-CatalystAmount: the portion
	// eligible for the productivity bonus.
	ProductivityAmount float64
}

// Recipe is a transformation executed by a Crafter entity.
type Recipe struct {
	Object

	Ingredients []Ingredient
	Products    []Product
	Time        float64
	Flags       RecipeFlag
	Enabled     bool

	// AllowedModules, if non-empty, restricts module usage to this
	// set regardless of what the chosen crafter otherwise allows
	// (spec.md §4.1).
	AllowedModules []ID

	// Crafters lists the Entity ids capable of executing this recipe.
	Crafters []ID

	HasSourceEntity bool
	SourceEntity    ID // Entity id; set for mining/pumping recipes

	HasMainProduct bool
	MainProduct    int // index into Products

	UnlockingTechnologies []ID
}

// ProductAmountAt returns the Products[i] flow contributed at the
// given productivity multiplier: the catalyst portion is unaffected,
// the rest scales with (1+productivity).
func (r *Recipe) ProductAmountAt(i int, productivity float64) float64 {
	p := r.Products[i]
	return p.CatalystAmount + p.ProductivityAmount*(1+productivity)
}
