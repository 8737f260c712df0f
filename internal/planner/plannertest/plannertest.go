// Package plannertest builds minimal, hand-assembled catalogs and
// arenas for the engine packages' tests, so lp/params/cost/solve/flow/
// search tests do not need a SQLite-backed store.Build pass just to
// exercise a couple of goods and one recipe.
package plannertest

import (
	"github.com/google/uuid"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// Catalog accumulates Goods/Recipes/Entities/Technologies in dense,
// catalog.Database-compatible slices as they are added, so tests can
// wire references (ingredient goods id, recipe crafter id) using the
// id an Add* call just returned.
type Catalog struct {
	goods        []planner.Goods
	recipes      []planner.Recipe
	entities     []planner.Entity
	technologies []planner.Technology
	variantLists []planner.FluidVariantList
}

// NewCatalog returns an empty builder. Every added object defaults to
// Accessible/AccessibleAtNextMilestone true, matching
// catalog.AlwaysAccessible's predicate used outside of milestone
// tests.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// AddItem appends an Item good and returns its id. mutate, if non-nil,
// adjusts the Goods after its Object/Item defaults are set.
func (c *Catalog) AddItem(name string, mutate func(*planner.Goods)) planner.ID {
	id := planner.ID(len(c.goods))
	g := planner.Goods{
		Object: planner.Object{ID: id, Kind: planner.KindItem, Name: name, Accessible: true, AccessibleAtNextMilestone: true},
		Item:   &planner.ItemData{StackSize: 100},
	}
	if mutate != nil {
		mutate(&g)
	}
	c.goods = append(c.goods, g)
	return id
}

// AddFluid appends a Fluid good at the given temperature.
func (c *Catalog) AddFluid(name string, temperature float64, mutate func(*planner.Goods)) planner.ID {
	id := planner.ID(len(c.goods))
	g := planner.Goods{
		Object: planner.Object{ID: id, Kind: planner.KindFluid, Name: name, Accessible: true, AccessibleAtNextMilestone: true},
		Fluid:  &planner.FluidData{Temperature: temperature, OriginalName: name},
	}
	if mutate != nil {
		mutate(&g)
	}
	c.goods = append(c.goods, g)
	return id
}

// AddSpecial appends a Special good (power, research, and so on).
func (c *Catalog) AddSpecial(name string, mutate func(*planner.Goods)) planner.ID {
	id := planner.ID(len(c.goods))
	g := planner.Goods{
		Object:  planner.Object{ID: id, Kind: planner.KindSpecial, Name: name, Accessible: true, AccessibleAtNextMilestone: true},
		Special: &planner.SpecialData{},
	}
	if mutate != nil {
		mutate(&g)
	}
	c.goods = append(c.goods, g)
	return id
}

// AddFluidVariantList registers a temperature-ascending variant list
// and back-fills each member Goods' VariantListID.
func (c *Catalog) AddFluidVariantList(originalName string, variants ...planner.ID) int {
	idx := len(c.variantLists)
	c.variantLists = append(c.variantLists, planner.FluidVariantList{OriginalName: originalName, Variants: variants})
	for _, v := range variants {
		c.goods[v].Fluid.VariantListID = idx
	}
	return idx
}

// AddEntity appends an Entity and returns its id.
func (c *Catalog) AddEntity(name string, kind planner.EntityKind, mutate func(*planner.Entity)) planner.ID {
	id := planner.ID(len(c.entities))
	e := planner.Entity{
		Object:     planner.Object{ID: id, Kind: planner.KindEntity, Name: name, Accessible: true, AccessibleAtNextMilestone: true},
		EntityKind: kind,
	}
	if mutate != nil {
		mutate(&e)
	}
	c.entities = append(c.entities, e)
	return id
}

// AddCrafter is the common case of AddEntity for an EntityCrafter
// at the given speed with a void energy source (no power or fuel
// requirement).
func (c *Catalog) AddCrafter(name string, craftingSpeed float64, mutate func(*planner.Entity)) planner.ID {
	return c.AddEntity(name, planner.EntityCrafter, func(e *planner.Entity) {
		e.Crafter = &planner.CrafterData{CraftingSpeed: craftingSpeed}
		e.Energy = planner.EntityEnergy{Kind: planner.EnergyVoid}
		if mutate != nil {
			mutate(e)
		}
	})
}

// AddRecipe appends a Recipe and returns its id. mutate is required to
// set Ingredients/Products/Crafters since there is no sensible default.
func (c *Catalog) AddRecipe(name string, mutate func(*planner.Recipe)) planner.ID {
	id := planner.ID(len(c.recipes))
	r := planner.Recipe{
		Object:          planner.Object{ID: id, Kind: planner.KindRecipe, Name: name, Accessible: true, AccessibleAtNextMilestone: true},
		Time:            1,
		Enabled:         true,
		HasSourceEntity: false,
	}
	if mutate != nil {
		mutate(&r)
	}
	c.recipes = append(c.recipes, r)
	return id
}

// AddTechnology appends a Technology and returns its id.
func (c *Catalog) AddTechnology(name string, mutate func(*planner.Technology)) planner.ID {
	id := planner.ID(len(c.technologies))
	t := planner.Technology{
		Recipe: planner.Recipe{Object: planner.Object{ID: id, Kind: planner.KindTechnology, Name: name, Accessible: true, AccessibleAtNextMilestone: true}},
		Count:  1,
	}
	if mutate != nil {
		mutate(&t)
	}
	c.technologies = append(c.technologies, t)
	return id
}

// Database snapshots the accumulated collections into a
// catalog.Database, usable directly by params/cost/solve/flow/search —
// none of them touch the store-id lookup maps that catalog.Build fills
// in, only the exported slices and accessor methods.
func (c *Catalog) Database() *catalog.Database {
	return &catalog.Database{
		Goods:             c.goods,
		Recipes:           c.recipes,
		Entities:          c.entities,
		Technologies:      c.technologies,
		FluidVariantLists: c.variantLists,
	}
}

// Arena builds a single-table planner.Arena: every row lives in the
// root table, every link in its LinkMap. Good enough for every engine
// test that does not specifically exercise subgroup nesting.
type Arena struct {
	rows  []planner.RecipeRow
	links []planner.ProductionLink
}

func NewArena() *Arena {
	return &Arena{}
}

// AddRow appends a RecipeRow executing recipe on crafter, enabled, with
// no fixed building count. mutate can set Fuel/Modules/Beacons/etc.
func (a *Arena) AddRow(recipe, crafter planner.ID, mutate func(*planner.RecipeRow)) int {
	idx := len(a.rows)
	row := planner.RecipeRow{
		ID:         uuid.New(),
		OwnerTable: 0,
		Recipe:     recipe,
		Crafter:    crafter,
		Subgroup:   -1,
		Enabled:    true,
	}
	if mutate != nil {
		mutate(&row)
	}
	a.rows = append(a.rows, row)
	return idx
}

// AddLink appends a ProductionLink on goods with the given demand
// amount and reconciliation algorithm.
func (a *Arena) AddLink(goods planner.ID, amount float64, algo planner.LinkAlgorithm) int {
	idx := len(a.links)
	a.links = append(a.links, planner.ProductionLink{
		ID:        uuid.New(),
		Owner:     0,
		Goods:     goods,
		Amount:    amount,
		Algorithm: algo,
	})
	return idx
}

// Arena finalizes the root ProductionTable and returns the planner.Arena.
func (a *Arena) Arena() *planner.Arena {
	rowIdx := make([]int, len(a.rows))
	for i := range rowIdx {
		rowIdx[i] = i
	}
	linkIdx := make([]int, len(a.links))
	linkMap := make(map[planner.ID]int, len(a.links))
	for i := range linkIdx {
		linkIdx[i] = i
		linkMap[a.links[i].Goods] = i
	}

	return &planner.Arena{
		Tables: []planner.ProductionTable{{
			ID:      uuid.New(),
			Owner:   -1,
			Rows:    rowIdx,
			Links:   linkIdx,
			LinkMap: linkMap,
		}},
		Rows:  a.rows,
		Links: a.links,
	}
}
