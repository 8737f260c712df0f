// Package catalog builds the immutable, id-dense object catalog
// ("Database" in the analytical engines' vocabulary) from the raw
// store rows: stable integer identifiers, dense keyed maps, and typed
// collections for every kind of catalog object.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/foundryworks/production-planner/internal/planner/store"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// AccessibilityPredicates are the external milestone/tech-unlock
// collaborators named in spec.md §6. The catalog resolves them once,
// at build time, and never calls them again afterward.
type AccessibilityPredicates struct {
	IsAccessible                func(kind planner.ObjectKind, id planner.ID) bool
	IsAccessibleAtNextMilestone func(kind planner.ObjectKind, id planner.ID) bool
}

// AlwaysAccessible is the trivial predicate set used when no
// milestone/tech-unlock system is wired in (e.g. during import or in
// tests): every object is accessible now and at the next milestone.
func AlwaysAccessible() AccessibilityPredicates {
	return AccessibilityPredicates{
		IsAccessible:                func(planner.ObjectKind, planner.ID) bool { return true },
		IsAccessibleAtNextMilestone: func(planner.ObjectKind, planner.ID) bool { return true },
	}
}

// Database is the immutable object catalog built once after data load.
// All slices are dense and indexed by the corresponding ID.
type Database struct {
	Goods      []planner.Goods
	Recipes    []planner.Recipe
	Technologies []planner.Technology
	Entities   []planner.Entity

	FluidVariantLists []planner.FluidVariantList

	// idByStoreID translates the store's int64 primary keys to the
	// catalog's dense planner.ID space, per collection.
	itemIDByStoreID    map[int64]planner.ID
	fluidIDByStoreID   map[int64]planner.ID
	specialIDByStoreID map[int64]planner.ID
	recipeIDByStoreID  map[int64]planner.ID
	techIDByStoreID    map[int64]planner.ID
	entityIDByStoreID  map[int64]planner.ID
}

// CreateMapping returns a dense array of length len(Goods)/len(Recipes)/etc,
// built lazily by callers that need a per-object output slot (solver
// tables, Cost Analysis's cost[] and flow[] arrays). The generic form
// mirrors spec.md §4.5's `CreateMapping<T>(keyCollection)`.
func CreateMapping[T any](count int) []T {
	return make([]T, count)
}

// GoodsByID returns the Goods at id, or panics if out of range; id is
// always catalog-assigned and dense, so an out-of-range id is a
// programmer error, not a runtime condition to recover from.
func (db *Database) GoodsByID(id planner.ID) *planner.Goods {
	return &db.Goods[id]
}

func (db *Database) RecipeByID(id planner.ID) *planner.Recipe {
	return &db.Recipes[id]
}

func (db *Database) EntityByID(id planner.ID) *planner.Entity {
	return &db.Entities[id]
}

func (db *Database) TechnologyByID(id planner.ID) *planner.Technology {
	return &db.Technologies[id]
}

// Build reads every catalog table from s and resolves it into a dense
// Database, running the accessibility predicates exactly once per
// object (spec.md §3.1, §4.5).
func Build(ctx context.Context, s *store.DB, pred AccessibilityPredicates) (*Database, error) {
	b := &builder{
		store: s,
		pred:  pred,
		db: &Database{
			itemIDByStoreID:    map[int64]planner.ID{},
			fluidIDByStoreID:   map[int64]planner.ID{},
			specialIDByStoreID: map[int64]planner.ID{},
			recipeIDByStoreID:  map[int64]planner.ID{},
			techIDByStoreID:    map[int64]planner.ID{},
			entityIDByStoreID:  map[int64]planner.ID{},
		},
	}

	if err := b.buildGoods(ctx); err != nil {
		return nil, fmt.Errorf("building goods: %w", err)
	}
	if err := b.buildEntities(ctx); err != nil {
		return nil, fmt.Errorf("building entities: %w", err)
	}
	if err := b.buildRecipes(ctx); err != nil {
		return nil, fmt.Errorf("building recipes: %w", err)
	}
	if err := b.buildTechnologies(ctx); err != nil {
		return nil, fmt.Errorf("building technologies: %w", err)
	}
	if err := b.buildFluidVariantLists(ctx); err != nil {
		return nil, fmt.Errorf("building fluid variant lists: %w", err)
	}
	b.resolveDeferred()

	return b.db, nil
}

// builder accumulates cross-collection references (fuelResult,
// placeResult, sourceEntity, and so on) that can only be resolved once
// every collection has been assigned dense ids.
type builder struct {
	store *store.DB
	pred  AccessibilityPredicates
	db    *Database

	deferredItemFuelResult    []deferredRef
	deferredItemPlaceResult   []deferredRef
	deferredItemMiscSource    []deferredRef
	deferredRecipeSource      []deferredRef
	deferredRecipeUnlocks     []deferredRef
	deferredTechPrereqs       []deferredRef
	deferredTechUnlockRecipes []deferredRef
	pendingModuleRefs         []deferredModuleRefs
}

type deferredRef struct {
	ownerID    planner.ID
	storeRefID int64
}

func sortedKeys(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
