// Package importer loads a mod-pack's static data into the store,
// grounded on the teacher's internal/crafting/sync.Syncer: read one
// JSON document, decode it into the store's flat row types, and bulk
// insert each collection inside its own transaction-backed call.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/foundryworks/production-planner/internal/planner/store"
)

// ModPack is the on-disk shape an "import" run reads: one JSON file
// holding every collection a catalog.Build pass needs, keyed exactly
// like the store's row types so no field-by-field remapping is
// needed.
type ModPack struct {
	Items         []store.ItemRow         `json:"items"`
	Fluids        []store.FluidRow        `json:"fluids"`
	FluidVariants []store.FluidVariantListRow `json:"fluid_variant_lists"`
	SpecialGoods  []store.SpecialGoodsRow `json:"special_goods"`
	Recipes       []store.RecipeRow       `json:"recipes"`
	Technologies  []store.TechnologyRow   `json:"technologies"`
	Entities      []store.EntityRow       `json:"entities"`
}

// LoadFile reads path and decodes it as a ModPack.
func LoadFile(path string) (*ModPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mod pack %s: %w", path, err)
	}
	var pack ModPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing mod pack %s: %w", path, err)
	}
	return &pack, nil
}

// Import bulk-inserts every collection in pack into db, one store call
// per collection so a partial failure names exactly which collection
// did not load.
func Import(ctx context.Context, db *store.DB, pack *ModPack) error {
	if err := store.NewItemStore(db).BulkInsertItems(ctx, pack.Items); err != nil {
		return fmt.Errorf("importing items: %w", err)
	}
	if err := store.NewFluidStore(db).BulkInsertFluids(ctx, pack.Fluids, pack.FluidVariants); err != nil {
		return fmt.Errorf("importing fluids: %w", err)
	}
	if err := store.NewSpecialGoodsStore(db).BulkInsertSpecialGoods(ctx, pack.SpecialGoods); err != nil {
		return fmt.Errorf("importing special goods: %w", err)
	}
	if err := store.NewEntityStore(db).BulkInsertEntities(ctx, pack.Entities); err != nil {
		return fmt.Errorf("importing entities: %w", err)
	}
	if err := store.NewRecipeStore(db).BulkInsertRecipes(ctx, pack.Recipes); err != nil {
		return fmt.Errorf("importing recipes: %w", err)
	}
	if err := store.NewTechnologyStore(db).BulkInsertTechnologies(ctx, pack.Technologies); err != nil {
		return fmt.Errorf("importing technologies: %w", err)
	}
	return nil
}

// ImportFile is the LoadFile+Import convenience the CLI's "import"
// command uses directly.
func ImportFile(ctx context.Context, db *store.DB, path string) (*ModPack, error) {
	pack, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Import(ctx, db, pack); err != nil {
		return nil, err
	}
	return pack, nil
}
