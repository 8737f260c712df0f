package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/importer"
	"github.com/foundryworks/production-planner/internal/planner/store"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// buildPack wires a single furnace/iron-plate chain through the full
// store -> importer -> catalog pipeline, mirroring spec.md §8
// scenario 1's shape.
func buildPack() *importer.ModPack {
	return &importer.ModPack{
		Items: []store.ItemRow{
			{ID: 1, Name: "iron-ore", Accessible: true, AccessibleAtNextMilestone: true, StackSize: 50},
			{ID: 2, Name: "iron-plate", Accessible: true, AccessibleAtNextMilestone: true, StackSize: 100},
		},
		Entities: []store.EntityRow{
			{
				ID:         1,
				Name:       "stone-furnace",
				Accessible: true, AccessibleAtNextMilestone: true,
				EntityKind: int(planner.EntityCrafter),
				Crafter:    &store.EntityCrafterRow{CraftingSpeed: 1},
			},
		},
		Recipes: []store.RecipeRow{
			{
				ID:         1,
				Name:       "iron-plate",
				Accessible: true, AccessibleAtNextMilestone: true,
				Time:    3.5,
				Enabled: true,
				Ingredients: []store.IngredientRow{
					{GoodsKind: int(planner.KindItem), GoodsID: 1, Amount: 1},
				},
				Products: []store.ProductRow{
					{GoodsKind: int(planner.KindItem), GoodsID: 2, Amount: 1},
				},
				Crafters: []int64{1},
			},
		},
	}
}

func TestImportThenBuild_ResolvesDenseCatalogFromModPack(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenAndInit(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	pack := buildPack()
	require.NoError(t, importer.Import(ctx, db, pack))

	cat, err := catalog.Build(ctx, db, catalog.AlwaysAccessible())
	require.NoError(t, err)

	require.Len(t, cat.Goods, 2)
	assert.Equal(t, "iron-ore", cat.Goods[0].Name)
	assert.Equal(t, planner.KindItem, cat.Goods[0].Kind)
	assert.Equal(t, "iron-plate", cat.Goods[1].Name)

	require.Len(t, cat.Entities, 1)
	require.NotNil(t, cat.Entities[0].Crafter)
	assert.Equal(t, float64(1), cat.Entities[0].Crafter.CraftingSpeed)

	require.Len(t, cat.Recipes, 1)
	recipe := cat.Recipes[0]
	require.Len(t, recipe.Ingredients, 1)
	require.Len(t, recipe.Products, 1)
	assert.Equal(t, cat.Goods[0].ID, recipe.Ingredients[0].Goods)
	assert.Equal(t, cat.Goods[1].ID, recipe.Products[0].Goods)
	require.Len(t, recipe.Crafters, 1)
	assert.Equal(t, cat.Entities[0].ID, recipe.Crafters[0])
}

// TestImportThenBuild_RunsAccessibilityPredicatesPerObject confirms
// Build calls the predicates once per object rather than hard-coding
// AlwaysAccessible's trivial answer.
func TestImportThenBuild_RunsAccessibilityPredicatesPerObject(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenAndInit(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	pack := buildPack()
	require.NoError(t, importer.Import(ctx, db, pack))

	seen := map[planner.ObjectKind]int{}
	pred := catalog.AccessibilityPredicates{
		IsAccessible: func(kind planner.ObjectKind, id planner.ID) bool {
			seen[kind]++
			return kind != planner.KindEntity
		},
		IsAccessibleAtNextMilestone: func(planner.ObjectKind, planner.ID) bool { return true },
	}

	cat, err := catalog.Build(ctx, db, pred)
	require.NoError(t, err)

	assert.False(t, cat.Entities[0].Accessible)
	assert.True(t, cat.Goods[0].Accessible)
	assert.True(t, cat.Recipes[0].Accessible)
	assert.Equal(t, 2, seen[planner.KindItem])
	assert.Equal(t, 1, seen[planner.KindEntity])
	assert.Equal(t, 1, seen[planner.KindRecipe])
}
