package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// buildTestEngine wires a filler item/crafter/recipe at id 0 and a
// real iron-plate chain at id 1/2, since SolveRowRequest/SolveLinkRequest
// use validator's "required" tag, which rejects a zero-valued id.
func buildTestEngine(t *testing.T) (*Engine, planner.ID, planner.ID, planner.ID, planner.ID) {
	t.Helper()
	cat := plannertest.NewCatalog()
	cat.AddItem("filler", nil)
	ore := cat.AddItem("iron-ore", nil)
	plate := cat.AddItem("iron-plate", nil)
	cat.AddCrafter("filler-crafter", 1, nil)
	furnace := cat.AddCrafter("furnace", 1, nil)
	cat.AddRecipe("filler-recipe", func(r *planner.Recipe) {
		r.Accessible = false
		r.Crafters = []planner.ID{furnace}
	})
	recipe := cat.AddRecipe("iron-plate", func(r *planner.Recipe) {
		r.Time = 3.5
		r.Ingredients = []planner.Ingredient{{Goods: ore, Amount: 1}}
		r.Products = []planner.Product{{Goods: plate, Amount: 1}}
		r.Crafters = []planner.ID{furnace}
	})
	db := cat.Database()

	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	require.NoError(t, err)

	return &Engine{DB: db, Cost: costAn, Params: params.Context{DB: db}}, recipe, furnace, ore, plate
}

func TestDecodeSolveRequest_ValidatesRequiredFields(t *testing.T) {
	req, err := decodeSolveRequest(json.RawMessage(`{"rows":[{"recipe_id":1,"crafter_id":1}],"links":[{"goods_id":2,"amount":1,"algorithm":"match"}]}`))
	require.NoError(t, err)
	assert.Len(t, req.Rows, 1)
	assert.Equal(t, int32(1), req.Rows[0].RecipeID)

	_, err = decodeSolveRequest(json.RawMessage(`{"rows":[],"links":[]}`))
	assert.Error(t, err)

	_, err = decodeSolveRequest(json.RawMessage(`{"rows":[{"recipe_id":1,"crafter_id":1}],"links":[{"goods_id":2,"algorithm":"bogus"}]}`))
	assert.Error(t, err)
}

func TestBuildArena_WiresRowsLinksAndFuel(t *testing.T) {
	req := &SolveTableRequest{
		Rows: []SolveRowRequest{
			{RecipeID: 2, CrafterID: 1, FuelID: 5, FixedBuildings: 3},
		},
		Links: []SolveLinkRequest{
			{GoodsID: 4, Amount: 2, Algorithm: "allow_over_production"},
		},
	}

	arena := BuildArena(req)
	require.Len(t, arena.Rows, 1)
	row := arena.Rows[0]
	assert.Equal(t, planner.ID(2), row.Recipe)
	assert.Equal(t, planner.ID(1), row.Crafter)
	assert.Equal(t, float64(3), row.FixedBuildings)
	assert.True(t, row.HasFuel)
	assert.Equal(t, planner.ID(5), row.Fuel)

	require.Len(t, arena.Links, 1)
	link := arena.Links[0]
	assert.Equal(t, planner.ID(4), link.Goods)
	assert.Equal(t, planner.LinkAllowOverProduction, link.Algorithm)
	assert.Equal(t, 0, arena.Tables[0].LinkMap[link.Goods])
}

func TestBuildArena_DefaultAlgorithmIsMatch(t *testing.T) {
	req := &SolveTableRequest{Links: []SolveLinkRequest{{GoodsID: 1, Amount: 1}}}
	arena := BuildArena(req)
	assert.Equal(t, planner.LinkMatch, arena.Links[0].Algorithm)
}

func TestToolSolveTable_ReturnsRowsAndFlow(t *testing.T) {
	eng, recipe, furnace, ore, plate := buildTestEngine(t)
	s := NewServer(eng, nil)

	args, err := json.Marshal(SolveTableRequest{
		Rows:  []SolveRowRequest{{RecipeID: int32(recipe), CrafterID: int32(furnace)}},
		Links: []SolveLinkRequest{{GoodsID: int32(plate), Amount: 1, Algorithm: "match"}},
	})
	require.NoError(t, err)

	result, err := s.toolSolveTable(context.Background(), args)
	require.NoError(t, err)

	out, ok := result.(SolveTableResult)
	require.True(t, ok)
	require.True(t, out.OK)
	require.Len(t, out.Rows, 1)
	assert.InDelta(t, 1, out.Rows[0].RecipesPerSecond, 1e-6)

	require.Len(t, out.Flow, 1)
	assert.Equal(t, int32(ore), out.Flow[0].GoodsID)
	assert.InDelta(t, -1, out.Flow[0].Amount, 1e-9)
}

func TestToolRecipeLookup_ReturnsIngredientsAndCost(t *testing.T) {
	eng, recipe, _, ore, plate := buildTestEngine(t)
	s := NewServer(eng, nil)

	args, err := json.Marshal(map[string]any{"recipe_id": int32(recipe)})
	require.NoError(t, err)

	result, err := s.toolRecipeLookup(context.Background(), args)
	require.NoError(t, err)

	out, ok := result.(RecipeLookupResult)
	require.True(t, ok)
	assert.Equal(t, "iron-plate", out.Name)
	require.Len(t, out.Ingredients, 1)
	assert.Equal(t, int32(ore), out.Ingredients[0].GoodsID)
	require.Len(t, out.Products, 1)
	assert.Equal(t, int32(plate), out.Products[0].GoodsID)
	assert.Greater(t, out.RecipeCost, float64(0))
}

func TestToolRecipeLookup_RejectsUnknownID(t *testing.T) {
	eng, _, _, _, _ := buildTestEngine(t)
	s := NewServer(eng, nil)

	args, err := json.Marshal(map[string]any{"recipe_id": int32(99)})
	require.NoError(t, err)

	_, err = s.toolRecipeLookup(context.Background(), args)
	assert.Error(t, err)
}

func TestToolSearch_ExcludesInaccessibleRecipes(t *testing.T) {
	eng, _, _, _, _ := buildTestEngine(t)
	s := NewServer(eng, nil)

	args, err := json.Marshal(map[string]any{"query": "filler"})
	require.NoError(t, err)
	result, err := s.toolSearch(context.Background(), args)
	require.NoError(t, err)
	out := result.(SearchResult)
	assert.Empty(t, out.Matches, "the filler recipe is inaccessible and must not surface in search")

	args, err = json.Marshal(map[string]any{"query": "iron-plate"})
	require.NoError(t, err)
	result, err = s.toolSearch(context.Background(), args)
	require.NoError(t, err)
	out = result.(SearchResult)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "iron-plate", out.Matches[0].Name)
}

func TestToolBillOfMaterials_SplitsCraftStepsAndRawMaterials(t *testing.T) {
	eng, recipe, furnace, ore, plate := buildTestEngine(t)
	s := NewServer(eng, nil)

	args, err := json.Marshal(SolveTableRequest{
		Rows:  []SolveRowRequest{{RecipeID: int32(recipe), CrafterID: int32(furnace)}},
		Links: []SolveLinkRequest{{GoodsID: int32(plate), Amount: 1, Algorithm: "match"}},
	})
	require.NoError(t, err)

	result, err := s.toolBillOfMaterials(context.Background(), args)
	require.NoError(t, err)

	out, ok := result.(BillOfMaterialsResult)
	require.True(t, ok)
	require.True(t, out.OK)
	require.Len(t, out.CraftSteps, 1)
	assert.Equal(t, int32(recipe), out.CraftSteps[0].RecipeID)

	require.Len(t, out.RawMaterials, 1)
	assert.Equal(t, int32(ore), out.RawMaterials[0].GoodsID)
	assert.InDelta(t, 1, out.RawMaterials[0].Amount, 1e-9, "raw materials report positive consumption totals")
}
