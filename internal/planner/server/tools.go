package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/foundryworks/production-planner/internal/planner/flow"
	"github.com/foundryworks/production-planner/internal/planner/search"
	"github.com/foundryworks/production-planner/internal/planner/solve"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// ToolDefinition describes a tool, mirroring the teacher's
// internal/crafting/mcp.ToolDefinition shape.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one schema property.
type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              any                 `json:"default,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

// GetToolDefinitions returns every tool this server exposes.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		solveTableTool(),
		recipeLookupTool(),
		searchTool(),
		billOfMaterialsTool(),
	}
}

func solveTableTool() ToolDefinition {
	minAmt := -1e12
	maxAmt := 1e12
	return ToolDefinition{
		Name:        "solve_table",
		Description: "Solve a flat production table: one row per recipe/crafter pairing and one link per pinned goods amount. Returns each row's recipesPerSecond and the table's aggregated flow.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"rows": {
					Type:        "array",
					Description: "Recipe rows to solve",
					Items: &Property{
						Type: "object",
						Properties: map[string]Property{
							"recipe_id":       {Type: "integer", Description: "Recipe catalog id"},
							"crafter_id":      {Type: "integer", Description: "Entity catalog id of the chosen crafter"},
							"fuel_id":         {Type: "integer", Description: "Goods catalog id of the chosen fuel, omit if none"},
							"fixed_buildings": {Type: "number", Description: "Pin the row to this many buildings instead of letting the solver choose"},
						},
						Required: []string{"recipe_id", "crafter_id"},
					},
				},
				"links": {
					Type:        "array",
					Description: "Pinned external amounts per goods",
					Items: &Property{
						Type: "object",
						Properties: map[string]Property{
							"goods_id":  {Type: "integer"},
							"amount":    {Type: "number", Minimum: &minAmt, Maximum: &maxAmt},
							"algorithm": {Type: "string", Enum: []string{"match", "allow_over_production", "allow_over_consumption"}, Default: "match"},
						},
						Required: []string{"goods_id"},
					},
				},
			},
			Required: []string{"rows", "links"},
		},
	}
}

func recipeLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "recipe_lookup",
		Description: "Look up a recipe by catalog id and return its ingredients, products, and Cost Analysis figures.",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: map[string]Property{"recipe_id": {Type: "integer", Description: "Recipe catalog id"}},
			Required:   []string{"recipe_id"},
		},
	}
}

func searchTool() ToolDefinition {
	return ToolDefinition{
		Name:        "search",
		Description: "Free-text search over recipe and ingredient/product names in the catalog.",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: map[string]Property{"query": {Type: "string", Description: "Case-insensitive substring to search for"}},
			Required:   []string{"query"},
		},
	}
}

func billOfMaterialsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "bill_of_materials",
		Description: "Solve a flat production table and flatten it into a sorted build list: craft steps first, then raw material totals.",
		InputSchema: solveTableTool().InputSchema,
	}
}

// SolveTableRequest is the validated payload of the "solve_table" and
// "bill_of_materials" tools.
type SolveTableRequest struct {
	Rows  []SolveRowRequest  `json:"rows" validate:"required,min=1,dive"`
	Links []SolveLinkRequest `json:"links" validate:"dive"`
}

type SolveRowRequest struct {
	RecipeID       int32   `json:"recipe_id" validate:"required"`
	CrafterID      int32   `json:"crafter_id" validate:"required"`
	FuelID         int32   `json:"fuel_id"`
	FixedBuildings float64 `json:"fixed_buildings" validate:"gte=0"`
}

type SolveLinkRequest struct {
	GoodsID   int32   `json:"goods_id" validate:"required"`
	Amount    float64 `json:"amount"`
	Algorithm string  `json:"algorithm" validate:"omitempty,oneof=match allow_over_production allow_over_consumption"`
}

var validate = validator.New()

func decodeSolveRequest(args json.RawMessage) (*SolveTableRequest, error) {
	var req SolveTableRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return &req, nil
}

// BuildArena turns a validated request into a single-table Arena
// ready for solve.Solve.
func BuildArena(req *SolveTableRequest) *planner.Arena {
	arena := &planner.Arena{}
	table := planner.ProductionTable{ID: uuid.New(), Owner: -1, LinkMap: map[planner.ID]int{}}
	arena.Tables = append(arena.Tables, table)
	const rootTable = 0

	for _, r := range req.Rows {
		row := planner.RecipeRow{
			ID:             uuid.New(),
			OwnerTable:     rootTable,
			Recipe:         planner.ID(r.RecipeID),
			Crafter:        planner.ID(r.CrafterID),
			Subgroup:       -1,
			Enabled:        true,
			FixedBuildings: r.FixedBuildings,
		}
		if r.FuelID != 0 {
			row.HasFuel = true
			row.Fuel = planner.ID(r.FuelID)
		}
		arena.Rows = append(arena.Rows, row)
		arena.Tables[rootTable].Rows = append(arena.Tables[rootTable].Rows, len(arena.Rows)-1)
	}

	for _, l := range req.Links {
		link := planner.ProductionLink{
			ID:        uuid.New(),
			Owner:     rootTable,
			Goods:     planner.ID(l.GoodsID),
			Amount:    l.Amount,
			Algorithm: parseAlgorithm(l.Algorithm),
		}
		arena.Links = append(arena.Links, link)
		idx := len(arena.Links) - 1
		arena.Tables[rootTable].Links = append(arena.Tables[rootTable].Links, idx)
		arena.Tables[rootTable].LinkMap[link.Goods] = idx
	}

	return arena
}

func parseAlgorithm(s string) planner.LinkAlgorithm {
	switch s {
	case "allow_over_production":
		return planner.LinkAllowOverProduction
	case "allow_over_consumption":
		return planner.LinkAllowOverConsumption
	default:
		return planner.LinkMatch
	}
}

// SolveTableResult is the "solve_table" tool's return value.
type SolveTableResult struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Rows    []RowResult `json:"rows"`
	Flow    []FlowEntry `json:"flow"`
}

type RowResult struct {
	RecipeID         int32   `json:"recipe_id"`
	RecipesPerSecond float64 `json:"recipes_per_second"`
	BuiltBuildings   float64 `json:"built_buildings"`
}

type FlowEntry struct {
	GoodsID int32   `json:"goods_id"`
	Amount  float64 `json:"amount"`
}

func (s *Server) toolSolveTable(ctx context.Context, args json.RawMessage) (any, error) {
	req, err := decodeSolveRequest(args)
	if err != nil {
		return nil, err
	}
	arena := BuildArena(req)

	result, err := solve.Solve(solve.Context{DB: s.engine.DB, Params: s.engine.Params, Cost: s.engine.Cost}, arena, 0)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}

	out := SolveTableResult{OK: result.OK, Message: result.Message}
	for _, rowIdx := range arena.Tables[0].Rows {
		row := &arena.Rows[rowIdx]
		out.Rows = append(out.Rows, RowResult{
			RecipeID:         int32(row.Recipe),
			RecipesPerSecond: row.RecipesPerSecond,
			BuiltBuildings:   row.BuiltBuildings,
		})
	}
	for _, e := range flow.Aggregate(s.engine.DB, arena, 0) {
		out.Flow = append(out.Flow, FlowEntry{GoodsID: int32(e.Goods), Amount: e.Amount})
	}
	return out, nil
}

// RecipeLookupResult is the "recipe_lookup" tool's return value.
type RecipeLookupResult struct {
	RecipeID    int32             `json:"recipe_id"`
	Name        string            `json:"name"`
	Time        float64           `json:"time"`
	Ingredients []IngredientEntry `json:"ingredients"`
	Products    []ProductEntry    `json:"products"`
	RecipeCost  float64           `json:"recipe_cost"`
	WastePct    float64           `json:"waste_percentage"`
}

type IngredientEntry struct {
	GoodsID int32   `json:"goods_id"`
	Amount  float64 `json:"amount"`
}

type ProductEntry struct {
	GoodsID int32   `json:"goods_id"`
	Amount  float64 `json:"amount"`
}

func (s *Server) toolRecipeLookup(ctx context.Context, args json.RawMessage) (any, error) {
	var req struct {
		RecipeID int32 `json:"recipe_id" validate:"required"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	id := planner.ID(req.RecipeID)
	if int(id) < 0 || int(id) >= len(s.engine.DB.Recipes) {
		return nil, fmt.Errorf("unknown recipe id %d", req.RecipeID)
	}
	recipe := s.engine.DB.RecipeByID(id)

	out := RecipeLookupResult{
		RecipeID:   req.RecipeID,
		Name:       recipe.Name,
		Time:       recipe.Time,
		RecipeCost: s.engine.Cost.RecipeCost(id),
		WastePct:   s.engine.Cost.RecipeWastePercentage(id),
	}
	for _, ing := range recipe.Ingredients {
		out.Ingredients = append(out.Ingredients, IngredientEntry{GoodsID: int32(ing.Goods), Amount: ing.Amount})
	}
	for _, p := range recipe.Products {
		out.Products = append(out.Products, ProductEntry{GoodsID: int32(p.Goods), Amount: p.Amount})
	}
	return out, nil
}

// SearchResult is the "search" tool's return value.
type SearchResult struct {
	Matches []RecipeMatch `json:"matches"`
}

type RecipeMatch struct {
	RecipeID int32  `json:"recipe_id"`
	Name     string `json:"name"`
}

func (s *Server) toolSearch(ctx context.Context, args json.RawMessage) (any, error) {
	var req struct {
		Query string `json:"query" validate:"required"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	// search.Match walks a project arena's rows; for a bare catalog
	// search with no project loaded yet, build a throwaway one-row
	// arena per accessible recipe and reuse the same predicate so the
	// matching rule stays in one place.
	var out SearchResult
	db := s.engine.DB
	for i := range db.Recipes {
		recipe := &db.Recipes[i]
		if !recipe.Accessible {
			continue
		}
		arena := &planner.Arena{
			Tables: []planner.ProductionTable{{Owner: -1, LinkMap: map[planner.ID]int{}}},
			Rows:   []planner.RecipeRow{{Recipe: recipe.ID, Crafter: planner.NoID, Subgroup: -1, Enabled: true}},
		}
		arena.Tables[0].Rows = []int{0}
		if search.Match(db, arena, 0, req.Query) {
			out.Matches = append(out.Matches, RecipeMatch{RecipeID: int32(recipe.ID), Name: recipe.Name})
		}
	}
	return out, nil
}

// BillOfMaterialsResult is the "bill_of_materials" tool's return
// value: the root table's craft steps sorted by recipe id (not by
// dependency order) plus raw material totals.
type BillOfMaterialsResult struct {
	OK           bool        `json:"ok"`
	Message      string      `json:"message,omitempty"`
	CraftSteps   []RowResult `json:"craft_steps"`
	RawMaterials []FlowEntry `json:"raw_materials"`
}

func (s *Server) toolBillOfMaterials(ctx context.Context, args json.RawMessage) (any, error) {
	req, err := decodeSolveRequest(args)
	if err != nil {
		return nil, err
	}
	arena := BuildArena(req)

	result, err := solve.Solve(solve.Context{DB: s.engine.DB, Params: s.engine.Params, Cost: s.engine.Cost}, arena, 0)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}

	out := BillOfMaterialsResult{OK: result.OK, Message: result.Message}
	for _, rowIdx := range arena.Tables[0].Rows {
		row := &arena.Rows[rowIdx]
		out.CraftSteps = append(out.CraftSteps, RowResult{
			RecipeID:         int32(row.Recipe),
			RecipesPerSecond: row.RecipesPerSecond,
			BuiltBuildings:   row.BuiltBuildings,
		})
	}
	sort.Slice(out.CraftSteps, func(i, j int) bool { return out.CraftSteps[i].RecipeID < out.CraftSteps[j].RecipeID })

	for _, e := range flow.Aggregate(s.engine.DB, arena, 0) {
		if e.Amount < 0 {
			out.RawMaterials = append(out.RawMaterials, FlowEntry{GoodsID: int32(e.Goods), Amount: -e.Amount})
		}
	}
	return out, nil
}
