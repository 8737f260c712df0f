// Package search implements the Search/Predicate Facade (spec.md
// §4.5): pure functions over the project arena and catalog used by
// the other engines and by the UI's text search box.
package search

import (
	"strings"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// FindLink walks the owner chain from tableIdx outward until it finds
// a ProductionLink on goodsID, or the arena root is reached without a
// match (spec.md §4.5, §9 Design Notes: "links resolve by walking up;
// ... the owner walk is an index loop").
func FindLink(arena *planner.Arena, tableIdx int, goodsID planner.ID) (int, bool) {
	for {
		if linkIdx, ok := arena.Tables[tableIdx].LinkMap[goodsID]; ok {
			return linkIdx, true
		}
		rowIdx, ok := arena.OwningRow(tableIdx)
		if !ok {
			return -1, false
		}
		tableIdx = arena.Rows[rowIdx].OwnerTable
	}
}

// HasSpentFuel reports whether fuelGoods produces a byproduct when
// burned (e.g. burnt solid fuel leaving ash), returning that
// byproduct's goods id (spec.md §3.2 "spent-fuel Goods").
func HasSpentFuel(db *catalog.Database, fuelGoods planner.ID) (planner.ID, bool) {
	g := db.GoodsByID(fuelGoods)
	if g.Item == nil || !g.Item.HasFuelResult {
		return planner.NoID, false
	}
	return g.Item.FuelResult, true
}

// Match reports whether query matches any row or link reachable from
// tableIdx, walking subgroups recursively (spec.md §4.5): a row
// matches if its recipe, chosen crafter, chosen fuel, or any
// ingredient/product localized name contains query (case-insensitive).
func Match(db *catalog.Database, arena *planner.Arena, tableIdx int, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return matchTable(db, arena, tableIdx, query)
}

func matchTable(db *catalog.Database, arena *planner.Arena, tableIdx int, query string) bool {
	table := &arena.Tables[tableIdx]

	for _, rowIdx := range table.Rows {
		row := &arena.Rows[rowIdx]
		if matchRow(db, row, query) {
			return true
		}
		if row.Subgroup >= 0 && matchTable(db, arena, row.Subgroup, query) {
			return true
		}
	}

	for _, linkIdx := range table.Links {
		link := &arena.Links[linkIdx]
		if containsFold(db.GoodsByID(link.Goods).Name, query) {
			return true
		}
	}

	return false
}

func matchRow(db *catalog.Database, row *planner.RecipeRow, query string) bool {
	recipe := db.RecipeByID(row.Recipe)
	if containsFold(recipe.Name, query) {
		return true
	}
	if row.Crafter != planner.NoID && containsFold(db.EntityByID(row.Crafter).Name, query) {
		return true
	}
	if row.HasFuel && row.Fuel != planner.NoID && containsFold(db.GoodsByID(row.Fuel).Name, query) {
		return true
	}
	for _, ing := range recipe.Ingredients {
		if containsFold(db.GoodsByID(ing.Goods).Name, query) {
			return true
		}
	}
	for _, p := range recipe.Products {
		if containsFold(db.GoodsByID(p.Goods).Name, query) {
			return true
		}
	}
	return false
}

func containsFold(name, query string) bool {
	return strings.Contains(strings.ToLower(name), query)
}
