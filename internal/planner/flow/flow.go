// Package flow implements the Flow Aggregator (spec.md §4.4): it
// rolls up, per ProductionTable, how much of each Goods the table
// nets produces or consumes, recursing into subgroups and propagating
// whatever a table's own links leave unmatched up to its parent.
package flow

import (
	"sort"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/search"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// Entry is one row of a table's aggregated flow: Amount is signed,
// positive for net production and negative for net consumption. Link
// is the ProductionLink arena index carrying Goods in this table, or
// -1 if the table has none (the flow is purely internal bookkeeping
// exposed for display).
type Entry struct {
	Goods  planner.ID
	Amount float64
	Link   int
}

// Aggregate returns tableIdx's flow, sorted per spec.md §4.4: ascending
// by amount/50 for fluids (comparing in fluid-stack units) and by
// amount for items.
func Aggregate(db *catalog.Database, arena *planner.Arena, tableIdx int) []Entry {
	_, entries := aggregateTable(db, arena, tableIdx)
	return entries
}

func aggregateTable(db *catalog.Database, arena *planner.Arena, tableIdx int) (map[planner.ID]float64, []Entry) {
	table := &arena.Tables[tableIdx]
	totals := make(map[planner.ID]float64)

	for _, rowIdx := range table.Rows {
		row := &arena.Rows[rowIdx]
		if !row.Enabled {
			continue
		}

		if row.Subgroup >= 0 {
			subTotals, _ := aggregateTable(db, arena, row.Subgroup)
			for goods, amt := range subTotals {
				totals[goods] += amt
			}
		}

		recipe := db.RecipeByID(row.Recipe)
		for _, p := range recipe.Products {
			amt := p.Amount + p.ProductivityAmount*row.Parameters.Productivity
			totals[p.Goods] += amt * row.RecipesPerSecond
		}
		for _, ing := range recipe.Ingredients {
			totals[ing.Goods] -= ing.Amount * row.RecipesPerSecond
		}
		if row.HasFuel && row.Fuel != planner.NoID {
			fuelRate := row.Parameters.FuelUsagePerSecondPerRecipe() * row.RecipesPerSecond
			totals[row.Fuel] -= fuelRate
			if spent, ok := search.HasSpentFuel(db, row.Fuel); ok {
				totals[spent] += fuelRate
			}
		}
	}

	for _, linkIdx := range table.Links {
		link := &arena.Links[linkIdx]
		if _, present := totals[link.Goods]; !present {
			continue
		}
		if link.Flags&planner.LinkNotMatched == 0 {
			delete(totals, link.Goods)
			continue
		}
		// Left unmatched: stays in totals so the parent call folds it
		// in as a production/consumption entry of its own, propagating
		// the imbalance to whichever ancestor link actually balances
		// this goods.
		link.Flags |= planner.LinkChildNotMatched
	}

	entries := make([]Entry, 0, len(totals))
	for goodsID, amt := range totals {
		// Goods whose net flow cancels out exactly are left out.
		if amt == 0 {
			delete(totals, goodsID)
			continue
		}
		linkIdx := -1
		if l, ok := table.LinkMap[goodsID]; ok {
			linkIdx = l
		}
		entries = append(entries, Entry{Goods: goodsID, Amount: amt, Link: linkIdx})
	}

	sort.Slice(entries, func(i, j int) bool {
		return sortKey(db, entries[i]) < sortKey(db, entries[j])
	})

	return totals, entries
}

func sortKey(db *catalog.Database, e Entry) float64 {
	if db.GoodsByID(e.Goods).Kind == planner.KindFluid {
		return e.Amount / 50
	}
	return e.Amount
}
