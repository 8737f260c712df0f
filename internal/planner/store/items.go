package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ItemStore handles item (and module) data access.
type ItemStore struct {
	db *DB
}

func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// GetAllItems retrieves every item with its module data, if any.
func (s *ItemStore) GetAllItems(ctx context.Context) ([]ItemRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone,
		       stack_size, has_fuel_result, fuel_result_id, fuel_value, has_place_result, place_result_id,
		       has_misc_source, misc_source_id
		FROM items
	`)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []ItemRow
	for rows.Next() {
		var it ItemRow
		var fuelResult, placeResult, miscSource sql.NullInt64
		if err := rows.Scan(
			&it.ID, &it.Name, &it.LocaleKey, &it.Icon, &it.Accessible, &it.AccessibleAtNextMilestone,
			&it.StackSize, &it.HasFuelResult, &fuelResult, &it.FuelValue, &it.HasPlaceResult, &placeResult,
			&it.HasMiscSource, &miscSource,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.FuelResultID = fuelResult.Int64
		it.PlaceResultID = placeResult.Int64
		it.MiscSourceID = miscSource.Int64
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		mod, err := s.getModule(ctx, items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading module for item %d: %w", items[i].ID, err)
		}
		items[i].Module = mod
	}

	return items, nil
}

func (s *ItemStore) getModule(ctx context.Context, itemID int64) (*ItemModuleRow, error) {
	var mod ItemModuleRow
	err := s.db.QueryRowContext(ctx, `
		SELECT speed, productivity, consumption, pollution
		FROM item_modules WHERE item_id = ?
	`, itemID).Scan(&mod.Speed, &mod.Productivity, &mod.Consumption, &mod.Pollution)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying item_modules: %w", err)
	}

	allow, err := scanInt64Column(ctx, s.db.DB, `SELECT recipe_id FROM item_module_recipe_allowlist WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, err
	}
	mod.RecipeAllowlist = allow

	blacklist, err := scanInt64Column(ctx, s.db.DB, `SELECT entity_id FROM item_module_crafter_blacklist WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, err
	}
	mod.CrafterBlacklist = blacklist

	return &mod, nil
}

// BulkInsertItems inserts or replaces every item and its module data in
// a single transaction.
func (s *ItemStore) BulkInsertItems(ctx context.Context, items []ItemRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO items
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone,
			 stack_size, has_fuel_result, fuel_result_id, fuel_value, has_place_result, place_result_id,
			 has_misc_source, misc_source_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing item statement: %w", err)
		}
		defer func() { _ = itemStmt.Close() }()

		moduleStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO item_modules (item_id, speed, productivity, consumption, pollution)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing module statement: %w", err)
		}
		defer func() { _ = moduleStmt.Close() }()

		allowStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO item_module_recipe_allowlist (item_id, recipe_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing allowlist statement: %w", err)
		}
		defer func() { _ = allowStmt.Close() }()

		blacklistStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO item_module_crafter_blacklist (item_id, entity_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing blacklist statement: %w", err)
		}
		defer func() { _ = blacklistStmt.Close() }()

		for _, it := range items {
			if _, err := itemStmt.ExecContext(ctx,
				it.ID, it.Name, it.LocaleKey, it.Icon, it.Accessible, it.AccessibleAtNextMilestone,
				it.StackSize, it.HasFuelResult, nullableID(it.HasFuelResult, it.FuelResultID), it.FuelValue,
				it.HasPlaceResult, nullableID(it.HasPlaceResult, it.PlaceResultID),
				it.HasMiscSource, nullableID(it.HasMiscSource, it.MiscSourceID),
			); err != nil {
				return fmt.Errorf("inserting item %d: %w", it.ID, err)
			}

			if it.Module == nil {
				continue
			}
			if _, err := moduleStmt.ExecContext(ctx, it.ID,
				it.Module.Speed, it.Module.Productivity, it.Module.Consumption, it.Module.Pollution,
			); err != nil {
				return fmt.Errorf("inserting module for item %d: %w", it.ID, err)
			}
			for _, recipeID := range it.Module.RecipeAllowlist {
				if _, err := allowStmt.ExecContext(ctx, it.ID, recipeID); err != nil {
					return fmt.Errorf("inserting allowlist entry for item %d: %w", it.ID, err)
				}
			}
			for _, entityID := range it.Module.CrafterBlacklist {
				if _, err := blacklistStmt.ExecContext(ctx, it.ID, entityID); err != nil {
					return fmt.Errorf("inserting blacklist entry for item %d: %w", it.ID, err)
				}
			}
		}

		return nil
	})
}

// scanInt64Column runs a single-column int64 query and collects the
// results; shared by every store that reads a child id list.
func scanInt64Column(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying id column: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableID(has bool, id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: has}
}
