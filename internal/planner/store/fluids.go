package store

import (
	"context"
	"database/sql"
	"fmt"
)

// FluidStore handles fluid and fluid-variant-list data access.
type FluidStore struct {
	db *DB
}

func NewFluidStore(db *DB) *FluidStore {
	return &FluidStore{db: db}
}

func (s *FluidStore) GetAllFluids(ctx context.Context) ([]FluidRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone,
		       temperature, temperature_min, temperature_max, heat_capacity, heat_value,
		       original_name, variant_list_id
		FROM fluids
	`)
	if err != nil {
		return nil, fmt.Errorf("querying fluids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fluids []FluidRow
	for rows.Next() {
		var f FluidRow
		var variantList sql.NullInt64
		if err := rows.Scan(
			&f.ID, &f.Name, &f.LocaleKey, &f.Icon, &f.Accessible, &f.AccessibleAtNextMilestone,
			&f.Temperature, &f.TemperatureMin, &f.TemperatureMax, &f.HeatCapacity, &f.HeatValue,
			&f.OriginalName, &variantList,
		); err != nil {
			return nil, fmt.Errorf("scanning fluid: %w", err)
		}
		f.HasVariantList = variantList.Valid
		f.VariantListID = variantList.Int64
		fluids = append(fluids, f)
	}
	return fluids, rows.Err()
}

func (s *FluidStore) GetAllVariantLists(ctx context.Context) ([]FluidVariantListRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, original_name FROM fluid_variant_lists`)
	if err != nil {
		return nil, fmt.Errorf("querying fluid_variant_lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []FluidVariantListRow
	for rows.Next() {
		var l FluidVariantListRow
		if err := rows.Scan(&l.ID, &l.OriginalName); err != nil {
			return nil, fmt.Errorf("scanning variant list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		members, err := scanInt64Column(ctx, s.db.DB, `
			SELECT goods_id FROM fluid_variant_list_members WHERE list_id = ? ORDER BY position
		`, lists[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading members for variant list %d: %w", lists[i].ID, err)
		}
		lists[i].Variants = members
	}

	return lists, nil
}

// BulkInsertFluids inserts fluids and their variant lists in a single
// transaction.
func (s *FluidStore) BulkInsertFluids(ctx context.Context, fluids []FluidRow, lists []FluidVariantListRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		listStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO fluid_variant_lists (id, original_name) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing variant list statement: %w", err)
		}
		defer func() { _ = listStmt.Close() }()

		memberStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO fluid_variant_list_members (list_id, position, goods_id) VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing variant member statement: %w", err)
		}
		defer func() { _ = memberStmt.Close() }()

		for _, l := range lists {
			if _, err := listStmt.ExecContext(ctx, l.ID, l.OriginalName); err != nil {
				return fmt.Errorf("inserting variant list %d: %w", l.ID, err)
			}
			for pos, goodsID := range l.Variants {
				if _, err := memberStmt.ExecContext(ctx, l.ID, pos, goodsID); err != nil {
					return fmt.Errorf("inserting variant member for list %d: %w", l.ID, err)
				}
			}
		}

		fluidStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO fluids
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone,
			 temperature, temperature_min, temperature_max, heat_capacity, heat_value,
			 original_name, variant_list_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing fluid statement: %w", err)
		}
		defer func() { _ = fluidStmt.Close() }()

		for _, f := range fluids {
			if _, err := fluidStmt.ExecContext(ctx,
				f.ID, f.Name, f.LocaleKey, f.Icon, f.Accessible, f.AccessibleAtNextMilestone,
				f.Temperature, f.TemperatureMin, f.TemperatureMax, f.HeatCapacity, f.HeatValue,
				f.OriginalName, nullableID(f.HasVariantList, f.VariantListID),
			); err != nil {
				return fmt.Errorf("inserting fluid %d: %w", f.ID, err)
			}
		}

		return nil
	})
}

// SpecialGoodsStore handles non-physical goods (power, research units).
type SpecialGoodsStore struct {
	db *DB
}

func NewSpecialGoodsStore(db *DB) *SpecialGoodsStore {
	return &SpecialGoodsStore{db: db}
}

func (s *SpecialGoodsStore) GetAllSpecialGoods(ctx context.Context) ([]SpecialGoodsRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone, is_power, is_research
		FROM special_goods
	`)
	if err != nil {
		return nil, fmt.Errorf("querying special_goods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goods []SpecialGoodsRow
	for rows.Next() {
		var g SpecialGoodsRow
		if err := rows.Scan(&g.ID, &g.Name, &g.LocaleKey, &g.Icon, &g.Accessible, &g.AccessibleAtNextMilestone, &g.IsPower, &g.IsResearch); err != nil {
			return nil, fmt.Errorf("scanning special goods: %w", err)
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}

func (s *SpecialGoodsStore) BulkInsertSpecialGoods(ctx context.Context, goods []SpecialGoodsRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO special_goods
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone, is_power, is_research)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing special goods statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, g := range goods {
			if _, err := stmt.ExecContext(ctx, g.ID, g.Name, g.LocaleKey, g.Icon, g.Accessible, g.AccessibleAtNextMilestone, g.IsPower, g.IsResearch); err != nil {
				return fmt.Errorf("inserting special goods %d: %w", g.ID, err)
			}
		}
		return nil
	})
}
