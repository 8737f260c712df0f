package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EntityStore handles entity data access: the base row plus its energy
// profile, items-to-place, and crafter capability data.
type EntityStore struct {
	db *DB
}

func NewEntityStore(db *DB) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) GetAllEntities(ctx context.Context) ([]EntityRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone,
		       entity_kind, map_generated, map_gen_density
		FROM entities
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []EntityRow
	for rows.Next() {
		var e EntityRow
		if err := rows.Scan(&e.ID, &e.Name, &e.LocaleKey, &e.Icon, &e.Accessible, &e.AccessibleAtNextMilestone, &e.EntityKind, &e.MapGenerated, &e.MapGenDensity); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entities {
		if err := s.loadEntityChildren(ctx, &entities[i]); err != nil {
			return nil, fmt.Errorf("loading children for entity %d: %w", entities[i].ID, err)
		}
	}

	return entities, nil
}

func (s *EntityStore) loadEntityChildren(ctx context.Context, e *EntityRow) error {
	placed, err := scanInt64Column(ctx, s.db.DB, `SELECT item_id FROM entity_items_to_place WHERE entity_id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("querying items to place: %w", err)
	}
	e.ItemsToPlace = placed

	var energy EntityEnergyRow
	err = s.db.QueryRowContext(ctx, `
		SELECT kind, emissions, drain, effectivity, fuel_consumption_limit,
		       working_temperature_min, working_temperature_max,
		       accepted_temperature_min, accepted_temperature_max
		FROM entity_energy WHERE entity_id = ?
	`, e.ID).Scan(
		&energy.Kind, &energy.Emissions, &energy.Drain, &energy.Effectivity, &energy.FuelConsumptionLimit,
		&energy.WorkingTemperatureMin, &energy.WorkingTemperatureMax,
		&energy.AcceptedTemperatureMin, &energy.AcceptedTemperatureMax,
	)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("querying entity_energy: %w", err)
	}
	if err == nil {
		fuels, err := scanInt64Column(ctx, s.db.DB, `SELECT goods_id FROM entity_energy_fuels WHERE entity_id = ?`, e.ID)
		if err != nil {
			return fmt.Errorf("querying entity_energy_fuels: %w", err)
		}
		energy.Fuels = fuels
	}
	e.Energy = energy

	var crafter EntityCrafterRow
	err = s.db.QueryRowContext(ctx, `
		SELECT crafting_speed, productivity, module_slots, allowed_effects, beacon_efficiency
		FROM entity_crafter WHERE entity_id = ?
	`, e.ID).Scan(&crafter.CraftingSpeed, &crafter.Productivity, &crafter.ModuleSlots, &crafter.AllowedEffects, &crafter.BeaconEfficiency)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("querying entity_crafter: %w", err)
	}
	if err == nil {
		e.Crafter = &crafter
	}

	return nil
}

// BulkInsertEntities inserts or replaces every entity and its children
// in a single transaction.
func (s *EntityStore) BulkInsertEntities(ctx context.Context, entities []EntityRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		entityStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO entities
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone, entity_kind, map_generated, map_gen_density)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing entity statement: %w", err)
		}
		defer func() { _ = entityStmt.Close() }()

		placeStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO entity_items_to_place (entity_id, item_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing items-to-place statement: %w", err)
		}
		defer func() { _ = placeStmt.Close() }()

		energyStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO entity_energy
			(entity_id, kind, emissions, drain, effectivity, fuel_consumption_limit,
			 working_temperature_min, working_temperature_max, accepted_temperature_min, accepted_temperature_max)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing energy statement: %w", err)
		}
		defer func() { _ = energyStmt.Close() }()

		fuelStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO entity_energy_fuels (entity_id, goods_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing fuels statement: %w", err)
		}
		defer func() { _ = fuelStmt.Close() }()

		crafterStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO entity_crafter
			(entity_id, crafting_speed, productivity, module_slots, allowed_effects, beacon_efficiency)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing crafter statement: %w", err)
		}
		defer func() { _ = crafterStmt.Close() }()

		for _, e := range entities {
			if _, err := entityStmt.ExecContext(ctx, e.ID, e.Name, e.LocaleKey, e.Icon, e.Accessible, e.AccessibleAtNextMilestone, e.EntityKind, e.MapGenerated, e.MapGenDensity); err != nil {
				return fmt.Errorf("inserting entity %d: %w", e.ID, err)
			}
			for _, itemID := range e.ItemsToPlace {
				if _, err := placeStmt.ExecContext(ctx, e.ID, itemID); err != nil {
					return fmt.Errorf("inserting items-to-place for entity %d: %w", e.ID, err)
				}
			}

			en := e.Energy
			if _, err := energyStmt.ExecContext(ctx, e.ID, en.Kind, en.Emissions, en.Drain, en.Effectivity, en.FuelConsumptionLimit, en.WorkingTemperatureMin, en.WorkingTemperatureMax, en.AcceptedTemperatureMin, en.AcceptedTemperatureMax); err != nil {
				return fmt.Errorf("inserting energy for entity %d: %w", e.ID, err)
			}
			for _, fuelID := range en.Fuels {
				if _, err := fuelStmt.ExecContext(ctx, e.ID, fuelID); err != nil {
					return fmt.Errorf("inserting fuel for entity %d: %w", e.ID, err)
				}
			}

			if e.Crafter != nil {
				c := e.Crafter
				if _, err := crafterStmt.ExecContext(ctx, e.ID, c.CraftingSpeed, c.Productivity, c.ModuleSlots, c.AllowedEffects, c.BeaconEfficiency); err != nil {
					return fmt.Errorf("inserting crafter data for entity %d: %w", e.ID, err)
				}
			}
		}

		return nil
	})
}
