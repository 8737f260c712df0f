package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TechnologyStore handles technology data access: the base row plus
// its science-pack costs, prerequisites, and unlocked recipes.
type TechnologyStore struct {
	db *DB
}

func NewTechnologyStore(db *DB) *TechnologyStore {
	return &TechnologyStore{db: db}
}

func (s *TechnologyStore) GetAllTechnologies(ctx context.Context) ([]TechnologyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone, time, flags, enabled, count
		FROM technologies
	`)
	if err != nil {
		return nil, fmt.Errorf("querying technologies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var techs []TechnologyRow
	for rows.Next() {
		var t TechnologyRow
		if err := rows.Scan(&t.ID, &t.Name, &t.LocaleKey, &t.Icon, &t.Accessible, &t.AccessibleAtNextMilestone, &t.Time, &t.Flags, &t.Enabled, &t.Count); err != nil {
			return nil, fmt.Errorf("scanning technology: %w", err)
		}
		techs = append(techs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range techs {
		packs, err := s.getSciencePacks(ctx, techs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading science packs for technology %d: %w", techs[i].ID, err)
		}
		techs[i].SciencePacks = packs

		prereqs, err := scanInt64Column(ctx, s.db.DB, `SELECT prerequisite_id FROM technology_prerequisites WHERE technology_id = ?`, techs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading prerequisites for technology %d: %w", techs[i].ID, err)
		}
		techs[i].Prerequisites = prereqs

		unlocks, err := scanInt64Column(ctx, s.db.DB, `SELECT recipe_id FROM technology_unlock_recipes WHERE technology_id = ?`, techs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading unlocked recipes for technology %d: %w", techs[i].ID, err)
		}
		techs[i].UnlockRecipes = unlocks
	}

	return techs, nil
}

func (s *TechnologyStore) getSciencePacks(ctx context.Context, techID int64) ([]IngredientRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT goods_id, amount FROM technology_science_packs WHERE technology_id = ? ORDER BY position
	`, techID)
	if err != nil {
		return nil, fmt.Errorf("querying technology_science_packs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []IngredientRow
	for rows.Next() {
		var ing IngredientRow
		if err := rows.Scan(&ing.GoodsID, &ing.Amount); err != nil {
			return nil, fmt.Errorf("scanning science pack: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// BulkInsertTechnologies inserts or replaces every technology and its
// children in a single transaction.
func (s *TechnologyStore) BulkInsertTechnologies(ctx context.Context, techs []TechnologyRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		techStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO technologies
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone, time, flags, enabled, count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing technology statement: %w", err)
		}
		defer func() { _ = techStmt.Close() }()

		packStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO technology_science_packs (technology_id, position, goods_id, amount) VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing science pack statement: %w", err)
		}
		defer func() { _ = packStmt.Close() }()

		prereqStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO technology_prerequisites (technology_id, prerequisite_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing prerequisites statement: %w", err)
		}
		defer func() { _ = prereqStmt.Close() }()

		unlockStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO technology_unlock_recipes (technology_id, recipe_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing unlock recipes statement: %w", err)
		}
		defer func() { _ = unlockStmt.Close() }()

		for _, t := range techs {
			if _, err := techStmt.ExecContext(ctx, t.ID, t.Name, t.LocaleKey, t.Icon, t.Accessible, t.AccessibleAtNextMilestone, t.Time, t.Flags, t.Enabled, t.Count); err != nil {
				return fmt.Errorf("inserting technology %d: %w", t.ID, err)
			}
			for pos, pack := range t.SciencePacks {
				if _, err := packStmt.ExecContext(ctx, t.ID, pos, pack.GoodsID, pack.Amount); err != nil {
					return fmt.Errorf("inserting science pack for technology %d: %w", t.ID, err)
				}
			}
			for _, prereqID := range t.Prerequisites {
				if _, err := prereqStmt.ExecContext(ctx, t.ID, prereqID); err != nil {
					return fmt.Errorf("inserting prerequisite for technology %d: %w", t.ID, err)
				}
			}
			for _, recipeID := range t.UnlockRecipes {
				if _, err := unlockStmt.ExecContext(ctx, t.ID, recipeID); err != nil {
					return fmt.Errorf("inserting unlock recipe for technology %d: %w", t.ID, err)
				}
			}
		}

		return nil
	})
}
