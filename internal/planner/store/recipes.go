package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RecipeStore handles recipe data access: the base row plus its
// ingredients, products, allowed modules, crafters, and unlocking
// technologies.
type RecipeStore struct {
	db *DB
}

func NewRecipeStore(db *DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func (s *RecipeStore) GetAllRecipes(ctx context.Context) ([]RecipeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, locale_key, icon, accessible, accessible_at_next_milestone,
		       time, flags, enabled, has_source_entity, source_entity_id,
		       has_main_product, main_product_index
		FROM recipes
	`)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []RecipeRow
	for rows.Next() {
		var r RecipeRow
		var sourceEntity sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.Name, &r.LocaleKey, &r.Icon, &r.Accessible, &r.AccessibleAtNextMilestone,
			&r.Time, &r.Flags, &r.Enabled, &r.HasSourceEntity, &sourceEntity,
			&r.HasMainProduct, &r.MainProductIndex,
		); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		r.SourceEntityID = sourceEntity.Int64
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := s.loadRecipeChildren(ctx, &recipes[i]); err != nil {
			return nil, fmt.Errorf("loading children for recipe %d: %w", recipes[i].ID, err)
		}
	}

	return recipes, nil
}

func (s *RecipeStore) loadRecipeChildren(ctx context.Context, r *RecipeRow) error {
	ingredients, err := s.getIngredients(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Ingredients = ingredients

	products, err := s.getProducts(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Products = products

	allowed, err := scanInt64Column(ctx, s.db.DB, `SELECT item_id FROM recipe_allowed_modules WHERE recipe_id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("querying allowed modules: %w", err)
	}
	r.AllowedModules = allowed

	crafters, err := scanInt64Column(ctx, s.db.DB, `SELECT entity_id FROM recipe_crafters WHERE recipe_id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("querying crafters: %w", err)
	}
	r.Crafters = crafters

	techs, err := scanInt64Column(ctx, s.db.DB, `SELECT technology_id FROM recipe_unlocking_technologies WHERE recipe_id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("querying unlocking technologies: %w", err)
	}
	r.UnlockingTechnologies = techs

	return nil
}

func (s *RecipeStore) getIngredients(ctx context.Context, recipeID int64) ([]IngredientRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT goods_kind, goods_id, amount, is_catalyst, variant_group
		FROM recipe_ingredients WHERE recipe_id = ? ORDER BY position
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("querying recipe_ingredients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []IngredientRow
	for rows.Next() {
		var ing IngredientRow
		if err := rows.Scan(&ing.GoodsKind, &ing.GoodsID, &ing.Amount, &ing.IsCatalyst, &ing.VariantGroup); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (s *RecipeStore) getProducts(ctx context.Context, recipeID int64) ([]ProductRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT goods_kind, goods_id, probability, amount_min, amount_max, amount, catalyst_amount, productivity_amount
		FROM recipe_products WHERE recipe_id = ? ORDER BY position
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("querying recipe_products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ProductRow
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.GoodsKind, &p.GoodsID, &p.Probability, &p.AmountMin, &p.AmountMax, &p.Amount, &p.CatalystAmount, &p.ProductivityAmount); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// BulkInsertRecipes inserts or replaces every recipe and its children
// in a single transaction.
func (s *RecipeStore) BulkInsertRecipes(ctx context.Context, recipes []RecipeRow) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		recipeStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipes
			(id, name, locale_key, icon, accessible, accessible_at_next_milestone,
			 time, flags, enabled, has_source_entity, source_entity_id,
			 has_main_product, main_product_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe statement: %w", err)
		}
		defer func() { _ = recipeStmt.Close() }()

		ingredientStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_ingredients
			(recipe_id, position, goods_kind, goods_id, amount, is_catalyst, variant_group)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing ingredient statement: %w", err)
		}
		defer func() { _ = ingredientStmt.Close() }()

		productStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_products
			(recipe_id, position, goods_kind, goods_id, probability, amount_min, amount_max, amount, catalyst_amount, productivity_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing product statement: %w", err)
		}
		defer func() { _ = productStmt.Close() }()

		allowedStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_allowed_modules (recipe_id, item_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing allowed modules statement: %w", err)
		}
		defer func() { _ = allowedStmt.Close() }()

		crafterStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_crafters (recipe_id, entity_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing crafters statement: %w", err)
		}
		defer func() { _ = crafterStmt.Close() }()

		unlockStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_unlocking_technologies (recipe_id, technology_id) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing unlocking technologies statement: %w", err)
		}
		defer func() { _ = unlockStmt.Close() }()

		for _, r := range recipes {
			if _, err := recipeStmt.ExecContext(ctx,
				r.ID, r.Name, r.LocaleKey, r.Icon, r.Accessible, r.AccessibleAtNextMilestone,
				r.Time, r.Flags, r.Enabled, r.HasSourceEntity, nullableID(r.HasSourceEntity, r.SourceEntityID),
				r.HasMainProduct, r.MainProductIndex,
			); err != nil {
				return fmt.Errorf("inserting recipe %d: %w", r.ID, err)
			}

			for pos, ing := range r.Ingredients {
				if _, err := ingredientStmt.ExecContext(ctx, r.ID, pos, ing.GoodsKind, ing.GoodsID, ing.Amount, ing.IsCatalyst, ing.VariantGroup); err != nil {
					return fmt.Errorf("inserting ingredient for recipe %d: %w", r.ID, err)
				}
			}
			for pos, p := range r.Products {
				if _, err := productStmt.ExecContext(ctx, r.ID, pos, p.GoodsKind, p.GoodsID, p.Probability, p.AmountMin, p.AmountMax, p.Amount, p.CatalystAmount, p.ProductivityAmount); err != nil {
					return fmt.Errorf("inserting product for recipe %d: %w", r.ID, err)
				}
			}
			for _, itemID := range r.AllowedModules {
				if _, err := allowedStmt.ExecContext(ctx, r.ID, itemID); err != nil {
					return fmt.Errorf("inserting allowed module for recipe %d: %w", r.ID, err)
				}
			}
			for _, entityID := range r.Crafters {
				if _, err := crafterStmt.ExecContext(ctx, r.ID, entityID); err != nil {
					return fmt.Errorf("inserting crafter for recipe %d: %w", r.ID, err)
				}
			}
			for _, techID := range r.UnlockingTechnologies {
				if _, err := unlockStmt.ExecContext(ctx, r.ID, techID); err != nil {
					return fmt.Errorf("inserting unlocking technology for recipe %d: %w", r.ID, err)
				}
			}
		}

		return nil
	})
}

// CountRecipes returns the total number of recipes, used by the CLI's
// import summary.
func (s *RecipeStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}
