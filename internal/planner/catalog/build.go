package catalog

import (
	"context"

	"github.com/foundryworks/production-planner/internal/planner/store"
	"github.com/foundryworks/production-planner/pkg/planner"
)

type deferredModuleRefs struct {
	itemID           planner.ID
	recipeStoreIDs   []int64
	entityStoreIDs   []int64
}

// buildGoods assigns one dense planner.ID space shared by items,
// fluids, and special goods, in that order, matching the union-of-
// kinds Goods type (spec.md §3.1).
func (b *builder) buildGoods(ctx context.Context) error {
	items, err := store.NewItemStore(b.store).GetAllItems(ctx)
	if err != nil {
		return err
	}
	fluids, err := store.NewFluidStore(b.store).GetAllFluids(ctx)
	if err != nil {
		return err
	}
	special, err := store.NewSpecialGoodsStore(b.store).GetAllSpecialGoods(ctx)
	if err != nil {
		return err
	}

	var moduleRefs []deferredModuleRefs

	for _, it := range items {
		id := planner.ID(len(b.db.Goods))
		b.db.itemIDByStoreID[it.ID] = id

		g := planner.Goods{
			Object: planner.Object{
				ID:        id,
				Kind:      planner.KindItem,
				Name:      it.Name,
				LocaleKey: it.LocaleKey,
				Icon:      it.Icon,
			},
			Item: &planner.ItemData{
				StackSize:      it.StackSize,
				HasFuelResult:  it.HasFuelResult,
				FuelValue:      it.FuelValue,
				HasPlaceResult: it.HasPlaceResult,
				HasMiscSource:  it.HasMiscSource,
			},
		}
		if it.HasFuelResult {
			b.deferredItemFuelResult = append(b.deferredItemFuelResult, deferredRef{id, it.FuelResultID})
		}
		if it.HasPlaceResult {
			b.deferredItemPlaceResult = append(b.deferredItemPlaceResult, deferredRef{id, it.PlaceResultID})
		}
		if it.HasMiscSource {
			b.deferredItemMiscSource = append(b.deferredItemMiscSource, deferredRef{id, it.MiscSourceID})
		}
		if it.Module != nil {
			g.Item.Module = &planner.ModuleData{
				Effects: planner.ModuleEffects{
					Speed:        it.Module.Speed,
					Productivity: it.Module.Productivity,
					Consumption:  it.Module.Consumption,
					Pollution:    it.Module.Pollution,
				},
			}
			moduleRefs = append(moduleRefs, deferredModuleRefs{
				itemID:         id,
				recipeStoreIDs: it.Module.RecipeAllowlist,
				entityStoreIDs: it.Module.CrafterBlacklist,
			})
		}
		b.db.Goods = append(b.db.Goods, g)
	}

	for _, f := range fluids {
		id := planner.ID(len(b.db.Goods))
		b.db.fluidIDByStoreID[f.ID] = id
		b.db.Goods = append(b.db.Goods, planner.Goods{
			Object: planner.Object{
				ID:        id,
				Kind:      planner.KindFluid,
				Name:      f.Name,
				LocaleKey: f.LocaleKey,
				Icon:      f.Icon,
			},
			Fluid: &planner.FluidData{
				Temperature:    f.Temperature,
				TemperatureMin: f.TemperatureMin,
				TemperatureMax: f.TemperatureMax,
				HeatCapacity:   f.HeatCapacity,
				HeatValue:      f.HeatValue,
				OriginalName:   f.OriginalName,
			},
		})
	}

	for _, sp := range special {
		id := planner.ID(len(b.db.Goods))
		b.db.specialIDByStoreID[sp.ID] = id
		b.db.Goods = append(b.db.Goods, planner.Goods{
			Object: planner.Object{
				ID:        id,
				Kind:      planner.KindSpecial,
				Name:      sp.Name,
				LocaleKey: sp.LocaleKey,
				Icon:      sp.Icon,
			},
			Special: &planner.SpecialData{IsPower: sp.IsPower, IsResearch: sp.IsResearch},
		})
	}

	for i := range b.db.Goods {
		b.resolveGoodsAccessibility(&b.db.Goods[i])
	}

	b.pendingModuleRefs = moduleRefs

	return nil
}

func (b *builder) resolveGoodsAccessibility(g *planner.Goods) {
	g.Accessible = b.pred.IsAccessible(g.Kind, g.ID)
	g.AccessibleAtNextMilestone = b.pred.IsAccessibleAtNextMilestone(g.Kind, g.ID)
}

func (b *builder) buildEntities(ctx context.Context) error {
	entities, err := store.NewEntityStore(b.store).GetAllEntities(ctx)
	if err != nil {
		return err
	}

	for _, e := range entities {
		id := planner.ID(len(b.db.Entities))
		b.db.entityIDByStoreID[e.ID] = id

		ent := planner.Entity{
			Object: planner.Object{
				ID:                        id,
				Kind:                      planner.KindEntity,
				Name:                      e.Name,
				LocaleKey:                 e.LocaleKey,
				Icon:                      e.Icon,
				Accessible:                b.pred.IsAccessible(planner.KindEntity, id),
				AccessibleAtNextMilestone: b.pred.IsAccessibleAtNextMilestone(planner.KindEntity, id),
			},
			EntityKind:    planner.EntityKind(e.EntityKind),
			MapGenerated:  e.MapGenerated,
			MapGenDensity: e.MapGenDensity,
			Energy: planner.EntityEnergy{
				Kind:                   planner.EnergyKind(e.Energy.Kind),
				Emissions:              e.Energy.Emissions,
				Drain:                  e.Energy.Drain,
				Effectivity:            e.Energy.Effectivity,
				FuelConsumptionLimit:   e.Energy.FuelConsumptionLimit,
				WorkingTemperatureMin:  e.Energy.WorkingTemperatureMin,
				WorkingTemperatureMax:  e.Energy.WorkingTemperatureMax,
				AcceptedTemperatureMin: e.Energy.AcceptedTemperatureMin,
				AcceptedTemperatureMax: e.Energy.AcceptedTemperatureMax,
			},
		}
		for _, itemStoreID := range e.ItemsToPlace {
			ent.ItemsToPlace = append(ent.ItemsToPlace, b.db.itemIDByStoreID[itemStoreID])
		}
		for _, fuelStoreID := range e.Energy.Fuels {
			ent.Energy.Fuels = append(ent.Energy.Fuels, b.resolveGoodsStoreID(fuelStoreID, e.Energy.Kind))
		}
		if e.Crafter != nil {
			ent.Crafter = &planner.CrafterData{
				CraftingSpeed:    e.Crafter.CraftingSpeed,
				Productivity:     e.Crafter.Productivity,
				ModuleSlots:      e.Crafter.ModuleSlots,
				AllowedEffects:   planner.ModuleEffectMask(e.Crafter.AllowedEffects),
				BeaconEfficiency: e.Crafter.BeaconEfficiency,
			}
		}

		b.db.Entities = append(b.db.Entities, ent)
	}

	return nil
}

// resolveGoodsStoreID resolves a fuel goods reference; fuel goods are
// always items for SolidFuel and fluids for FluidFuel/FluidHeat, never
// special goods, so the energy kind alone disambiguates which store-id
// map to consult.
func (b *builder) resolveGoodsStoreID(storeID int64, energyKind int) planner.ID {
	if energyKind == int(planner.EnergyFluidFuel) || energyKind == int(planner.EnergyFluidHeat) {
		if id, ok := b.db.fluidIDByStoreID[storeID]; ok {
			return id
		}
	}
	if id, ok := b.db.itemIDByStoreID[storeID]; ok {
		return id
	}
	return planner.NoID
}

func (b *builder) buildRecipes(ctx context.Context) error {
	rows, err := store.NewRecipeStore(b.store).GetAllRecipes(ctx)
	if err != nil {
		return err
	}

	for _, r := range rows {
		id := planner.ID(len(b.db.Recipes))
		b.db.recipeIDByStoreID[r.ID] = id

		rec := planner.Recipe{
			Object: planner.Object{
				ID:                        id,
				Kind:                      planner.KindRecipe,
				Name:                      r.Name,
				LocaleKey:                 r.LocaleKey,
				Icon:                      r.Icon,
				Accessible:                b.pred.IsAccessible(planner.KindRecipe, id),
				AccessibleAtNextMilestone: b.pred.IsAccessibleAtNextMilestone(planner.KindRecipe, id),
			},
			Time:           r.Time,
			Flags:          planner.RecipeFlag(r.Flags),
			Enabled:        r.Enabled,
			HasMainProduct: r.HasMainProduct,
			MainProduct:    r.MainProductIndex,
		}

		for _, ing := range r.Ingredients {
			rec.Ingredients = append(rec.Ingredients, planner.Ingredient{
				Goods:        b.resolveGoodsKindStoreID(ing.GoodsKind, ing.GoodsID),
				Amount:       ing.Amount,
				IsCatalyst:   ing.IsCatalyst,
				VariantGroup: ing.VariantGroup,
			})
		}
		for _, p := range r.Products {
			rec.Products = append(rec.Products, planner.Product{
				Goods:              b.resolveGoodsKindStoreID(p.GoodsKind, p.GoodsID),
				Probability:        p.Probability,
				AmountMin:          p.AmountMin,
				AmountMax:          p.AmountMax,
				Amount:             p.Amount,
				CatalystAmount:     p.CatalystAmount,
				ProductivityAmount: p.ProductivityAmount,
			})
		}
		for _, itemStoreID := range r.AllowedModules {
			rec.AllowedModules = append(rec.AllowedModules, b.db.itemIDByStoreID[itemStoreID])
		}
		for _, entityStoreID := range r.Crafters {
			rec.Crafters = append(rec.Crafters, b.db.entityIDByStoreID[entityStoreID])
		}
		if r.HasSourceEntity {
			rec.HasSourceEntity = true
			b.deferredRecipeSource = append(b.deferredRecipeSource, deferredRef{id, r.SourceEntityID})
		}

		b.db.Recipes = append(b.db.Recipes, rec)
	}

	// UnlockingTechnologies need technology ids, assigned next; store
	// raw store ids for now and translate in resolveDeferred.
	for i, r := range rows {
		for _, techStoreID := range r.UnlockingTechnologies {
			b.deferredRecipeUnlocks = append(b.deferredRecipeUnlocks, deferredRef{planner.ID(i), techStoreID})
		}
	}

	return nil
}

// resolveAnyGoodsStoreID resolves a misc-source reference of unknown
// kind by probing each goods sub-collection's store-id map in turn;
// misc sources are items or fluids in every observed mod pack.
func (b *builder) resolveAnyGoodsStoreID(storeID int64) (planner.ID, bool) {
	if id, ok := b.db.itemIDByStoreID[storeID]; ok {
		return id, true
	}
	if id, ok := b.db.fluidIDByStoreID[storeID]; ok {
		return id, true
	}
	if id, ok := b.db.specialIDByStoreID[storeID]; ok {
		return id, true
	}
	return planner.NoID, false
}

func (b *builder) resolveGoodsKindStoreID(kind int, storeID int64) planner.ID {
	switch kind {
	case int(planner.KindFluid):
		return b.db.fluidIDByStoreID[storeID]
	case int(planner.KindSpecial):
		return b.db.specialIDByStoreID[storeID]
	default:
		return b.db.itemIDByStoreID[storeID]
	}
}

func (b *builder) buildTechnologies(ctx context.Context) error {
	rows, err := store.NewTechnologyStore(b.store).GetAllTechnologies(ctx)
	if err != nil {
		return err
	}

	for _, t := range rows {
		id := planner.ID(len(b.db.Technologies))
		b.db.techIDByStoreID[t.ID] = id

		tech := planner.Technology{
			Recipe: planner.Recipe{
				Object: planner.Object{
					ID:                        id,
					Kind:                      planner.KindTechnology,
					Name:                      t.Name,
					LocaleKey:                 t.LocaleKey,
					Icon:                      t.Icon,
					Accessible:                b.pred.IsAccessible(planner.KindTechnology, id),
					AccessibleAtNextMilestone: b.pred.IsAccessibleAtNextMilestone(planner.KindTechnology, id),
				},
				Time:    t.Time,
				Flags:   planner.RecipeFlag(t.Flags),
				Enabled: t.Enabled,
			},
			Count: t.Count,
		}
		for _, pack := range t.SciencePacks {
			tech.Ingredients = append(tech.Ingredients, planner.Ingredient{
				Goods:  b.db.itemIDByStoreID[pack.GoodsID],
				Amount: pack.Amount,
			})
		}

		b.db.Technologies = append(b.db.Technologies, tech)

		for _, prereqStoreID := range t.Prerequisites {
			b.deferredTechPrereqs = append(b.deferredTechPrereqs, deferredRef{id, prereqStoreID})
		}
		for _, recipeStoreID := range t.UnlockRecipes {
			b.deferredTechUnlockRecipes = append(b.deferredTechUnlockRecipes, deferredRef{id, recipeStoreID})
		}
	}

	return nil
}

func (b *builder) buildFluidVariantLists(ctx context.Context) error {
	rows, err := store.NewFluidStore(b.store).GetAllVariantLists(ctx)
	if err != nil {
		return err
	}

	for _, l := range rows {
		listID := len(b.db.FluidVariantLists)
		vl := planner.FluidVariantList{OriginalName: l.OriginalName}
		for _, storeID := range l.Variants {
			goodsID, ok := b.db.fluidIDByStoreID[storeID]
			if !ok {
				continue
			}
			vl.Variants = append(vl.Variants, goodsID)
			g := &b.db.Goods[goodsID]
			g.Fluid.VariantListID = listID
		}
		b.db.FluidVariantLists = append(b.db.FluidVariantLists, vl)
	}

	return nil
}

// resolveDeferred fixes up every cross-collection reference that could
// not be resolved while its target collection was still being built.
func (b *builder) resolveDeferred() {
	for _, ref := range b.deferredItemFuelResult {
		g := &b.db.Goods[ref.ownerID]
		if id, ok := b.db.itemIDByStoreID[ref.storeRefID]; ok {
			g.Item.FuelResult = id
		}
	}
	for _, ref := range b.deferredItemPlaceResult {
		g := &b.db.Goods[ref.ownerID]
		if id, ok := b.db.entityIDByStoreID[ref.storeRefID]; ok {
			g.Item.PlaceResult = id
		}
	}
	for _, ref := range b.deferredItemMiscSource {
		g := &b.db.Goods[ref.ownerID]
		if id, ok := b.resolveAnyGoodsStoreID(ref.storeRefID); ok {
			g.Item.MiscSource = id
		} else {
			g.Item.HasMiscSource = false
		}
	}
	for _, ref := range b.deferredRecipeSource {
		r := &b.db.Recipes[ref.ownerID]
		if id, ok := b.db.entityIDByStoreID[ref.storeRefID]; ok {
			r.SourceEntity = id
		} else {
			r.SourceEntity = planner.NoID
		}
	}
	for _, ref := range b.deferredRecipeUnlocks {
		r := &b.db.Recipes[ref.ownerID]
		if id, ok := b.db.techIDByStoreID[ref.storeRefID]; ok {
			r.UnlockingTechnologies = append(r.UnlockingTechnologies, id)
		}
	}
	for _, ref := range b.deferredTechPrereqs {
		t := &b.db.Technologies[ref.ownerID]
		if id, ok := b.db.techIDByStoreID[ref.storeRefID]; ok {
			t.Prerequisites = append(t.Prerequisites, id)
		}
	}
	for _, ref := range b.deferredTechUnlockRecipes {
		t := &b.db.Technologies[ref.ownerID]
		if id, ok := b.db.recipeIDByStoreID[ref.storeRefID]; ok {
			t.UnlockRecipes = append(t.UnlockRecipes, id)
		}
	}
	for _, ref := range b.pendingModuleRefs {
		g := &b.db.Goods[ref.itemID]
		for _, recipeStoreID := range ref.recipeStoreIDs {
			if id, ok := b.db.recipeIDByStoreID[recipeStoreID]; ok {
				g.Item.Module.RecipeAllowlist = append(g.Item.Module.RecipeAllowlist, id)
			}
		}
		for _, entityStoreID := range ref.entityStoreIDs {
			if id, ok := b.db.entityIDByStoreID[entityStoreID]; ok {
				g.Item.Module.CrafterBlacklist = append(g.Item.Module.CrafterBlacklist, id)
			}
		}
	}
}
