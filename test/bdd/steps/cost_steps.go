package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/pkg/planner"
)

type costContext struct {
	cat      *plannertest.Catalog
	goods    map[string]planner.ID
	crafters map[string]planner.ID
	entities map[string]planner.ID
	recipes  map[string]planner.ID

	db       *catalog.Database
	analysis *cost.Analysis
	err      error
}

func (c *costContext) reset() {
	c.cat = plannertest.NewCatalog()
	c.goods = map[string]planner.ID{}
	c.crafters = map[string]planner.ID{}
	c.entities = map[string]planner.ID{}
	c.recipes = map[string]planner.ID{}
	c.db = nil
	c.analysis = nil
	c.err = nil
}

func (c *costContext) crafterID(name string, speed float64) planner.ID {
	if id, ok := c.crafters[name]; ok {
		return id
	}
	id := c.cat.AddCrafter(name, speed, nil)
	c.crafters[name] = id
	return id
}

func (c *costContext) goodsID(name string) planner.ID {
	if id, ok := c.goods[name]; ok {
		return id
	}
	id := c.cat.AddItem(name, nil)
	c.goods[name] = id
	return id
}

func (c *costContext) aFluidVariantList(listName, coldName string, coldTemp float64, hotName string, hotTemp float64) error {
	cold := c.cat.AddFluid(coldName, coldTemp, nil)
	hot := c.cat.AddFluid(hotName, hotTemp, nil)
	c.goods[coldName] = cold
	c.goods[hotName] = hot
	c.cat.AddFluidVariantList(listName, cold, hot)
	return nil
}

func (c *costContext) aProducingRecipe(name string, prodAmt float64, prodName string, time float64, crafterName string, speed float64) error {
	prod := c.goodsID(prodName)
	crafter := c.crafterID(crafterName, speed)
	recipe := c.cat.AddRecipe(name, func(r *planner.Recipe) {
		r.Time = time
		r.Products = []planner.Product{{Goods: prod, Amount: prodAmt}}
		r.Crafters = []planner.ID{crafter}
	})
	c.recipes[name] = recipe
	return nil
}

func (c *costContext) aMiningEntity(name string, density float64) error {
	id := c.cat.AddEntity(name, planner.EntityContainer, func(e *planner.Entity) {
		e.MapGenerated = true
		e.MapGenDensity = density
	})
	c.entities[name] = id
	return nil
}

func (c *costContext) aMinedRecipe(name string, prodAmt float64, prodName string, time float64, entityName, crafterName string, speed float64) error {
	prod := c.goodsID(prodName)
	crafter := c.crafterID(crafterName, speed)
	source := c.entities[entityName]
	recipe := c.cat.AddRecipe(name, func(r *planner.Recipe) {
		r.Time = time
		r.Products = []planner.Product{{Goods: prod, Amount: prodAmt}}
		r.Crafters = []planner.ID{crafter}
		r.HasSourceEntity = true
		r.SourceEntity = source
	})
	c.recipes[name] = recipe
	return nil
}

func (c *costContext) costAnalysisRuns() error {
	db := c.cat.Database()
	a, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	c.db = db
	c.analysis = a
	c.err = err
	return nil
}

func (c *costContext) costAnalysisShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("cost.Build returned an error: %w", c.err)
	}
	if c.analysis == nil {
		return fmt.Errorf("cost.Build returned a nil analysis")
	}
	return nil
}

func (c *costContext) theCostOfShouldBeGTE(aName, bName string) error {
	a := c.analysis.Cost(c.goods[aName])
	b := c.analysis.Cost(c.goods[bName])
	if a < b {
		return fmt.Errorf("cost(%s)=%v is not >= cost(%s)=%v", aName, a, bName, b)
	}
	return nil
}

func (c *costContext) theCostOfShouldBeGreaterThan(aName, bName string) error {
	a := c.analysis.Cost(c.goods[aName])
	b := c.analysis.Cost(c.goods[bName])
	if a <= b {
		return fmt.Errorf("cost(%s)=%v is not greater than cost(%s)=%v", aName, a, bName, b)
	}
	return nil
}

// InitializeCostScenario registers every Cost Analysis step.
func InitializeCostScenario(sc *godog.ScenarioContext) {
	cctx := &costContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		cctx.reset()
		return ctx, nil
	})

	sc.Step(`^a fluid variant list "([^"]+)" with members "([^"]+)" at (\d+(?:\.\d+)?) degrees and "([^"]+)" at (\d+(?:\.\d+)?) degrees$`, cctx.aFluidVariantList)
	sc.Step(`^a recipe "([^"]+)" producing (\d+(?:\.\d+)?) "([^"]+)" with time (\d+(?:\.\d+)?) on crafter "([^"]+)" at speed (\d+(?:\.\d+)?)$`, cctx.aProducingRecipe)
	sc.Step(`^a mining entity "([^"]+)" with map generation density (\d+(?:\.\d+)?)$`, cctx.aMiningEntity)
	sc.Step(`^a recipe "([^"]+)" producing (\d+(?:\.\d+)?) "([^"]+)" with time (\d+(?:\.\d+)?) mined from entity "([^"]+)" on crafter "([^"]+)" at speed (\d+(?:\.\d+)?)$`, cctx.aMinedRecipe)
	sc.Step(`^cost analysis runs$`, cctx.costAnalysisRuns)
	sc.Step(`^cost analysis should succeed$`, cctx.costAnalysisShouldSucceed)
	sc.Step(`^the cost of "([^"]+)" should be greater than or equal to the cost of "([^"]+)"$`, cctx.theCostOfShouldBeGTE)
	sc.Step(`^the cost of "([^"]+)" should be greater than the cost of "([^"]+)"$`, cctx.theCostOfShouldBeGreaterThan)
}
