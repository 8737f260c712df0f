// Package steps implements the godog step definitions for the
// Production Table Solver and Cost Analysis feature files, grounded on
// acdtunes-spacetraders's test/bdd/steps package: one context struct
// per scenario family, reset between scenarios via ctx.Before.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/flow"
	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/plannertest"
	"github.com/foundryworks/production-planner/internal/planner/solve"
	"github.com/foundryworks/production-planner/pkg/planner"
)

type solverContext struct {
	cat      *plannertest.Catalog
	arena    *plannertest.Arena
	goods    map[string]planner.ID
	crafters map[string]planner.ID

	db          *catalog.Database
	solvedArena *planner.Arena
	result      solve.Result
	err         error
}

func (c *solverContext) reset() {
	c.cat = plannertest.NewCatalog()
	c.arena = plannertest.NewArena()
	c.goods = map[string]planner.ID{}
	c.crafters = map[string]planner.ID{}
	c.solvedArena = nil
	c.result = solve.Result{}
	c.err = nil
}

func (c *solverContext) goodsID(name string) planner.ID {
	if id, ok := c.goods[name]; ok {
		return id
	}
	id := c.cat.AddItem(name, nil)
	c.goods[name] = id
	return id
}

func (c *solverContext) crafterID(name string, speed float64) planner.ID {
	if id, ok := c.crafters[name]; ok {
		return id
	}
	id := c.cat.AddCrafter(name, speed, nil)
	c.crafters[name] = id
	return id
}

func (c *solverContext) aRecipe(name string, ingAmt float64, ingName string, prodAmt float64, prodName string, time float64, crafterName string, speed float64) error {
	ing := c.goodsID(ingName)
	prod := c.goodsID(prodName)
	crafter := c.crafterID(crafterName, speed)
	recipe := c.cat.AddRecipe(name, func(r *planner.Recipe) {
		r.Time = time
		r.Ingredients = []planner.Ingredient{{Goods: ing, Amount: ingAmt}}
		r.Products = []planner.Product{{Goods: prod, Amount: prodAmt}}
		r.Crafters = []planner.ID{crafter}
	})
	c.arena.AddRow(recipe, crafter, nil)
	return nil
}

func (c *solverContext) aTwoProductRecipe(name string, ingAmt float64, ingName string, prod1Amt float64, prod1Name string, prod2Amt float64, prod2Name string, time float64, crafterName string, speed float64) error {
	ing := c.goodsID(ingName)
	prod1 := c.goodsID(prod1Name)
	prod2 := c.goodsID(prod2Name)
	crafter := c.crafterID(crafterName, speed)
	recipe := c.cat.AddRecipe(name, func(r *planner.Recipe) {
		r.Time = time
		r.Ingredients = []planner.Ingredient{{Goods: ing, Amount: ingAmt}}
		r.Products = []planner.Product{{Goods: prod1, Amount: prod1Amt}, {Goods: prod2, Amount: prod2Amt}}
		r.Crafters = []planner.ID{crafter}
	})
	c.arena.AddRow(recipe, crafter, nil)
	return nil
}

// aBurnerRecipe builds the crafter and its fuel in one step since
// plannertest.Catalog has no post-hoc entity mutation: scenario 2's
// fuel profile must be set at AddEntity time.
func (c *solverContext) aBurnerRecipe(name string, ingAmt float64, ingName string, prodAmt float64, prodName string, time float64, crafterName string, speed float64, fuelName string, fuelValue float64, drain float64) error {
	ing := c.goodsID(ingName)
	prod := c.goodsID(prodName)
	fuel := c.cat.AddItem(fuelName, func(g *planner.Goods) { g.Item.FuelValue = fuelValue })
	c.goods[fuelName] = fuel

	crafter := c.cat.AddEntity(crafterName, planner.EntityCrafter, func(e *planner.Entity) {
		e.Crafter = &planner.CrafterData{CraftingSpeed: speed}
		e.Energy = planner.EntityEnergy{Kind: planner.EnergySolidFuel, Drain: drain, Fuels: []planner.ID{fuel}}
	})
	c.crafters[crafterName] = crafter

	recipe := c.cat.AddRecipe(name, func(r *planner.Recipe) {
		r.Time = time
		r.Ingredients = []planner.Ingredient{{Goods: ing, Amount: ingAmt}}
		r.Products = []planner.Product{{Goods: prod, Amount: prodAmt}}
		r.Crafters = []planner.ID{crafter}
	})
	c.arena.AddRow(recipe, crafter, func(row *planner.RecipeRow) { row.HasFuel = true; row.Fuel = fuel })
	c.arena.AddLink(fuel, 0, planner.LinkAllowOverConsumption)
	return nil
}

func (c *solverContext) aLinkDemanding(amount float64, goodsName string) error {
	c.arena.AddLink(c.goodsID(goodsName), amount, planner.LinkMatch)
	return nil
}

func (c *solverContext) aBalancedLinkOn(goodsName string) error {
	c.arena.AddLink(c.goodsID(goodsName), 0, planner.LinkMatch)
	return nil
}

func (c *solverContext) theTableIsSolved() error {
	db := c.cat.Database()
	costAn, err := cost.Build(cost.Context{DB: db, TargetTechnology: planner.NoID})
	if err != nil {
		return fmt.Errorf("building cost analysis: %w", err)
	}

	arena := c.arena.Arena()
	res, err := solve.Solve(solve.Context{DB: db, Params: params.Context{DB: db}, Cost: costAn}, arena, 0)
	c.db = db
	c.solvedArena = arena
	if res != nil {
		c.result = *res
	} else {
		c.result = solve.Result{}
	}
	c.err = err
	return nil
}

func (c *solverContext) theSolveShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("solve returned an error: %w", c.err)
	}
	if !c.result.OK {
		return fmt.Errorf("solve did not succeed: %s", c.result.Message)
	}
	return nil
}

func (c *solverContext) theRowsRecipesPerSecondShouldBe(want float64) error {
	got := c.solvedArena.Rows[0].RecipesPerSecond
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		return fmt.Errorf("recipesPerSecond = %v, want %v", got, want)
	}
	return nil
}

func (c *solverContext) theRowsFuelUsageShouldBe(want float64) error {
	got := c.solvedArena.Rows[0].Parameters.FuelUsagePerSecondPerRecipe()
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("fuel usage per second = %v, want %v", got, want)
	}
	return nil
}

func (c *solverContext) theFlowShouldInclude(goodsName string, want float64) error {
	goods := c.goodsID(goodsName)
	entries := flow.Aggregate(c.db, c.solvedArena, 0)
	for _, e := range entries {
		if e.Goods == goods {
			if diff := e.Amount - want; diff > 1e-9 || diff < -1e-9 {
				return fmt.Errorf("flow[%s] = %v, want %v", goodsName, e.Amount, want)
			}
			return nil
		}
	}
	return fmt.Errorf("flow does not contain goods %q", goodsName)
}

func (c *solverContext) theSolveMessageShouldMention(substr string) error {
	if !strings.Contains(c.result.Message, substr) {
		return fmt.Errorf("solve message %q does not mention %q", c.result.Message, substr)
	}
	return nil
}

func (c *solverContext) atLeastOneRowShouldBeFlaggedDeadlock() error {
	for i := range c.solvedArena.Rows {
		if c.solvedArena.Rows[i].WarningFlags&planner.WarningDeadlockCandidate != 0 {
			return nil
		}
	}
	return fmt.Errorf("no row was flagged DeadlockCandidate")
}

// InitializeSolverScenario registers every Production Table Solver step.
func InitializeSolverScenario(sc *godog.ScenarioContext) {
	sctx := &solverContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sctx.reset()
		return ctx, nil
	})

	sc.Step(`^a recipe "([^"]+)" consuming (\d+(?:\.\d+)?) "([^"]+)" to produce (\d+(?:\.\d+)?) "([^"]+)" and (\d+(?:\.\d+)?) "([^"]+)" with time (\d+(?:\.\d+)?) on crafter "([^"]+)" at speed (\d+(?:\.\d+)?)$`, sctx.aTwoProductRecipe)
	sc.Step(`^a recipe "([^"]+)" consuming (\d+(?:\.\d+)?) "([^"]+)" to produce (\d+(?:\.\d+)?) "([^"]+)" with time (\d+(?:\.\d+)?) on burner crafter "([^"]+)" at speed (\d+(?:\.\d+)?) burning "([^"]+)" with fuel value (\d+(?:\.\d+)?) and drain (\d+(?:\.\d+)?)$`, sctx.aBurnerRecipe)
	sc.Step(`^a recipe "([^"]+)" consuming (\d+(?:\.\d+)?) "([^"]+)" to produce (\d+(?:\.\d+)?) "([^"]+)" with time (\d+(?:\.\d+)?) on crafter "([^"]+)" at speed (\d+(?:\.\d+)?)$`, sctx.aRecipe)
	sc.Step(`^a link demanding (\d+(?:\.\d+)?) "([^"]+)" per second$`, sctx.aLinkDemanding)
	sc.Step(`^a balanced link on "([^"]+)"$`, sctx.aBalancedLinkOn)
	sc.Step(`^the table is solved$`, sctx.theTableIsSolved)
	sc.Step(`^the solve should succeed$`, sctx.theSolveShouldSucceed)
	sc.Step(`^the row's recipes per second should be (-?\d+(?:\.\d+)?)$`, sctx.theRowsRecipesPerSecondShouldBe)
	sc.Step(`^the row's fuel usage per second should be (-?\d+(?:\.\d+)?)$`, sctx.theRowsFuelUsageShouldBe)
	sc.Step(`^the flow should include "([^"]+)" at (-?\d+(?:\.\d+)?)$`, sctx.theFlowShouldInclude)
	sc.Step(`^the solve message should mention (.+)$`, sctx.theSolveMessageShouldMention)
	sc.Step(`^at least one row should be flagged as a deadlock candidate$`, sctx.atLeastOneRowShouldBeFlaggedDeadlock)
}
