// Package bdd runs the Gherkin acceptance suite for spec.md §8's six
// literal scenarios, grounded on acdtunes-spacetraders's test/bdd
// package: one godog.TestSuite over every feature file, with step
// definitions registered by a dedicated steps package per scenario
// family.
package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/foundryworks/production-planner/test/bdd/steps"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	steps.InitializeSolverScenario(sc)
	steps.InitializeCostScenario(sc)
}
