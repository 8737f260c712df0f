// Command production-planner is the CLI entry point for the
// Production Table Solver and Cost Analysis engine: it imports a mod
// pack's static data, solves production tables against it, and serves
// the same engines over a stdio JSON-RPC tool protocol.
package main

import (
	"github.com/foundryworks/production-planner/cmd/production-planner/cli"
)

func main() {
	cli.Execute()
}
