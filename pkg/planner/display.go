package planner

import "github.com/dustin/go-humanize"

// DisplayAmount renders a flow amount (items or fluid units per
// second) the way the project's UI layer would: SI-prefixed at every
// magnitude with up to 3 decimal digits (0.5 renders as "500 m", 1500
// as "1.5 k"), matching the teacher's use of humanize for
// operator-facing counters.
func DisplayAmount(amountPerSecond float64) string {
	if amountPerSecond < 0 {
		return "-" + humanize.SIWithDigits(-amountPerSecond, 3, "")
	}
	return humanize.SIWithDigits(amountPerSecond, 3, "")
}

// DisplayCost renders a Cost Analysis unit cost with a currency-style
// grouped format.
func DisplayCost(cost float64) string {
	return humanize.CommafWithDigits(cost, 2)
}

// DisplayBuildingCount renders a solved building count with at most
// two decimal places (rounded to nearest, trailing zeros dropped)
// while the underlying value stays exact for further solving.
func DisplayBuildingCount(buildings float64) string {
	return humanize.FtoaWithDigits(buildings, 2)
}
