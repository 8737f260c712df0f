package planner

import "errors"

// Sentinel errors returned by the solver and share packages. Callers
// use errors.Is rather than string matching (spec.md §7).
var (
	// ErrAnalysisWarning indicates a solve completed but left one or
	// more rows or links in a warning state (deadlock candidate,
	// overproduction required, exceeds built count).
	ErrAnalysisWarning = errors.New("planner: solve completed with warnings")

	// ErrModelInfeasible indicates the LP model for a table has no
	// feasible solution.
	ErrModelInfeasible = errors.New("planner: production table model is infeasible")

	// ErrModelAbnormal indicates the LP solver terminated without a
	// definite feasible/infeasible/unbounded verdict (numerical
	// breakdown, iteration limit).
	ErrModelAbnormal = errors.New("planner: production table model solve was abnormal")

	// ErrExceedsBuiltCount indicates a row's solved building count
	// exceeds its FixedBuildings pin.
	ErrExceedsBuiltCount = errors.New("planner: row solution exceeds fixed building count")

	// ErrShareStringInvalid indicates a share string failed header,
	// version, or reserved-field validation during decode.
	ErrShareStringInvalid = errors.New("planner: share string is not valid")
)
