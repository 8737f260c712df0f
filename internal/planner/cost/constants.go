package cost

// Tuning constants for the Cost Analysis LP (spec.md §4.2). Only
// CostLowerLimit and the two mining-penalty constants are pinned by a
// literal worked example in spec.md §8 scenario 6; the rest are
// implementer-chosen magnitudes in the same spirit as the original's
// own tuning constants and are documented as such in DESIGN.md.
const (
	// CostLowerLimit is the lower bound on every goods cost variable.
	CostLowerLimit = -10

	// CostLimitWhenGeneratesOnMap bounds the cost of a map-generated
	// good inversely with how much of it the map yields.
	CostLimitWhenGeneratesOnMap = 2e6

	CostPerSecond          = 0.1
	CostPerIngredientPerSize = 0.05
	CostPerProductPerSize    = 0.05
	CostPerMj                = 0.1
	CostPerItem              = 0.1
	CostPerFluid             = 0.1 / 50
	CostPerPollution         = 0.01

	// MiningMaxExtraPenaltyForRarity and MiningMaxDensityForPenalty are
	// pinned exactly to spec.md §8 scenario 6's worked numbers
	// (density 200, expected penalty 1+ln(10)).
	MiningMaxExtraPenaltyForRarity = 10
	MiningMaxDensityForPenalty     = 2000

	minCrafterSize       = 1
	pollutionCostModifier = 1
)
