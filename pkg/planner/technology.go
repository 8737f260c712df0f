package planner

// Technology inherits the Recipe shape: its Ingredients are the
// science-pack costs, its Time is the research duration per Count
// repeats, consumed by Cost Analysis's science-pack usage term
// (spec.md §4.2, §3.1).
type Technology struct {
	Recipe

	Prerequisites []ID // Technology ids
	UnlockRecipes []ID // Recipe ids unlocked on completion
	Count         int  // number of research repeats required
}
