package store

// Row types mirror the schema's columns directly; internal/planner/catalog
// is responsible for turning these into the typed, id-dense pkg/planner
// collections. Keeping these flat (rather than reusing pkg/planner's
// types) lets the schema evolve independently of the in-memory model.

type ItemRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	StackSize                 int
	HasFuelResult             bool
	FuelResultID              int64
	FuelValue                 float64
	HasPlaceResult            bool
	PlaceResultID             int64
	HasMiscSource             bool
	MiscSourceID              int64
	Module                    *ItemModuleRow // nil unless this item is a module
}

type ItemModuleRow struct {
	Speed            float64
	Productivity     float64
	Consumption      float64
	Pollution        float64
	RecipeAllowlist  []int64
	CrafterBlacklist []int64
}

type FluidRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	Temperature               float64
	TemperatureMin            float64
	TemperatureMax            float64
	HeatCapacity              float64
	HeatValue                 float64
	OriginalName              string
	VariantListID             int64
	HasVariantList            bool
}

type FluidVariantListRow struct {
	ID           int64
	OriginalName string
	// Variants is ordered ascending by position (== ascending temperature).
	Variants []int64
}

type SpecialGoodsRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	IsPower                   bool
	IsResearch                bool
}

type IngredientRow struct {
	GoodsKind    int
	GoodsID      int64
	Amount       float64
	IsCatalyst   bool
	VariantGroup int
}

type ProductRow struct {
	GoodsKind          int
	GoodsID            int64
	Probability        float64
	AmountMin          float64
	AmountMax          float64
	Amount             float64
	CatalystAmount     float64
	ProductivityAmount float64
}

type RecipeRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	Time                      float64
	Flags                     uint32
	Enabled                   bool
	HasSourceEntity           bool
	SourceEntityID            int64
	HasMainProduct            bool
	MainProductIndex          int

	Ingredients           []IngredientRow
	Products              []ProductRow
	AllowedModules        []int64
	Crafters              []int64
	UnlockingTechnologies []int64
}

type TechnologyRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	Time                      float64
	Flags                     uint32
	Enabled                   bool
	Count                     int

	SciencePacks  []IngredientRow
	Prerequisites []int64
	UnlockRecipes []int64
}

type EntityEnergyRow struct {
	Kind                   int
	Emissions              float64
	Drain                  float64
	Effectivity            float64
	FuelConsumptionLimit   float64
	WorkingTemperatureMin  float64
	WorkingTemperatureMax  float64
	AcceptedTemperatureMin float64
	AcceptedTemperatureMax float64
	Fuels                  []int64
}

type EntityCrafterRow struct {
	CraftingSpeed    float64
	Productivity     float64
	ModuleSlots      int
	AllowedEffects   uint8
	BeaconEfficiency float64
}

type EntityRow struct {
	ID                        int64
	Name                      string
	LocaleKey                 string
	Icon                      string
	Accessible                bool
	AccessibleAtNextMilestone bool
	EntityKind                int
	MapGenerated              bool
	MapGenDensity             float64

	ItemsToPlace []int64
	Energy       EntityEnergyRow
	Crafter      *EntityCrafterRow
}
