package config

// SetDefaults fills any zero-valued field with the planner's default,
// one leaf field at a time, mirroring acdtunes-spacetraders's
// defaults.go shape.
func SetDefaults(cfg *Config) {
	if cfg.Store.DatabasePath == "" {
		cfg.Store.DatabasePath = "./production-planner.db"
	}
	if cfg.Analysis.ResearchSpeedBonus == 0 {
		cfg.Analysis.ResearchSpeedBonus = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Server.BackgroundRatePerSecond == 0 {
		cfg.Server.BackgroundRatePerSecond = 4
	}
	if cfg.Server.BackgroundBurst == 0 {
		cfg.Server.BackgroundBurst = 2
	}
}
