package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/config"
)

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &config.Config{}
	config.SetDefaults(cfg)

	assert.Equal(t, "./production-planner.db", cfg.Store.DatabasePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, float64(4), cfg.Server.BackgroundRatePerSecond)
	assert.Equal(t, 2, cfg.Server.BackgroundBurst)
	assert.Equal(t, float64(0), cfg.Analysis.ResearchSpeedBonus)
}

func TestSetDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &config.Config{
		Store:  config.StoreConfig{DatabasePath: "/srv/custom.db"},
		Log:    config.LogConfig{Level: "debug"},
		Server: config.ServerConfig{BackgroundRatePerSecond: 10, BackgroundBurst: 5},
	}
	config.SetDefaults(cfg)

	assert.Equal(t, "/srv/custom.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, float64(10), cfg.Server.BackgroundRatePerSecond)
	assert.Equal(t, 5, cfg.Server.BackgroundBurst)
}

func TestValidateConfig_RequiresModPackPath(t *testing.T) {
	cfg := &config.Config{}
	config.SetDefaults(cfg) // fills DatabasePath, leaves ModPackPath empty

	err := config.ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ModPackPath is required")
}

func TestValidateConfig_RejectsBadLogLevelAndNonPositiveRate(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{ModPackPath: "/mods", DatabasePath: "/db.sqlite"},
		Log:      config.LogConfig{Level: "verbose"},
		Server:   config.ServerConfig{BackgroundRatePerSecond: 0, BackgroundBurst: 1},
		Analysis: config.AnalysisConfig{ResearchSpeedBonus: 0},
	}

	err := config.ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level must be one of")
	assert.Contains(t, err.Error(), "BackgroundRatePerSecond must be greater than 0")
}

func TestValidateConfig_AcceptsFullyDefaultedConfig(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{ModPackPath: "/mods"}}
	config.SetDefaults(cfg)

	assert.NoError(t, config.ValidateConfig(cfg))
}

func TestLoadConfig_EnvOverridesFillRequiredFields(t *testing.T) {
	t.Setenv("PP_STORE_MOD_PACK_PATH", "/mods/base")
	t.Setenv("PP_STORE_DATABASE_PATH", "/var/lib/production-planner.db")
	t.Setenv("PP_LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/mods/base", cfg.Store.ModPackPath)
	assert.Equal(t, "/var/lib/production-planner.db", cfg.Store.DatabasePath)
	assert.Equal(t, "warn", cfg.Log.Level)
	// untouched fields still pick up SetDefaults.
	assert.Equal(t, float64(4), cfg.Server.BackgroundRatePerSecond)
}

func TestLoadConfigOrDefault_FallsBackWithoutPanicking(t *testing.T) {
	cfg := config.LoadConfigOrDefault(t.TempDir())
	require.NotNil(t, cfg)
	assert.Equal(t, "./production-planner.db", cfg.Store.DatabasePath)
	assert.Equal(t, "", cfg.Store.ModPackPath)
}

func TestMustLoadConfig_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("PP_LOG_LEVEL", "not-a-real-level")
	t.Setenv("PP_STORE_MOD_PACK_PATH", "/mods")

	assert.Panics(t, func() {
		config.MustLoadConfig(t.TempDir())
	})
}
