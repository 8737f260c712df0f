// Package config loads process configuration for the production
// planner, grounded on acdtunes-spacetraders's
// internal/infrastructure/config: viper reads a YAML file with
// PP_-prefixed environment overrides, then the result is defaulted
// and validated before any engine sees it.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// StoreConfig locates the mod-pack's static data and the SQLite file
// the catalog is built from.
type StoreConfig struct {
	ModPackPath string `mapstructure:"mod_pack_path" validate:"required"`
	DatabasePath string `mapstructure:"database_path" validate:"required"`
}

// AnalysisConfig selects Cost Analysis's accessibility horizon.
type AnalysisConfig struct {
	MilestoneMode      bool   `mapstructure:"milestone_mode"`
	ResearchSpeedBonus float64 `mapstructure:"research_speed_bonus" validate:"gte=0"`
}

// LogConfig controls the shared slog logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// ServerConfig controls the stdio tool server's background hand-off.
type ServerConfig struct {
	BackgroundRatePerSecond float64 `mapstructure:"background_rate_per_second" validate:"gt=0"`
	BackgroundBurst         int     `mapstructure:"background_burst" validate:"gt=0"`
}

// Config is the full process configuration, assembled from a YAML
// file and PP_-prefixed environment variables.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LoadConfig reads configPath (a directory) for a "config.yaml", lets
// PP_-prefixed environment variables override it, then defaults and
// validates the result.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("PP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so every key is
	// bound to its PP_ variable explicitly.
	for _, key := range []string{
		"store.mod_pack_path", "store.database_path",
		"analysis.milestone_mode", "analysis.research_speed_bonus",
		"log.level",
		"server.background_rate_per_second", "server.background_burst",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads from configPath, falling back to an
// all-defaults Config if no file and no overrides are present.
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = &Config{}
		SetDefaults(cfg)
	}
	return cfg
}

// MustLoadConfig loads from configPath, panicking on any error.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}
