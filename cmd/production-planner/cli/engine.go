package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/foundryworks/production-planner/internal/planner/catalog"
	"github.com/foundryworks/production-planner/internal/planner/config"
	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/params"
	"github.com/foundryworks/production-planner/internal/planner/store"
	"github.com/foundryworks/production-planner/pkg/planner"
)

// newLogger builds the shared slog logger from cfg.Log, mirroring the
// teacher's cmd/crafting-server verbose/level-to-slog wiring.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadEngine opens the configured store, builds the catalog, and runs
// Cost Analysis once — the same bootstrap every solve/cost/serve
// subcommand needs before it can do anything.
func loadEngine(ctx context.Context) (*catalog.Database, *cost.Analysis, *config.Config, error) {
	cfg := config.LoadConfigOrDefault(configPath)

	db, err := store.OpenAndInit(ctx, cfg.Store.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = db.Close() }()

	cat, err := catalog.Build(ctx, db, catalog.AlwaysAccessible())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building catalog: %w", err)
	}

	analysis, err := cost.Build(cost.Context{
		DB:               cat,
		TargetTechnology: planner.NoID,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("running cost analysis: %w", err)
	}

	return cat, analysis, cfg, nil
}

func paramsContext(cfg *config.Config, db *catalog.Database) params.Context {
	return params.Context{DB: db, ResearchSpeedBonus: cfg.Analysis.ResearchSpeedBonus}
}
