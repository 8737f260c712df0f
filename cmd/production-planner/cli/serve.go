package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foundryworks/production-planner/internal/planner/config"
	"github.com/foundryworks/production-planner/internal/planner/server"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stdio JSON-RPC tool server",
		Long: `Build the catalog and Cost Analysis once, then serve
solve_table, recipe_lookup, search, and bill_of_materials over a
newline-delimited JSON-RPC protocol on stdin/stdout, matching the
teacher's MCP tool server shape.

Example:
  production-planner serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			logger := newLogger(cfg)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				logger.Info("shutting down...")
				cancel()
			}()

			cat, analysis, _, err := loadEngine(ctx)
			if err != nil {
				return err
			}

			srv := server.NewServer(&server.Engine{
				DB:     cat,
				Cost:   analysis,
				Params: paramsContext(cfg, cat),
			}, logger)

			logger.Info("production-planner tool server ready", "db", cfg.Store.DatabasePath)
			if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("server error: %w", err)
			}

			fmt.Fprintln(os.Stderr, "server stopped")
			return nil
		},
	}

	return cmd
}
