package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundryworks/production-planner/internal/planner/config"
	"github.com/foundryworks/production-planner/internal/planner/importer"
	"github.com/foundryworks/production-planner/internal/planner/store"
)

func newImportCommand() *cobra.Command {
	var packPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a mod pack's static data into the store",
		Long: `Read a mod pack JSON document (items, fluids, special goods,
recipes, technologies, entities) and bulk-load it into the configured
SQLite store.

Example:
  production-planner import --pack data/modpack.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if packPath == "" {
				return fmt.Errorf("--pack is required")
			}

			cfg := config.LoadConfigOrDefault(configPath)
			ctx := cmd.Context()

			db, err := store.OpenAndInit(ctx, cfg.Store.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = db.Close() }()

			pack, err := importer.ImportFile(ctx, db, packPath)
			if err != nil {
				return fmt.Errorf("importing mod pack: %w", err)
			}

			fmt.Printf("imported %d items, %d fluids, %d special goods, %d entities, %d recipes, %d technologies\n",
				len(pack.Items), len(pack.Fluids), len(pack.SpecialGoods), len(pack.Entities), len(pack.Recipes), len(pack.Technologies))
			return nil
		},
	}

	cmd.Flags().StringVar(&packPath, "pack", "", "Path to the mod pack JSON document")
	return cmd
}
