package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundryworks/production-planner/internal/planner/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration (file + PP_ env overrides + defaults)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("warning: %v; showing defaults\n", err)
				cfg = config.LoadConfigOrDefault(configPath)
			}

			fmt.Println("Store:")
			fmt.Printf("  mod_pack_path:              %s\n", cfg.Store.ModPackPath)
			fmt.Printf("  database_path:              %s\n", cfg.Store.DatabasePath)
			fmt.Println("Analysis:")
			fmt.Printf("  milestone_mode:             %t\n", cfg.Analysis.MilestoneMode)
			fmt.Printf("  research_speed_bonus:       %.2f\n", cfg.Analysis.ResearchSpeedBonus)
			fmt.Println("Log:")
			fmt.Printf("  level:                      %s\n", cfg.Log.Level)
			fmt.Println("Server:")
			fmt.Printf("  background_rate_per_second: %.2f\n", cfg.Server.BackgroundRatePerSecond)
			fmt.Printf("  background_burst:           %d\n", cfg.Server.BackgroundBurst)
			return nil
		},
	}
}
