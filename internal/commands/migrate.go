package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/expensebot/core/cmd"
	coredatabase "github.com/m3rciful/expensebot/core/database"
	"github.com/m3rciful/expensebot/internal/app"
	"github.com/m3rciful/expensebot/internal/config"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema",
	}
	cmd.AddCommand(
		newMigrateStep(configPath, "up", "Apply all pending migrations", coredatabase.Up),
		newMigrateStep(configPath, "down", "Roll back the latest migration", coredatabase.Down),
	)
	return cmd
}

func newMigrateStep(configPath *string, use, short string, dir coredatabase.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := corecmd.ResolveConfigPath(*configPath, configEnvVar, defaultConfigPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := app.MigrateDatabase(cmd.Context(), cfg, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", dir)
			return nil
		},
	}
}
