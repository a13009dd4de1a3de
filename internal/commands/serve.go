package commands

import (
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/expensebot/core/cmd"
	"github.com/m3rciful/expensebot/internal/app"
	"github.com/m3rciful/expensebot/internal/config"
)

// runBot is replaced in tests.
var runBot = corecmd.Run

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(corecmd.Options{
				ConfigPath:        *configPath,
				ConfigEnvVar:      configEnvVar,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig:        loadConfig,
				Bootstrap:         app.Bootstrap,
			})
		},
	}
}

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
