package cli

import (
	"os"

	"github.com/spf13/cobra"

	"MarketClose/internal/di"
	"MarketClose/pkg/config"
	"MarketClose/pkg/server"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "marketclose",
		Short:        "Daily market close report: bonds, spreads, indices and commodities",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "config/config.yaml", "config file path")

	cmd.AddCommand(serveCmd(f), runCmd(f))
	return cmd
}

// buildApp loads the configuration and wires the application.
func (f *rootFlags) buildApp() (*server.App, *config.Config, func(), error) {
	cfg, err := config.LoadWithEnv(f.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, cfg, cleanup, nil
}
