package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the HTTP API and the report workers until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, cleanup, err := f.buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}
}
