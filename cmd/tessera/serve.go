package main

import (
	"github.com/spf13/cobra"

	"tessera/cmd/internal/app"
)

func newServeCmd() *cobra.Command {
	var addr, store string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			if store != "" {
				cfg.Store = store
			}
			return app.Run(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TESSERA_HTTP_ADDR)")
	cmd.Flags().StringVar(&store, "store", "", "session store: memory, postgres or sqlite (overrides TESSERA_STORE)")
	return cmd
}
