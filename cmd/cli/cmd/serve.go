// Package cmd - serve command
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/api"
	"shipping-rules/internal/config"
	"shipping-rules/internal/logging"
	"shipping-rules/internal/metrics"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quoting HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if serveAddr != "" {
			cfg.Server.Address = serveAddr
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.NewServer(serverOptions(cfg, store)).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

// serverOptions wires metrics and the settings webhook as configured
func serverOptions(cfg *config.Config, store storage.Store) api.Options {
	opts := api.Options{
		Version: Version,
		Config:  cfg,
		Store:   store,
		Logger:  logging.Logger,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.New(cfg.Metrics.Namespace, nil)
	}
	if hook := webhook.New(cfg.Webhook); hook != nil {
		opts.Notifier = hook
	}
	return opts
}
