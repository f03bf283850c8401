// Package main - Entry point for the shipping-rules quoting server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/api"
	"shipping-rules/internal/config"
	"shipping-rules/internal/logging"
	"shipping-rules/internal/metrics"
)

const version = "1.0.6"

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	store, err := storage.New(cfg.Store)
	if err != nil {
		logging.Fatal("failed to open settings store", zap.Error(err))
	}
	defer store.Close()

	opts := api.Options{
		Version: version,
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("shipping-rules server starting",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Address),
		zap.String("store", cfg.Store.Backend),
	)

	if err := api.NewServer(opts).Run(ctx); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
