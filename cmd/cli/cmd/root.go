// Package cmd provides the CLI commands for shipping-rules.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/internal/config"
	"shipping-rules/internal/logging"
)

// Version is the tool version
const Version = "1.0.6"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shipping-rules",
	Short: "Weight based shipping rates: fixed price plus price per extra kilo",
	Long: `shipping-rules prices a package with a flat weight rule.

Packages up to the flat weight pay the fixed price; every kilo above it
adds the price per kilo. Rules are configured per method instance.

Examples:
  shipping-rules quote --item 3:2 --item 5:1
  shipping-rules settings set zone-eu fixed_price=4.50 flat_weight=5
  shipping-rules quote --instance zone-eu --format json --items cart.json
  shipping-rules serve --addr :8080`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

func openStore() (storage.Store, error) {
	store, err := storage.New(config.Get().Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return store, nil
}

// notifySettings delivers a settings change event when a webhook is configured
func notifySettings(cmd *cobra.Command, event *webhook.Event) {
	hook := webhook.New(config.Get().Webhook)
	if hook == nil {
		return
	}
	if err := hook.Notify(cmd.Context(), event); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: settings notification failed: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shipping-rules version %s\n", Version)
	},
}
