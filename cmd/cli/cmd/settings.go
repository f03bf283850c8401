// Package cmd - settings commands
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/core/settings"
	"shipping-rules/internal/config"
	"shipping-rules/internal/errors"
)

var settingsJSON bool

// settingsCmd groups instance settings management
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage shipping method instance settings",
	Long: `Show, change and reset the settings of a shipping method instance.

Fields: title, tax_status (taxable|none), price_kilo, flat_weight, fixed_price.
An empty value resets a field to its default.

Examples:
  shipping-rules settings show zone-eu
  shipping-rules settings set zone-eu price_kilo=1.5 tax_status=none
  shipping-rules settings reset zone-eu`,
}

var settingsFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the configurable fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tTYPE\tDEFAULT\tTITLE")
		for _, f := range settings.Fields() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Key, f.Type, f.Default, f.Title)
		}
		return tw.Flush()
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show [instance]",
	Short: "Show the effective settings of an instance",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.Get(cmd.Context(), instanceArg(args))
		if err != nil {
			return err
		}
		return printRecord(cmd, record)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <instance> key=value...",
	Short: "Change settings of an instance",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.Update(cmd.Context(), args[0], func(current settings.Instance) (settings.Instance, error) {
			return current.Apply(values)
		})
		if err != nil {
			return err
		}
		notifySettings(cmd, webhook.SettingsUpdated(record))
		return printRecord(cmd, record)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset <instance>",
	Short: "Drop saved settings so the instance uses the defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		notifySettings(cmd, webhook.SettingsReset(args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Settings of %s reset to defaults\n", args[0])
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances with saved settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved instances")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INSTANCE\tTITLE\tFIXED\tFLAT WEIGHT\tPER KILO\tUPDATED")
		for _, r := range records {
			pc := r.Settings.PricingConfig()
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.InstanceID, r.Settings.Title(),
				pc.FixedPrice, pc.FlatWeight, pc.PricePerKilo,
				r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsJSON, "json", false, "print the stored record as JSON")
	settingsSetCmd.Flags().BoolVar(&settingsJSON, "json", false, "print the stored record as JSON")

	settingsCmd.AddCommand(settingsFieldsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsListCmd)
}

func instanceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.Get().Pricing.DefaultInstance
}

// parseAssignments reads key=value pairs; a bare "key=" clears the field
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Inputf("expected key=value, got %q", arg)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}

func printRecord(cmd *cobra.Command, record *storage.Record) error {
	out := cmd.OutOrStdout()
	if settingsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	source := "defaults"
	if record.Saved {
		source = "saved " + record.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(out, "Instance: %s (%s)\n", record.InstanceID, source)

	resolved := record.Settings.Resolved()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range settings.Fields() {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Key, resolved[f.Key])
	}
	return tw.Flush()
}
