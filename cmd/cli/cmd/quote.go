// Package cmd - quote command
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shipping-rules/adapters/storage"
	"shipping-rules/core/engine"
	"shipping-rules/core/output"
	"shipping-rules/core/pricing"
	"shipping-rules/core/types"
	"shipping-rules/internal/config"
)

var (
	quoteItems    []string
	quoteFile     string
	quoteInstance string
	quoteMethod   string
	quoteFormat   string
)

// quoteCmd prices a package
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute the shipping rate for a package",
	Long: `Compute the shipping rate for a package of cart items.

Items are given as weight:quantity[:id] (weight in kg) or as a JSON file
holding [{"id": "...", "weight": 2.5, "quantity": 1}, ...].
Non-numeric or negative weights count as zero.

Examples:
  shipping-rules quote --item 3:2 --item 5:1
  shipping-rules quote --items cart.json --instance zone-eu --format markdown`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringArrayVarP(&quoteItems, "item", "i", nil, "cart item as weight:quantity[:id] (repeatable)")
	quoteCmd.Flags().StringVar(&quoteFile, "items", "", "JSON file with cart items")
	quoteCmd.Flags().StringVar(&quoteInstance, "instance", "", "method instance (default from config)")
	quoteCmd.Flags().StringVar(&quoteMethod, "method", "", "shipping method id")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (cli, json, markdown)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	format := quoteFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	items := make([]types.LineItem, 0, len(quoteItems))
	for _, raw := range quoteItems {
		items = append(items, parseItemFlag(raw))
	}
	if quoteFile != "" {
		fileItems, err := readItemsFile(quoteFile)
		if err != nil {
			return err
		}
		items = append(items, fileItems...)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	quoter := engine.New(storage.Provider{Store: store}, nil, engine.Config{
		Currency:        cfg.Pricing.Currency,
		DefaultInstance: cfg.Pricing.DefaultInstance,
	})

	result, err := quoter.Quote(cmd.Context(), engine.QuoteRequest{
		MethodID:   quoteMethod,
		InstanceID: quoteInstance,
		Package:    types.Package{Items: items},
	})
	if err != nil {
		return fmt.Errorf("failed to compute quote: %w", err)
	}

	return formatter.Render(cmd.OutOrStdout(), result)
}

// parseItemFlag reads weight:quantity[:id]; quantity defaults to 1
func parseItemFlag(raw string) types.LineItem {
	parts := strings.SplitN(raw, ":", 3)
	weight := parts[0]
	qty := "1"
	id := ""
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		qty = parts[1]
	}
	if len(parts) > 2 {
		id = parts[2]
	}
	return pricing.NewLineItem(id, weight, qty)
}

type fileItem struct {
	ID       string `json:"id"`
	Weight   any    `json:"weight"`
	Quantity any    `json:"quantity"`
}

func readItemsFile(path string) ([]types.LineItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []fileItem
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse items file: %w", err)
	}

	items := make([]types.LineItem, 0, len(raw))
	for _, it := range raw {
		qty := it.Quantity
		if qty == nil {
			qty = 1
		}
		items = append(items, pricing.NewLineItem(it.ID, it.Weight, qty))
	}
	return items, nil
}
