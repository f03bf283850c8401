// Package cmd - methods command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipping-rules/core/method"
)

// methodsCmd lists registered shipping methods
var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the registered shipping methods",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, def := range method.GetDefaultRegistry().List() {
			fmt.Fprintf(out, "%s\n", def.ID)
			fmt.Fprintf(out, "  Title:    %s\n", def.Title)
			fmt.Fprintf(out, "  About:    %s\n", def.Description)
			fmt.Fprintf(out, "  Supports: %s\n", strings.Join(def.Supports, ", "))
		}
	},
}
