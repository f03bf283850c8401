// Package main is the entry point for the shipping-rules CLI.
package main

import (
	"os"

	"shipping-rules/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
