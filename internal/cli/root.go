// Package cli implements the powertray command-line interface using
// Cobra. Each subcommand maps to a tray menu action (list, set, afk,
// startup) or controls the daemon itself (run, status).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "powertray",
	Short: "powertray — power plan switcher with AFK auto-switch",
	Long: `powertray keeps your power plan in hand.
Pick a plan from the menu or CLI, and let the AFK engine drop to a
quieter plan when you step away and restore it when you return.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
