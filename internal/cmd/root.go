// Package cmd wires the issueforge CLI. Commands construct their
// dependencies from the environment configuration and hand the real work
// to the tracker.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issueforge",
	Short: "Turn project descriptions into GitHub issues",
	Long: `issueforge takes a free-text description of a software project and uses
an AI model (via OpenRouter) to break it down into labeled GitHub issues,
organized into phases, with an optional Projects v2 board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context so commands
// stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}
