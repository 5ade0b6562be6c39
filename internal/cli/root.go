package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skirmish",
		Short: "Real-time multiplayer session server",
		Long: `skirmish is a real-time multiplayer session server.

It accepts concurrent client connections over a line-oriented TCP
protocol, matches players into games by rank, and runs each match on its
own worker. An admin HTTP API exposes health, matchmaking status, and the
leaderboard.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newClientCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
