package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the draft engine
var rootCmd = &cobra.Command{
	Use:   "fantasy-draft",
	Short: "Fantasy football snake-draft valuation and simulation engine",
	Long: `fantasy-draft values a player pool by value over replacement, runs
snake drafts against strategy-driven AI teams and serves the draft over
HTTP, WebSocket, gRPC and MCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
