package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string = "http://localhost:8787"
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "social",
	Short: "Social media CLI - Inspect and administer a running API server",
	Long: `Social media CLI talks to a running API server over HTTP.
Check server health, browse and send chat messages, and update presence.`,
	SilenceUsage: true,
}

func init() {
	if env := os.Getenv("SOCIAL_API_URL"); env != "" {
		apiURL = env
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL (defaults to SOCIAL_API_URL env var)")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
