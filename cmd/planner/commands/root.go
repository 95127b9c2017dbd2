package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Coog Planner - UH course data and degree planning backend",
	Long: `Coog Planner backend CLI.

Serves University of Houston course and grade data to the web client,
backed by Supabase/Postgres with a Redis edge cache.

Examples:
  go run ./cmd/planner api
  go run ./cmd/planner warm
  go run ./cmd/planner lookup "COSC 3320"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
