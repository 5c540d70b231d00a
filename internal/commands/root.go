// Package commands wires the CLI together with cobra.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags.
	verbose     bool
	scoringFile string
)

var rootCmd = &cobra.Command{
	Use:   "pirate-scout",
	Short: "Rank star systems for pirate activity",
	Long: `pirate-scout searches the galaxy around a reference system and scores
each neighbour for how attractive it is to pirates: economy, government,
security, faction state, population, rings and market demand.

Examples:
  pirate-scout search "HIP 20277" --radius 20
  pirate-scout score "Eravate" --save
  pirate-scout saved list
  pirate-scout apikey set <your-edsm-key>`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&scoringFile, "scoring", "", "path to a scoring rubric JSON (defaults built in)")
}
