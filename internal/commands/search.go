package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"pirate-scout/internal/engine"
)

var (
	searchRadius   int
	searchPage     int
	searchPageSize int
)

var searchCmd = &cobra.Command{
	Use:   "search <reference-system>",
	Short: "Search systems near a reference and rank them by piracy score",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchRadius, "radius", "r", 20, "search radius in light years")
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "result page to show")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", engine.DefaultPageSize, "results per page")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	reference := args[0]
	fmt.Printf("Searching within %d ly of %s...\n", searchRadius, reference)

	results, err := a.analyzer.SearchAndScore(ctx, reference, searchRadius, func(p engine.Progress) {
		fmt.Fprintf(os.Stderr, "\rScoring %d/%d", p.Done, p.Total)
	})
	fmt.Fprint(os.Stderr, "\r")
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No systems found.")
		return nil
	}

	fmt.Printf("%d systems scored.\n\n", len(results))
	page := engine.Page(results, searchPage, searchPageSize)
	if len(page) == 0 {
		fmt.Printf("Page %d is out of range.\n", searchPage)
		return nil
	}

	printResultTable(page, searchPage*searchPageSize)
	return nil
}

func printResultTable(results []*engine.ScoreResult, offset int) {
	fmt.Printf("%-4s %-28s %7s  %-20s %s\n", "#", "SYSTEM", "SCORE", "BEST COMMODITY", "NOTES")
	for i, r := range results {
		best := "-"
		if r.BestCommodity != nil {
			best = fmt.Sprintf("%s (%d)", r.BestCommodity.Name, r.BestCommodity.Demand)
		}
		fmt.Printf("%-4d %-28s %7.2f  %-20s %s\n", offset+i+1, r.SystemName, r.FinalScore, best, resultNotes(r))
	}
}

func resultNotes(r *engine.ScoreResult) string {
	var notes []string
	if r.HasAnarchyGovernment {
		notes = append(notes, "anarchy")
	}
	if r.HasLowSecurity {
		notes = append(notes, "low-sec")
	}
	if r.HasExtractionEconomy {
		notes = append(notes, "extraction")
	} else if r.HasIndustrialEconomy {
		notes = append(notes, "industrial")
	}
	if r.HasPirateFaction {
		notes = append(notes, "pirate faction")
	}
	if r.SkippedMarket {
		notes = append(notes, "market skipped")
	}
	return strings.Join(notes, ", ")
}
