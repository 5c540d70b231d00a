package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var scoreSave bool

var scoreCmd = &cobra.Command{
	Use:   "score <system>",
	Short: "Score a single system by name using EDSM data",
	Long: `Score looks a single system up on EDSM, including bodies, stations and
traffic, and prints the full score breakdown. Requires a configured EDSM
API key (see "apikey set").`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "save the scored system for later")
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.edsm == nil {
		return fmt.Errorf("no EDSM API key configured, run: pirate-scout apikey set <key>")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	name := args[0]
	rec, err := a.edsm.CompleteSystem(ctx, name)
	if err != nil {
		return fmt.Errorf("look up %q: %w", name, err)
	}

	res, err := a.scorer.Score(ctx, rec)
	if err != nil {
		return fmt.Errorf("score %q: %w", name, err)
	}
	if res == nil {
		fmt.Printf("No data for %s.\n", name)
		return nil
	}

	fmt.Println(res.String())
	if res.BestCommodity != nil {
		fmt.Printf("  Best commodity: %s (demand %d, sell %d)\n",
			res.BestCommodity.Name, res.BestCommodity.Demand, res.BestCommodity.SellPrice)
	}
	if rec.Traffic != nil {
		fmt.Printf("  Traffic: %d ships this week, %d today\n", rec.Traffic.Week, rec.Traffic.Day)
	}

	if scoreSave {
		if err := a.store.SaveSystem(rec, res); err != nil {
			return err
		}
		fmt.Printf("Saved %s.\n", rec.Name)
	}
	return nil
}
