package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved systems",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved systems, best score first",
	RunE:  runSavedList,
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <system>",
	Short: "Remove one saved system",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRemove,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved systems",
	RunE:  runSavedClear,
}

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedClearCmd)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	systems, err := a.store.SavedSystems()
	if err != nil {
		return err
	}
	if len(systems) == 0 {
		fmt.Println("No saved systems.")
		return nil
	}

	fmt.Printf("%-28s %7s  %-20s %s\n", "SYSTEM", "SCORE", "BEST COMMODITY", "SAVED")
	for _, s := range systems {
		best := "-"
		if s.Result.BestCommodity != nil {
			best = fmt.Sprintf("%s (%d)", s.Result.BestCommodity.Name, s.Result.BestCommodity.Demand)
		}
		fmt.Printf("%-28s %7.2f  %-20s %s\n",
			s.Record.Name, s.Result.FinalScore, best, s.Result.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.RemoveSystem(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s.\n", args[0])
	return nil
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.ClearSaved()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d saved systems.\n", n)
	return nil
}
