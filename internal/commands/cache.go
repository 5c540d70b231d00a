package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk API response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached API responses",
	RunE:  runCacheClear,
}

var cacheExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Delete only cached responses past their TTL",
	RunE:  runCacheExpire,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheExpireCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cache.ClearAll(); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}

func runCacheExpire(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.cache.ClearExpired()
	fmt.Printf("Removed %d expired entries.\n", n)
	return nil
}
