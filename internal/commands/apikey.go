package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the EDSM API key",
}

var apikeySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store the EDSM API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeySet,
}

var apikeyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an EDSM API key is configured",
	RunE:  runAPIKeyStatus,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeySetCmd)
	apikeyCmd.AddCommand(apikeyStatusCmd)
}

func runAPIKeySet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetEDSMKey(args[0]); err != nil {
		return err
	}
	fmt.Println("EDSM API key saved.")
	return nil
}

func runAPIKeyStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	key, err := a.store.EDSMKey()
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Println("No EDSM API key configured. Market data is disabled.")
		return nil
	}
	fmt.Println("EDSM API key is configured.")
	return nil
}
