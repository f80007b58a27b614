package commands

import (
	"fmt"

	"github.com/Wayne-King/RouterControl/lib/scrapers/routeradmin"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	addName   *string
	addMac    *string
	addAccess *string
)

func init() {
	addName = addCmd.Flags().String("name", "", "The display name for the new entry.")
	addMac = addCmd.Flags().String("mac", "", "The MAC address of the device to add.")
	addAccess = addCmd.Flags().String("access", "allowed", "Either 'allowed' or 'blocked'.")
	addCmd.MarkFlagRequired("mac")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add --mac <mac> [--name <name>] [--access allowed|blocked]",
	Short: "Adds a device to the router's access control list.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		access, err := parseAccess(*addAccess)
		if err != nil {
			serviceutil.Fatal("invalid --access value", err)
		}

		orch := newOrchestrator(ctx)
		device := routeradmin.Device{
			Name:       *addName,
			MacAddress: *addMac,
		}
		if err := orch.Add(ctx, device, access); err != nil {
			serviceutil.Fatal("failed to add device", err)
		}
		fmt.Printf("added %s as %s\n", *addMac, access)
	},
}

func parseAccess(raw string) (routeradmin.AccessControl, error) {
	switch raw {
	case "allowed", "allow":
		return routeradmin.AccessAllowed, nil
	case "blocked", "block":
		return routeradmin.AccessBlocked, nil
	}
	return routeradmin.AccessUnknown, fmt.Errorf("expected 'allowed' or 'blocked', got %q", raw)
}
