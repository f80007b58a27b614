package commands

import (
	"fmt"

	"github.com/Wayne-King/RouterControl/lib/scrapers/routeradmin"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <mac>",
	Short: "Removes an offline device from the router's access control list.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := newClient(ctx)
		orch := routeradmin.NewOrchestrator(client)

		devices, err := client.FetchDevices(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch devices", err)
		}
		device := routeradmin.FindByMac(devices, args[0])
		if device == nil {
			serviceutil.Fatal(
				"device not found",
				fmt.Errorf("no device with mac %q", args[0]),
			)
		}

		if err := orch.Remove(ctx, *device); err != nil {
			serviceutil.Fatal("failed to remove device", err)
		}
		fmt.Printf("removed %s (%s)\n", device.Name, device.MacAddress)
	},
}
