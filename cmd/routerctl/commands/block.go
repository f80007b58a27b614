package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Wayne-King/RouterControl/lib/scrapers/routeradmin"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
}

var blockCmd = &cobra.Command{
	Use:   "block <mac>",
	Short: "Blocks a device from network access.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetAccess(cmd.Context(), args[0], routeradmin.AccessBlocked)
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <mac>",
	Short: "Restores a device's network access.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetAccess(cmd.Context(), args[0], routeradmin.AccessAllowed)
	},
}

func runSetAccess(ctx context.Context, mac string, access routeradmin.AccessControl) {
	client := newClient(ctx)
	orch := routeradmin.NewOrchestrator(client)

	devices, err := client.FetchDevices(ctx)
	if err != nil {
		serviceutil.Fatal("failed to fetch devices", err)
	}
	device := routeradmin.FindByMac(devices, mac)
	if device == nil {
		serviceutil.Fatal(
			"device not found",
			fmt.Errorf("no device with mac %q", mac),
		)
	}

	var updated *routeradmin.Device
	switch access {
	case routeradmin.AccessBlocked:
		updated, err = orch.Block(ctx, *device)
	default:
		updated, err = orch.Unblock(ctx, *device)
	}
	if err != nil {
		serviceutil.Fatal("failed to update device access", err)
	}
	if updated == nil {
		slog.Info("no change applied", "mac", mac)
		return
	}
	fmt.Printf("%s (%s) is now %s\n", updated.Name, updated.MacAddress, updated.Access)
}
