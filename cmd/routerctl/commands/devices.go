package commands

import (
	"fmt"
	"os"

	"github.com/Wayne-King/RouterControl/lib/scrapers/routeradmin"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Lists the devices the router reports, merged with known device names.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := newClient(ctx)

		state, err := client.AccessControlState(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read access control state", err)
		}
		devices, err := client.FetchDevices(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch devices", err)
		}

		fmt.Printf("access control: %s\n", describeState(state))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Detected Name", "MAC", "Connection", "Access"})
		for _, d := range devices {
			t.AppendRow(table.Row{
				d.Name, d.DetectedName, d.MacAddress, d.Connection, d.Access,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func describeState(state routeradmin.AccessControlState) string {
	if state.AccessControl != routeradmin.ToggleEnabled {
		return "disabled"
	}
	return fmt.Sprintf("enabled (new devices %s)", state.NewDeviceAccess)
}
