package commands

import (
	"fmt"

	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/spf13/cobra"
)

var enableNewDevices *string

func init() {
	enableNewDevices = enableCmd.Flags().String(
		"new-devices", "allowed",
		"What the router does with devices it has never seen: 'allowed' or 'blocked'.")
	aclCmd.AddCommand(enableCmd)
	aclCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(aclCmd)
}

var aclCmd = &cobra.Command{
	Use:   "acl",
	Short: "Manages the router-wide access control feature.",
}

var enableCmd = &cobra.Command{
	Use:   "enable [--new-devices allowed|blocked]",
	Short: "Turns the router's access control feature on.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		access, err := parseAccess(*enableNewDevices)
		if err != nil {
			serviceutil.Fatal("invalid --new-devices value", err)
		}

		orch := newOrchestrator(ctx)
		if err := orch.EnableAccessControl(ctx, access); err != nil {
			serviceutil.Fatal("failed to enable access control", err)
		}
		fmt.Printf("access control enabled, new devices %s\n", access)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turns the router's access control feature off.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		orch := newOrchestrator(ctx)
		if err := orch.DisableAccessControl(ctx); err != nil {
			serviceutil.Fatal("failed to disable access control", err)
		}
		fmt.Println("access control disabled")
	},
}
