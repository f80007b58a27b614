package commands

import (
	"fmt"

	"github.com/Wayne-King/RouterControl/lib/knowndevices"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	importCsv *string
	importDb  *string
)

func init() {
	importCsv = importCmd.Flags().String("csv", "", "The CSV file of name,mac rows to import.")
	importDb = importCmd.Flags().String("db", "", "The sqlite database to import into (defaults to known_devices_db from config).")
	importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import --csv <path/to/devices.csv> [--db <path/to/known.db>]",
	Short: "Imports known device names from a CSV file into the sqlite store.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		dbPath := *importDb
		if dbPath == "" {
			dbPath = cfg.KnownDevicesDb
		}
		if dbPath == "" {
			serviceutil.Fatal(
				"no destination database",
				fmt.Errorf("pass --db or set known_devices_db in config.json5"),
			)
		}

		source := knowndevices.CsvSource{Path: *importCsv}
		known, err := source.Load(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read csv", err)
		}

		store, err := knowndevices.OpenStore(dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open known-device store", err)
		}
		if err := store.Import(ctx, known); err != nil {
			serviceutil.Fatal("failed to import known devices", err)
		}
		fmt.Printf("imported %d known devices into %s\n", len(known), dbPath)
	},
}
