package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Wayne-King/RouterControl/lib/configutil"
	"github.com/Wayne-King/RouterControl/lib/knowndevices"
	"github.com/Wayne-King/RouterControl/lib/pagecache"
	"github.com/Wayne-King/RouterControl/lib/restyutil"
	"github.com/Wayne-King/RouterControl/lib/scrapers/routeradmin"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"
	"github.com/Wayne-King/RouterControl/lib/telemetry"

	"github.com/spf13/cobra"
)

// Config is read from config.json5 (with config.local.json5 overrides
// for credentials).
type Config struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`

	// exactly one of these supplies device names; the sqlite store
	// wins when both are set
	KnownDevicesCsv string `json:"known_devices_csv"`
	KnownDevicesDb  string `json:"known_devices_db"`

	// warnings are appended here in addition to stderr
	WarnLog string `json:"warn_log"`
	Debug   bool   `json:"debug"`
}

var cfg Config

var rootCmd = &cobra.Command{
	Use:   "routerctl",
	Short: "routerctl drives a consumer router's web admin pages to manage device access control.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = configutil.ReadRecursively[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}

		if cfg.WarnLog != "" {
			if err := telemetry.InitSlogWithWarnLog(cfg.Debug, cfg.WarnLog); err != nil {
				serviceutil.Fatal("failed to open warn log", err)
			}
		} else {
			telemetry.InitSlog(cfg.Debug)
		}
		if _, err := telemetry.SetupFromEnv(cmd.Context(), "routerctl"); err != nil && !os.IsNotExist(err) {
			slog.Warn("telemetry setup failed", "err", err)
		}

		if cfg.Debug {
			routeradmin.SetRestyInstrumentOutput(
				restyutil.NewFilesystemOutput(".dev/resty/routerctl"),
			)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type configCredentials struct{}

func (configCredentials) Get() (routeradmin.Credential, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return routeradmin.Credential{}, routeradmin.ErrNotAuthenticated
	}
	return routeradmin.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}, nil
}

func knownSource() knowndevices.Source {
	if cfg.KnownDevicesDb != "" {
		store, err := knowndevices.OpenStore(cfg.KnownDevicesDb)
		if err != nil {
			serviceutil.Fatal("failed to open known-device store", err)
		}
		return store
	}
	if cfg.KnownDevicesCsv != "" {
		return knowndevices.CsvSource{Path: cfg.KnownDevicesCsv}
	}
	return nil
}

func newClient(ctx context.Context) *routeradmin.Client {
	if cfg.BaseUrl == "" {
		serviceutil.Fatal(
			"missing router base url",
			fmt.Errorf("set base_url in config.json5"),
		)
	}

	cache, err := pagecache.NewStore()
	if err != nil {
		serviceutil.Fatal("failed to create page cache", err)
	}

	client, err := routeradmin.NewClient(ctx, routeradmin.ClientOptions{
		BaseUrl:      cfg.BaseUrl,
		Credentials:  configCredentials{},
		KnownDevices: knownSource(),
		Cache:        cache,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize router client", err)
	}
	return client
}

func newOrchestrator(ctx context.Context) routeradmin.Orchestrator {
	return routeradmin.NewOrchestrator(newClient(ctx))
}
