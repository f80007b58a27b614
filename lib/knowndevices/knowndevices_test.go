package knowndevices

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Wayne-King/RouterControl/lib/macaddr"
	"github.com/Wayne-King/RouterControl/lib/telemetry"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func mustParse(t *testing.T, raw string) macaddr.Address {
	t.Helper()
	mac, err := macaddr.Parse(raw)
	require.NoError(t, err)
	return mac
}

func writeCsv(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.csv")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCsvSource(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:knowndevices")
	defer cleanup()

	src := CsvSource{Path: writeCsv(t,
		"Device 1,AA:BB:CC:DD:EE:FF\n"+
			"Device 2,FF:EE:DD:CC:BB:AA\n",
	)}
	devices, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []KnownDevice{
		{Name: "Device 1", Mac: mustParse(t, "AA:BB:CC:DD:EE:FF")},
		{Name: "Device 2", Mac: mustParse(t, "FF:EE:DD:CC:BB:AA")},
	}, devices)
}

func TestCsvSourceDropsMalformedRows(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:knowndevices")
	defer cleanup()

	src := CsvSource{Path: writeCsv(t,
		"Device 1,AA:BB:CC:DD:EE:FF\n"+
			",AA:BB:CC:DD:EE:01\n"+
			"Bad Mac,zz:zz:zz:zz:zz:zz\n"+
			"Lonely Column\n",
	)}
	devices, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "Device 1", devices[0].Name)
}

func TestCsvSourceEmptyAfterFilteringIsError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:knowndevices")
	defer cleanup()

	src := CsvSource{Path: writeCsv(t, "Bad Mac,nope\n")}
	_, err := src.Load(context.Background())
	require.ErrorIs(t, err, ErrNoKnownDevices)
}

func TestStoreRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:knowndevices")
	defer cleanup()

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()
	if _, err := sqlite.Exec(Schema); err != nil {
		t.Fatal(err)
	}
	store := NewStore(sqlite)

	ctx := context.Background()
	imported := []KnownDevice{
		{Name: "Device 1", Mac: mustParse(t, "AA:BB:CC:DD:EE:FF")},
		{Name: "Device 2", Mac: mustParse(t, "FF:EE:DD:CC:BB:AA")},
	}
	require.NoError(t, store.Import(ctx, imported))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, imported, loaded)

	// a second import replaces rather than appends
	require.NoError(t, store.Import(ctx, imported[:1]))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}

func TestStoreImportEmptyIsError(t *testing.T) {
	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()
	if _, err := sqlite.Exec(Schema); err != nil {
		t.Fatal(err)
	}
	store := NewStore(sqlite)

	require.ErrorIs(t, store.Import(context.Background(), nil), ErrNoKnownDevices)
}
