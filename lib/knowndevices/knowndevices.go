// Package knowndevices loads the operator's device-name assignments,
// which the router itself has no notion of. Names are keyed by MAC and
// joined onto scraped devices at fetch time.
package knowndevices

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Wayne-King/RouterControl/lib/macaddr"
)

// KnownDevice pairs a human-assigned name with a device MAC.
type KnownDevice struct {
	Name string
	Mac  macaddr.Address
}

// Source yields the operator's known devices.
type Source interface {
	Load(ctx context.Context) ([]KnownDevice, error)
}

// ErrNoKnownDevices is returned when a source produced nothing usable
// after filtering out malformed rows.
var ErrNoKnownDevices = fmt.Errorf("no usable known devices were loaded")

// CsvSource reads "name,mac" rows from a file. Malformed rows are
// dropped with a logged reason rather than failing the import.
type CsvSource struct {
	Path string
}

func (s CsvSource) Load(ctx context.Context) ([]KnownDevice, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	devices, err := parseCsv(file)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoKnownDevices, s.Path)
	}
	return devices, nil
}

func parseCsv(r io.Reader) ([]KnownDevice, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []KnownDevice
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) < 2 {
			slog.Warn("dropping known-device row: expected 2 columns", "row", record)
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			slog.Warn("dropping known-device row: empty name", "row", record)
			continue
		}
		mac, err := macaddr.Parse(record[1])
		if err != nil {
			slog.Warn("dropping known-device row: bad mac", "row", record, "err", err)
			continue
		}

		out = append(out, KnownDevice{Name: name, Mac: mac})
	}
	return out, nil
}
