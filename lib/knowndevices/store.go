package knowndevices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Wayne-King/RouterControl/lib/macaddr"

	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS known_device (
	mac  TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL
);
`

// Store persists known-device names in sqlite so the operator only has
// to import their CSV once.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// OpenStore opens (and migrates) a sqlite-backed store at path.
func OpenStore(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return Store{}, err
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Import replaces the stored names with the given devices.
func (s Store) Import(ctx context.Context, devices []KnownDevice) error {
	if len(devices) == 0 {
		return ErrNoKnownDevices
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM known_device`); err != nil {
		return err
	}
	for _, d := range devices {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO known_device (mac, name) VALUES (?, ?)`,
			d.Mac.String(), d.Name,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load implements Source over the persisted names, in insertion order.
func (s Store) Load(ctx context.Context) ([]KnownDevice, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT mac, name FROM known_device ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KnownDevice
	for rows.Next() {
		var rawMac, name string
		if err := rows.Scan(&rawMac, &name); err != nil {
			return nil, err
		}
		mac, err := macaddr.Parse(rawMac)
		if err != nil {
			return nil, fmt.Errorf("corrupt known-device row %q: %w", rawMac, err)
		}
		out = append(out, KnownDevice{Name: name, Mac: mac})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoKnownDevices
	}
	return out, nil
}
