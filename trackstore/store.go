// Package trackstore persists a lineage-link graph to a SQLite database.
//
// The store is a collaborator of package linking, not part of it: state is
// serialized and reconstructed exclusively through the public linking
// operations, so a loaded graph is canonical by construction. Metadata
// values are JSON-encoded and must round-trip through encoding/json.
//
// Layout: one row per link in "links", one row per link attribute in
// "link_data", one row per lineage attribute in "lineage_data" (keyed by the
// first position of the lineage root), and a single-row "dataset" table
// carrying a UUID and save timestamp for provenance.
package trackstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// schema creates all tables. Positions are stored inline as four columns;
// there is no separate positions table because a position only exists in
// the graph by virtue of a link or lineage attribute referencing it.
const schema = `
CREATE TABLE IF NOT EXISTS dataset (
	dataset_id TEXT NOT NULL PRIMARY KEY,
	saved_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS links (
	from_x REAL NOT NULL, from_y REAL NOT NULL, from_z REAL NOT NULL, from_t INTEGER NOT NULL,
	to_x   REAL NOT NULL, to_y   REAL NOT NULL, to_z   REAL NOT NULL, to_t   INTEGER NOT NULL,
	PRIMARY KEY (from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t)
);
CREATE TABLE IF NOT EXISTS link_data (
	from_x REAL NOT NULL, from_y REAL NOT NULL, from_z REAL NOT NULL, from_t INTEGER NOT NULL,
	to_x   REAL NOT NULL, to_y   REAL NOT NULL, to_z   REAL NOT NULL, to_t   INTEGER NOT NULL,
	name  TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t, name)
);
CREATE TABLE IF NOT EXISTS lineage_data (
	root_x REAL NOT NULL, root_y REAL NOT NULL, root_z REAL NOT NULL, root_t INTEGER NOT NULL,
	name  TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (root_x, root_y, root_z, root_t, name)
);
`

// Store is a handle on one tracking database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the tracking database at path and ensures
// the schema exists. Use ":memory:" for a throwaway in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening tracking database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Dataset returns the identity of the last saved dataset: its UUID and save
// time. Returns sql.ErrNoRows wrapped when nothing was saved yet.
func (s *Store) Dataset() (id string, savedAt time.Time, err error) {
	var stamp string
	err = s.db.QueryRow("SELECT dataset_id, saved_at FROM dataset").Scan(&id, &stamp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("reading dataset identity: %w", err)
	}
	savedAt, err = time.Parse(time.RFC3339, stamp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parsing dataset timestamp %q: %w", stamp, err)
	}

	return id, savedAt, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
