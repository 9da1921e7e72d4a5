package trackstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biotrk/trackgraph/linking"
)

// Save replaces the database contents with the current state of links and
// returns the new dataset UUID. The write is transactional: on error the
// previous contents survive untouched.
func (s *Store) Save(links *linking.Links) (string, error) {
	datasetID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating dataset id: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"dataset", "links", "link_data", "lineage_data"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return "", fmt.Errorf("clearing table %s: %w", table, err)
		}
	}
	_, err = tx.Exec(
		"INSERT INTO dataset (dataset_id, saved_at) VALUES (?, ?)",
		datasetID.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("writing dataset identity: %w", err)
	}

	if err := saveLinks(tx, links); err != nil {
		return "", err
	}
	if err := saveLineageData(tx, links); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing save: %w", err)
	}

	return datasetID.String(), nil
}

// saveLinks writes every link and its attributes, walking each track once.
func saveLinks(tx *sql.Tx, links *linking.Links) error {
	writePair := func(from, to linking.Position) error {
		_, err := tx.Exec(
			"INSERT INTO links (from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			from.X, from.Y, from.Z, from.T, to.X, to.Y, to.Z, to.T,
		)
		if err != nil {
			return fmt.Errorf("writing link %s → %s: %w", from, to, err)
		}
		for name, value := range links.FindAllDataOfLink(from, to) {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encoding link data %q of %s → %s: %w", name, from, to, err)
			}
			_, err = tx.Exec(
				"INSERT INTO link_data (from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t, name, value) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				from.X, from.Y, from.Z, from.T, to.X, to.Y, to.Z, to.T, name, string(encoded),
			)
			if err != nil {
				return fmt.Errorf("writing link data %q of %s → %s: %w", name, from, to, err)
			}
		}

		return nil
	}

	for _, track := range links.AllTracks() {
		havePrev := false
		var prev linking.Position
		for p := range track.Positions() {
			if havePrev {
				if err := writePair(prev, p); err != nil {
					return err
				}
			}
			prev, havePrev = p, true
		}
		for _, next := range track.NextTracks() {
			if err := writePair(track.LastPosition(), next.FirstPosition()); err != nil {
				return err
			}
		}
	}

	return nil
}

// saveLineageData writes the attributes of every lineage root, keyed by its
// first position.
func saveLineageData(tx *sql.Tx, links *linking.Links) error {
	for _, root := range links.StartingTracks() {
		first := root.FirstPosition()
		for name, value := range links.FindAllDataOfLineage(first) {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encoding lineage data %q at %s: %w", name, first, err)
			}
			_, err = tx.Exec(
				"INSERT INTO lineage_data (root_x, root_y, root_z, root_t, name, value) VALUES (?, ?, ?, ?, ?, ?)",
				first.X, first.Y, first.Z, first.T, name, string(encoded),
			)
			if err != nil {
				return fmt.Errorf("writing lineage data %q at %s: %w", name, first, err)
			}
		}
	}

	return nil
}
