package trackstore

import (
	"encoding/json"
	"fmt"

	"github.com/biotrk/trackgraph/linking"
)

// Load reconstructs the stored graph through the public linking operations.
// The result is independent of the store and canonical by construction;
// numbers decode as float64 per encoding/json.
func (s *Store) Load() (*linking.Links, error) {
	links := linking.NewLinks()

	if err := s.loadLinks(links); err != nil {
		return nil, err
	}
	if err := s.loadLinkData(links); err != nil {
		return nil, err
	}
	if err := s.loadLineageData(links); err != nil {
		return nil, err
	}

	return links, nil
}

func (s *Store) loadLinks(links *linking.Links) error {
	rows, err := s.db.Query("SELECT from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t FROM links")
	if err != nil {
		return fmt.Errorf("reading links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to linking.Position
		err := rows.Scan(&from.X, &from.Y, &from.Z, &from.T, &to.X, &to.Y, &to.Z, &to.T)
		if err != nil {
			return fmt.Errorf("scanning link row: %w", err)
		}
		if err := links.AddLink(from, to); err != nil {
			return fmt.Errorf("restoring link %s → %s: %w", from, to, err)
		}
	}

	return rows.Err()
}

func (s *Store) loadLinkData(links *linking.Links) error {
	rows, err := s.db.Query("SELECT from_x, from_y, from_z, from_t, to_x, to_y, to_z, to_t, name, value FROM link_data")
	if err != nil {
		return fmt.Errorf("reading link data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to linking.Position
		var name, encoded string
		err := rows.Scan(&from.X, &from.Y, &from.Z, &from.T, &to.X, &to.Y, &to.Z, &to.T, &name, &encoded)
		if err != nil {
			return fmt.Errorf("scanning link data row: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return fmt.Errorf("decoding link data %q of %s → %s: %w", name, from, to, err)
		}
		if err := links.SetLinkData(from, to, name, value); err != nil {
			return fmt.Errorf("restoring link data %q of %s → %s: %w", name, from, to, err)
		}
	}

	return rows.Err()
}

func (s *Store) loadLineageData(links *linking.Links) error {
	rows, err := s.db.Query("SELECT root_x, root_y, root_z, root_t, name, value FROM lineage_data")
	if err != nil {
		return fmt.Errorf("reading lineage data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var root linking.Position
		var name, encoded string
		err := rows.Scan(&root.X, &root.Y, &root.Z, &root.T, &name, &encoded)
		if err != nil {
			return fmt.Errorf("scanning lineage data row: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return fmt.Errorf("decoding lineage data %q at %s: %w", name, root, err)
		}
		// A lineage may consist of a single free-standing position that only
		// exists to carry metadata; re-create its track before attaching.
		if !links.ContainsPosition(root) {
			track, err := linking.NewTrack(root)
			if err != nil {
				return fmt.Errorf("rebuilding solo track at %s: %w", root, err)
			}
			if err := links.AddTrack(track); err != nil {
				return fmt.Errorf("rebuilding solo track at %s: %w", root, err)
			}
		}
		if err := links.SetLineageData(root, name, value); err != nil {
			return fmt.Errorf("restoring lineage data %q at %s: %w", name, root, err)
		}
	}

	return rows.Err()
}
