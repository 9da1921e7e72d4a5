// Check command for the trackgraph CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biotrk/trackgraph/linking"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the structural consistency of the lineage database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := store.Load()
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}

		if err := links.CheckConsistency(); err != nil {
			return err
		}

		fmt.Printf("ok: %d links across %d tracks\n", links.LinkCount(), countTracks(links))

		return nil
	},
}

func countTracks(links *linking.Links) int {
	n := 0
	for range links.AllTracks() {
		n++
	}

	return n
}
