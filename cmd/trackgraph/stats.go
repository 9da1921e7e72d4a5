// Stats command for the trackgraph CLI.
package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/biotrk/trackgraph/linking"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics of the lineage database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, savedAt, err := store.Dataset()
		if err != nil {
			return fmt.Errorf("read dataset: %w", err)
		}

		links, err := store.Load()
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}

		tracks, positions := 0, 0
		divisions, merges := 0, 0
		minT, maxT := math.MaxInt, math.MinInt
		for _, track := range links.AllTracks() {
			tracks++
			positions += track.Len()
			if len(track.NextTracks()) > 1 {
				divisions++
			}
			if len(track.PreviousTracks()) > 1 {
				merges++
			}
			minT = min(minT, track.FirstTimePoint())
			maxT = max(maxT, track.LastTimePoint())
		}

		fmt.Printf("dataset:    %s (saved %s)\n", id, savedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("tracks:     %d\n", tracks)
		fmt.Printf("positions:  %d\n", positions)
		fmt.Printf("links:      %d\n", links.LinkCount())
		fmt.Printf("divisions:  %d\n", divisions)
		fmt.Printf("merges:     %d\n", merges)
		fmt.Printf("lineages:   %d\n", countLineages(links))
		if tracks > 0 {
			fmt.Printf("time range: %d..%d\n", minT, maxT)
		}

		return nil
	},
}

// countLineages counts the tracks that start an experiment, which in a
// division-only dataset equals the number of independent lineages.
func countLineages(links *linking.Links) int {
	return len(links.StartingTracks())
}
