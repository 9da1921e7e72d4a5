package linking_test

import (
	"testing"

	"github.com/biotrk/trackgraph/linking"
	"github.com/stretchr/testify/require"
)

// pos builds a position on the x axis; most tests only need distinct
// coordinates and a time point.
func pos(x float64, t int) linking.Position {
	return linking.NewPosition(x, 0, 0, t)
}

// mustConsistent asserts that every structural invariant holds. Called after
// each mutating step so a regression is pinned to the operation that caused
// it.
func mustConsistent(t *testing.T, l *linking.Links) {
	t.Helper()
	require.NoError(t, l.CheckConsistency())
}

// chain links the given positions in order and verifies consistency.
func chain(t *testing.T, l *linking.Links, positions ...linking.Position) {
	t.Helper()
	for i := 0; i+1 < len(positions); i++ {
		require.NoError(t, l.AddLink(positions[i], positions[i+1]))
		mustConsistent(t, l)
	}
}

// allLinks flattens every link of the graph into sorted (from, to) pairs,
// for whole-structure comparisons.
func allLinks(l *linking.Links) [][2]linking.Position {
	var out [][2]linking.Position
	lo, hi := timeRange(l)
	for tp := lo; tp <= hi; tp++ {
		for from, to := range l.LinksOfTimePoint(tp) {
			out = append(out, [2]linking.Position{from, to})
		}
	}

	return out
}

// timeRange returns the lowest and highest time point covered by any track.
func timeRange(l *linking.Links) (lo, hi int) {
	first := true
	for _, track := range l.AllTracks() {
		if first || track.FirstTimePoint() < lo {
			lo = track.FirstTimePoint()
		}
		if first || track.LastTimePoint() > hi {
			hi = track.LastTimePoint()
		}
		first = false
	}

	return lo, hi
}
