package linking_test

import (
	"testing"

	"github.com/biotrk/trackgraph/linking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddLink_Validation verifies the fail-fast preconditions: same time
// point and non-consecutive spans are rejected before any mutation.
func TestAddLink_Validation(t *testing.T) {
	l := linking.NewLinks()

	err := l.AddLink(pos(1, 3), pos(2, 3))
	assert.ErrorIs(t, err, linking.ErrSameTimePoint, "positions at the same time point must not link")

	err = l.AddLink(pos(1, 0), pos(2, 2))
	assert.ErrorIs(t, err, linking.ErrNotConsecutive, "a two-step gap must not link")

	assert.Zero(t, l.LinkCount(), "failed AddLink must not mutate")
	mustConsistent(t, l)
}

// TestAddLink_ChainMerges verifies scenario "chain merge": linking three
// positions in a row yields one track spanning all three.
func TestAddLink_ChainMerges(t *testing.T) {
	l := linking.NewLinks()
	p1, p2, p3 := pos(1, 0), pos(1, 1), pos(1, 2)

	chain(t, l, p1, p2, p3)

	require.NotNil(t, l.TrackOf(p1))
	assert.Same(t, l.TrackOf(p1), l.TrackOf(p3), "a plain chain must live in a single track")
	assert.Equal(t, 3, l.TrackOf(p1).Len())
	assert.Equal(t, 2, l.LinkCount())
}

// TestAddLink_ReversedArguments verifies that argument order does not
// matter: the earlier position is always the link source.
func TestAddLink_ReversedArguments(t *testing.T) {
	l := linking.NewLinks()
	p1, p2 := pos(1, 0), pos(1, 1)

	require.NoError(t, l.AddLink(p2, p1))
	mustConsistent(t, l)

	assert.True(t, l.ContainsLink(p1, p2))
	assert.Equal(t, []linking.Position{p2}, l.FindFutures(p1))
}

// TestAddLink_Idempotent verifies that re-adding an existing link changes
// nothing.
func TestAddLink_Idempotent(t *testing.T) {
	l := linking.NewLinks()
	p1, p2 := pos(1, 0), pos(1, 1)
	chain(t, l, p1, p2)

	require.NoError(t, l.AddLink(p1, p2))
	mustConsistent(t, l)
	assert.Equal(t, 1, l.LinkCount())
}

// TestAddLink_Division verifies scenario "division": one position linking to
// two at the next time point produces a track with two successors.
func TestAddLink_Division(t *testing.T) {
	l := linking.NewLinks()
	p1, p2, p3 := pos(1, 0), pos(0, 1), pos(2, 1)

	require.NoError(t, l.AddLink(p1, p2))
	mustConsistent(t, l)
	require.NoError(t, l.AddLink(p1, p3))
	mustConsistent(t, l)

	parent := l.TrackOf(p1)
	require.NotNil(t, parent)
	assert.Len(t, parent.NextTracks(), 2, "a division leaves two successor tracks")
	assert.Equal(t, []linking.Position{p2, p3}, l.FindFutures(p1), "futures sorted by coordinates")
	assert.Equal(t, 2, l.LinkCount())
}

// TestAddLink_SplitsLongTrack verifies that dividing in the middle of an
// established chain splits the track at the division point.
func TestAddLink_SplitsLongTrack(t *testing.T) {
	l := linking.NewLinks()
	p0, p1, p2, p3 := pos(1, 0), pos(1, 1), pos(1, 2), pos(1, 3)
	sibling := pos(5, 2)
	chain(t, l, p0, p1, p2, p3)

	// p1 now divides into p2 (existing) and sibling.
	require.NoError(t, l.AddLink(p1, sibling))
	mustConsistent(t, l)

	head := l.TrackOf(p1)
	assert.Same(t, l.TrackOf(p0), head, "head fragment keeps the early positions")
	assert.NotSame(t, head, l.TrackOf(p2), "positions after the division live in their own track")
	assert.Len(t, head.NextTracks(), 2)
	assert.Same(t, l.TrackOf(p2), l.TrackOf(p3))
}

// TestAddLink_CellMerge verifies the anomalous many-predecessors case:
// linking a new earlier position into the middle of a chain records a merge.
func TestAddLink_CellMerge(t *testing.T) {
	l := linking.NewLinks()
	q0, q1, q2 := pos(1, 0), pos(1, 1), pos(1, 2)
	outsider := pos(7, 0)
	chain(t, l, q0, q1, q2)

	require.NoError(t, l.AddLink(outsider, q1))
	mustConsistent(t, l)

	assert.Equal(t, []linking.Position{q0, outsider}, l.FindPasts(q1), "both parents recorded, sorted")
	assert.Len(t, l.TrackOf(q1).PreviousTracks(), 2)
}

// TestRemoveLink_RoundTrip verifies add → remove restores the empty state
// and deletes the pair's metadata.
func TestRemoveLink_RoundTrip(t *testing.T) {
	l := linking.NewLinks()
	a, b := pos(1, 0), pos(1, 1)

	require.NoError(t, l.AddLink(a, b))
	require.NoError(t, l.SetLinkData(a, b, "score", 5))
	mustConsistent(t, l)

	require.NoError(t, l.RemoveLink(a, b))
	mustConsistent(t, l)

	assert.False(t, l.ContainsLink(a, b))
	assert.Nil(t, l.LinkData(a, b, "score"), "metadata must vanish with the link")
	assert.Nil(t, l.TrackOf(a), "an unlinked position keeps no track")
	assert.Nil(t, l.TrackOf(b))
	assert.Zero(t, l.LinkCount())
}

// TestRemoveLink_InsideTrack verifies that severing a mid-chain link splits
// the chain into two tracks.
func TestRemoveLink_InsideTrack(t *testing.T) {
	l := linking.NewLinks()
	p0, p1, p2, p3 := pos(1, 0), pos(1, 1), pos(1, 2), pos(1, 3)
	chain(t, l, p0, p1, p2, p3)

	require.NoError(t, l.RemoveLink(p1, p2))
	mustConsistent(t, l)

	assert.Same(t, l.TrackOf(p0), l.TrackOf(p1))
	assert.Same(t, l.TrackOf(p2), l.TrackOf(p3))
	assert.NotSame(t, l.TrackOf(p1), l.TrackOf(p2))
	assert.False(t, l.ContainsLink(p1, p2))
	assert.Empty(t, l.FindFutures(p1))
	assert.Empty(t, l.FindPasts(p2))
}

// TestRemoveLink_CollapsesDivision verifies that removing one branch of a
// division folds the remaining branch back into the parent track.
func TestRemoveLink_CollapsesDivision(t *testing.T) {
	l := linking.NewLinks()
	p1, p2, p3 := pos(1, 0), pos(0, 1), pos(2, 1)
	require.NoError(t, l.AddLink(p1, p2))
	require.NoError(t, l.AddLink(p1, p3))
	mustConsistent(t, l)

	require.NoError(t, l.RemoveLink(p1, p3))
	mustConsistent(t, l)

	assert.Same(t, l.TrackOf(p1), l.TrackOf(p2), "surviving branch folds into the parent")
	assert.Nil(t, l.TrackOf(p3), "the severed single position is garbage-collected")
}

// TestRemoveLink_AbsentLink verifies that removing a nonexistent link is a
// no-op.
func TestRemoveLink_AbsentLink(t *testing.T) {
	l := linking.NewLinks()
	p1, p2, p3 := pos(1, 0), pos(1, 1), pos(9, 1)
	chain(t, l, p1, p2)

	require.NoError(t, l.RemoveLink(p1, p3))
	mustConsistent(t, l)
	assert.True(t, l.ContainsLink(p1, p2))
	assert.Equal(t, 1, l.LinkCount())
}

// TestRemoveLinksOfPosition covers the four track shapes: sole position,
// first position, last position and interior position.
func TestRemoveLinksOfPosition(t *testing.T) {
	t.Run("interior position splits and prunes", func(t *testing.T) {
		l := linking.NewLinks()
		p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
		chain(t, l, p0, p1, p2)

		l.RemoveLinksOfPosition(p1)
		mustConsistent(t, l)

		assert.Nil(t, l.TrackOf(p1))
		assert.Nil(t, l.TrackOf(p0), "a stranded single position does not linger")
		assert.Nil(t, l.TrackOf(p2))
		assert.Zero(t, l.LinkCount())
	})

	t.Run("first position shortens the track", func(t *testing.T) {
		l := linking.NewLinks()
		p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
		chain(t, l, p0, p1, p2)

		l.RemoveLinksOfPosition(p0)
		mustConsistent(t, l)

		assert.Nil(t, l.TrackOf(p0))
		remaining := l.TrackOf(p1)
		require.NotNil(t, remaining)
		assert.Equal(t, 1, remaining.FirstTimePoint())
		assert.Same(t, remaining, l.TrackOf(p2))
	})

	t.Run("last position shortens the track", func(t *testing.T) {
		l := linking.NewLinks()
		p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
		chain(t, l, p0, p1, p2)

		l.RemoveLinksOfPosition(p2)
		mustConsistent(t, l)

		assert.Nil(t, l.TrackOf(p2))
		assert.Equal(t, 1, l.TrackOf(p0).LastTimePoint())
	})

	t.Run("sole position of a dividing parent detaches cleanly", func(t *testing.T) {
		l := linking.NewLinks()
		parent, c1, c2 := pos(1, 0), pos(0, 1), pos(2, 1)
		require.NoError(t, l.AddLink(parent, c1))
		require.NoError(t, l.AddLink(parent, c2))
		mustConsistent(t, l)

		l.RemoveLinksOfPosition(parent)
		mustConsistent(t, l)

		assert.Nil(t, l.TrackOf(parent))
		assert.Nil(t, l.TrackOf(c1))
		assert.Nil(t, l.TrackOf(c2))
	})

	t.Run("removing a divider merges the surviving pair", func(t *testing.T) {
		l := linking.NewLinks()
		q, c1a, c1b, c2 := pos(1, 0), pos(0, 1), pos(0, 2), pos(2, 1)
		chain(t, l, q, c1a, c1b)
		require.NoError(t, l.AddLink(q, c2))
		mustConsistent(t, l)

		l.RemoveLinksOfPosition(c2)
		mustConsistent(t, l)

		assert.Same(t, l.TrackOf(q), l.TrackOf(c1b), "severing the second branch folds the first back in")
	})

	t.Run("deletes metadata referencing the position", func(t *testing.T) {
		l := linking.NewLinks()
		p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
		chain(t, l, p0, p1, p2)
		require.NoError(t, l.SetLinkData(p0, p1, "score", 1))
		require.NoError(t, l.SetLinkData(p1, p2, "score", 2))

		l.RemoveLinksOfPosition(p1)
		mustConsistent(t, l)
		assert.Empty(t, l.FindAllLinksWithData("score"))
	})
}

// TestReplacePosition verifies index, track and metadata rewrites under the
// same time point, and the time-point precondition.
func TestReplacePosition(t *testing.T) {
	l := linking.NewLinks()
	p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
	moved := linking.NewPosition(4, 5, 6, 1)
	chain(t, l, p0, p1, p2)
	require.NoError(t, l.SetLinkData(p0, p1, "score", 7))

	err := l.ReplacePosition(p1, pos(4, 9))
	assert.ErrorIs(t, err, linking.ErrTimePointMismatch)

	require.NoError(t, l.ReplacePosition(p1, moved))
	mustConsistent(t, l)

	assert.Nil(t, l.TrackOf(p1))
	assert.Same(t, l.TrackOf(p0), l.TrackOf(moved))
	assert.True(t, l.ContainsLink(p0, moved))
	assert.Equal(t, 7, l.LinkData(p0, moved, "score"), "metadata follows the rewritten key")
	assert.Nil(t, l.LinkData(p0, p1, "score"))
}

// TestAddTrack verifies registration of externally built tracks and the
// duplicate-position precondition.
func TestAddTrack(t *testing.T) {
	l := linking.NewLinks()
	p0, p1 := pos(1, 0), pos(1, 1)

	track, err := linking.NewTrack(p0, p1)
	require.NoError(t, err)
	require.NoError(t, l.AddTrack(track))
	mustConsistent(t, l)

	assert.Same(t, track, l.TrackOf(p0))
	id, ok := l.TrackID(track)
	require.True(t, ok)
	assert.Same(t, track, l.TrackByID(id))

	// Idempotent for the same track object.
	require.NoError(t, l.AddTrack(track))

	// A different track reusing a position is rejected.
	clash, err := linking.NewTrack(p1)
	require.NoError(t, err)
	assert.Error(t, l.AddTrack(clash))
	mustConsistent(t, l)
}

// TestNewTrack_Validation verifies the contiguity requirements.
func TestNewTrack_Validation(t *testing.T) {
	_, err := linking.NewTrack()
	assert.ErrorIs(t, err, linking.ErrNotConsecutive, "empty tracks are not allowed")

	_, err = linking.NewTrack(pos(1, 0), pos(1, 2))
	assert.ErrorIs(t, err, linking.ErrNotConsecutive, "gaps are not allowed")

	_, err = linking.NewTrack(pos(1, 1), pos(1, 0))
	assert.ErrorIs(t, err, linking.ErrNotConsecutive, "descending order is not allowed")
}

// TestConnectTracks verifies connecting, folding and the double-connect and
// gap preconditions.
func TestConnectTracks(t *testing.T) {
	l := linking.NewLinks()
	p0, p1, p2, p3 := pos(1, 0), pos(1, 1), pos(1, 2), pos(1, 3)

	head, err := linking.NewTrack(p0, p1)
	require.NoError(t, err)
	tail, err := linking.NewTrack(p2, p3)
	require.NoError(t, err)

	require.NoError(t, l.ConnectTracks(head, tail))
	mustConsistent(t, l)
	assert.Same(t, l.TrackOf(p0), l.TrackOf(p3), "a one-to-one connection folds into a single track")

	// Gap of two time points.
	far, err := linking.NewTrack(pos(2, 6))
	require.NoError(t, err)
	assert.ErrorIs(t, l.ConnectTracks(l.TrackOf(p3), far), linking.ErrNotConsecutive)

	// Double connection on a division.
	parent, c1, c2 := pos(5, 0), pos(4, 1), pos(6, 1)
	require.NoError(t, l.AddLink(parent, c1))
	require.NoError(t, l.AddLink(parent, c2))
	mustConsistent(t, l)
	err = l.ConnectTracks(l.TrackOf(parent), l.TrackOf(c1))
	assert.ErrorIs(t, err, linking.ErrAlreadyConnected)
	mustConsistent(t, l)
}

// TestRemoveAllLinks verifies the full reset.
func TestRemoveAllLinks(t *testing.T) {
	l := linking.NewLinks()
	p0, p1 := pos(1, 0), pos(1, 1)
	chain(t, l, p0, p1)
	require.NoError(t, l.SetLinkData(p0, p1, "score", 1))

	l.RemoveAllLinks()
	mustConsistent(t, l)

	assert.Zero(t, l.LinkCount())
	assert.False(t, l.ContainsPosition(p0))
	assert.Nil(t, l.LinkData(p0, p1, "score"))
}

// TestMergeData verifies combining two independent graphs: links, link
// metadata (incoming wins) and lineage metadata all carry over.
func TestMergeData(t *testing.T) {
	a := linking.NewLinks()
	p0, p1, p2 := pos(1, 0), pos(1, 1), pos(1, 2)
	chain(t, a, p0, p1, p2)
	require.NoError(t, a.SetLinkData(p0, p1, "score", 1))

	b := linking.NewLinks()
	q0, q1 := pos(9, 4), pos(9, 5)
	chain(t, b, q0, q1)
	require.NoError(t, b.SetLinkData(q0, q1, "score", 2))
	require.NoError(t, b.SetLinkData(p0, p1, "score", 10)) // conflicting name
	require.NoError(t, b.AddLink(p0, p1))
	require.NoError(t, b.SetLineageData(q0, "origin", "import"))

	a.MergeData(b)
	mustConsistent(t, a)

	assert.True(t, a.ContainsLink(q0, q1))
	assert.Same(t, a.TrackOf(p0), a.TrackOf(p2), "existing links unharmed")
	assert.Equal(t, 2, a.LinkData(q0, q1, "score"))
	assert.Equal(t, 10, a.LinkData(p0, p1, "score"), "incoming value wins on conflicts")
	assert.Equal(t, "import", a.LineageData(q1, "origin"))
}

// TestCanonicalMerge_Property stresses the canonical-merge invariant across
// a randomized-looking but deterministic sequence of operations; the
// consistency checker after each step is the oracle.
func TestCanonicalMerge_Property(t *testing.T) {
	l := linking.NewLinks()
	positions := make([]linking.Position, 0, 24)
	for tp := 0; tp < 6; tp++ {
		for x := 0; x < 4; x++ {
			positions = append(positions, pos(float64(x), tp))
		}
	}
	link := func(i, j int) {
		require.NoError(t, l.AddLink(positions[i], positions[j]))
		mustConsistent(t, l)
	}
	unlink := func(i, j int) {
		require.NoError(t, l.RemoveLink(positions[i], positions[j]))
		mustConsistent(t, l)
	}

	// Build four parallel chains, then entangle and prune them.
	for x := 0; x < 4; x++ {
		for tp := 0; tp < 5; tp++ {
			link(tp*4+x, (tp+1)*4+x)
		}
	}
	link(8, 13)    // division at time 2
	link(9, 12)    // crossing division
	unlink(12, 16) // cut a chain mid-way
	unlink(8, 12)  // reduce a division
	l.RemoveLinksOfPosition(positions[13])
	mustConsistent(t, l)
	link(2, 7)
	unlink(9, 13)
	mustConsistent(t, l)
}
