// Package linking: Track implementation.
//
// A Track is a maximal run of positions across consecutive time points, with
// non-owning references to the tracks it divides into (next) and the tracks
// it came from (prev). Tracks are created, split, merged and destroyed solely
// by Links; external callers only ever read them.
package linking

import "iter"

// Track is a maximal run of positions, one per consecutive time point,
// without a division or merge inside it.
//
// The position at time point t lives at index t − minTimePoint. A track holds
// at least one position for as long as it exists. Lineage metadata is only
// ever populated on tracks that are lineage roots (no predecessors).
type Track struct {
	// id is the stable identifier assigned by Links on registration;
	// zero means unregistered.
	id int

	// minTimePoint is the time point number of positions[0].
	minTimePoint int

	// positions holds one position per consecutive time point.
	positions []Position

	// prev and next are non-owning references into the Links arena.
	// Exactly one entry never persists on both sides at once: Links merges
	// such pairs into a single track.
	prev []*Track
	next []*Track

	// lineageData maps metadata names to values; non-nil only on lineage
	// roots that carry metadata.
	lineageData map[string]any
}

// NewTrack builds an unregistered track from positions at strictly
// consecutive, ascending time points. Returns ErrNotConsecutive when the
// sequence is empty, has gaps, or is out of order.
// Complexity: O(n)
func NewTrack(positions ...Position) (*Track, error) {
	if len(positions) == 0 {
		return nil, ErrNotConsecutive
	}
	for i := 1; i < len(positions); i++ {
		if positions[i].T != positions[i-1].T+1 {
			return nil, ErrNotConsecutive
		}
	}
	t := &Track{
		minTimePoint: positions[0].T,
		positions:    append([]Position(nil), positions...),
	}

	return t, nil
}

// Len returns the number of positions in the track. Always ≥ 1.
// Complexity: O(1)
func (t *Track) Len() int {
	return len(t.positions)
}

// FirstTimePoint returns the time point number of the first position.
// Complexity: O(1)
func (t *Track) FirstTimePoint() int {
	return t.minTimePoint
}

// LastTimePoint returns the time point number of the last position.
// Complexity: O(1)
func (t *Track) LastTimePoint() int {
	return t.minTimePoint + len(t.positions) - 1
}

// FirstPosition returns the earliest position of the track.
// Complexity: O(1)
func (t *Track) FirstPosition() Position {
	return t.positions[0]
}

// LastPosition returns the latest position of the track.
// Complexity: O(1)
func (t *Track) LastPosition() Position {
	return t.positions[len(t.positions)-1]
}

// PositionAt returns the position at the given time point number.
// Returns ErrOutOfRange when timePoint falls outside
// [FirstTimePoint, LastTimePoint].
// Complexity: O(1)
func (t *Track) PositionAt(timePoint int) (Position, error) {
	idx := timePoint - t.minTimePoint
	if idx < 0 || idx >= len(t.positions) {
		return Position{}, ErrOutOfRange
	}

	return t.positions[idx], nil
}

// Age returns the offset of the position's time point from the track start.
// The first position has age 0. The position is assumed to belong to the
// track; only its time point is inspected.
// Complexity: O(1)
func (t *Track) Age(p Position) int {
	return p.T - t.minTimePoint
}

// NextTracks returns the current successor set: zero entries for a lineage
// end, two for a division. The returned slice is a copy.
// Complexity: O(k)
func (t *Track) NextTracks() []*Track {
	return append([]*Track(nil), t.next...)
}

// PreviousTracks returns the current predecessor set: zero entries for a
// lineage start, two or more for an (anomalous) cell merge. The returned
// slice is a copy.
// Complexity: O(k)
func (t *Track) PreviousTracks() []*Track {
	return append([]*Track(nil), t.prev...)
}

// Positions returns a lazy, restartable sequence of all positions in the
// track, in time order.
func (t *Track) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for _, p := range t.positions {
			if !yield(p) {
				return
			}
		}
	}
}

// PositionsConnected is Positions prefixed with the last position of a single
// predecessor, if there is exactly one. Useful for drawing a continuous line
// across the track boundary.
func (t *Track) PositionsConnected() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		if len(t.prev) == 1 {
			if !yield(t.prev[0].LastPosition()) {
				return
			}
		}
		for _, p := range t.positions {
			if !yield(p) {
				return
			}
		}
	}
}

// AllFutureTracks returns a lazy depth-first sequence of every track
// reachable through successor references, each track yielded once. When
// includeSelf is true the receiver is yielded first. The sequence is finite
// and restartable.
// Complexity: O(reachable tracks) per full iteration.
func (t *Track) AllFutureTracks(includeSelf bool) iter.Seq[*Track] {
	return t.walk(includeSelf, func(cur *Track) []*Track { return cur.next })
}

// AllPastTracks is AllFutureTracks in the other direction, following
// predecessor references.
func (t *Track) AllPastTracks(includeSelf bool) iter.Seq[*Track] {
	return t.walk(includeSelf, func(cur *Track) []*Track { return cur.prev })
}

// walk implements the shared depth-first traversal behind AllFutureTracks
// and AllPastTracks. step selects the references to follow.
func (t *Track) walk(includeSelf bool, step func(*Track) []*Track) iter.Seq[*Track] {
	return func(yield func(*Track) bool) {
		seen := make(map[*Track]struct{})
		var visit func(cur *Track) bool
		visit = func(cur *Track) bool {
			if _, ok := seen[cur]; ok {
				return true
			}
			seen[cur] = struct{}{}
			if !yield(cur) {
				return false
			}
			for _, n := range step(cur) {
				if !visit(n) {
					return false
				}
			}

			return true
		}
		if includeSelf {
			visit(t)

			return
		}
		// Mark the receiver as seen so diamond-shaped lineages do not
		// re-yield it.
		seen[t] = struct{}{}
		for _, n := range step(t) {
			if !visit(n) {
				return
			}
		}
	}
}

// Internal link maintenance, used exclusively by Links:
////////////////////

// setPrev replaces oldTrack with newTrack in the predecessor set.
// A nil newTrack removes the entry.
func (t *Track) setPrev(oldTrack, newTrack *Track) {
	t.prev = replaceTrack(t.prev, oldTrack, newTrack)
}

// setNext replaces oldTrack with newTrack in the successor set.
// A nil newTrack removes the entry.
func (t *Track) setNext(oldTrack, newTrack *Track) {
	t.next = replaceTrack(t.next, oldTrack, newTrack)
}

// containsTrack reports whether list holds t.
func containsTrack(list []*Track, t *Track) bool {
	for _, e := range list {
		if e == t {
			return true
		}
	}

	return false
}

// replaceTrack substitutes oldTrack with newTrack in list, or removes
// oldTrack when newTrack is nil. No-op when oldTrack is absent.
func replaceTrack(list []*Track, oldTrack, newTrack *Track) []*Track {
	for i, e := range list {
		if e != oldTrack {
			continue
		}
		if newTrack == nil {
			return append(list[:i], list[i+1:]...)
		}
		list[i] = newTrack

		return list
	}

	return list
}
