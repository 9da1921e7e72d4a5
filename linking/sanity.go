// Package linking: exhaustive invariant verification.
package linking

import "fmt"

// CheckConsistency verifies every structural invariant of the graph and
// returns an error wrapping ErrInconsistent describing the first violation
// found, or nil. It is the authoritative definition of a well-formed graph:
//
//   - every track holds ≥1 position at consecutive time points;
//   - the position index and track membership agree exactly, both ways;
//   - no single-position track without links or lineage metadata lingers;
//   - no unmerged single-successor/single-predecessor track pair exists;
//   - predecessor/successor references are mutual, registered, duplicate-free
//     and time-adjacent;
//   - lineage metadata sits only on lineage roots;
//   - link metadata keys span exactly one time point, sit in the right
//     bucket, and reference existing links; no empty containers remain.
//
// Intended for tests and debugging after mutating operations, not as a
// production error-handling path: no operation self-heals a corrupted state.
// Complexity: O(tracks + positions + metadata)
func (l *Links) CheckConsistency() error {
	// Track structure and index agreement.
	indexed := 0
	for id, t := range l.tracks {
		if t.id != id {
			return fail("track registered under id %d carries id %d", id, t.id)
		}
		if len(t.positions) == 0 {
			return fail("track %d has no positions", id)
		}
		for i, p := range t.positions {
			if p.T != t.minTimePoint+i {
				return fail("track %d: position %s at index %d breaks contiguity", id, p, i)
			}
			if l.byPosition[p] != t {
				return fail("track %d: position %s not indexed to its track", id, p)
			}
		}
		indexed += len(t.positions)

		if len(t.positions) == 1 && len(t.prev) == 0 && len(t.next) == 0 && len(t.lineageData) == 0 {
			return fail("track %d is an orphaned single-position track", id)
		}
		if len(t.next) == 1 && len(t.next[0].prev) == 1 {
			return fail("track %d and its sole successor are not merged", id)
		}
		if len(t.prev) > 0 && len(t.lineageData) > 0 {
			return fail("track %d carries lineage metadata but is not a lineage root", id)
		}

		if err := l.checkNeighbors(id, t); err != nil {
			return err
		}
	}
	if indexed != len(l.byPosition) {
		return fail("index holds %d positions, tracks hold %d", len(l.byPosition), indexed)
	}
	for p, t := range l.byPosition {
		if l.tracks[t.id] != t {
			return fail("position %s indexed to an unregistered track", p)
		}
	}

	return l.checkLinkData()
}

// checkNeighbors validates t's predecessor/successor references.
func (l *Links) checkNeighbors(id int, t *Track) error {
	seenNext := make(map[*Track]struct{}, len(t.next))
	for _, n := range t.next {
		if _, dup := seenNext[n]; dup {
			return fail("track %d lists a successor twice", id)
		}
		seenNext[n] = struct{}{}
		if l.tracks[n.id] != n {
			return fail("track %d references an unregistered successor", id)
		}
		if !containsTrack(n.prev, t) {
			return fail("track %d's successor %d does not point back", id, n.id)
		}
		if t.LastTimePoint()+1 != n.FirstTimePoint() {
			return fail("track %d ends at %d but successor %d starts at %d",
				id, t.LastTimePoint(), n.id, n.FirstTimePoint())
		}
	}
	seenPrev := make(map[*Track]struct{}, len(t.prev))
	for _, q := range t.prev {
		if _, dup := seenPrev[q]; dup {
			return fail("track %d lists a predecessor twice", id)
		}
		seenPrev[q] = struct{}{}
		if l.tracks[q.id] != q {
			return fail("track %d references an unregistered predecessor", id)
		}
		if !containsTrack(q.next, t) {
			return fail("track %d's predecessor %d does not point back", id, q.id)
		}
		if q.LastTimePoint() >= t.FirstTimePoint() {
			return fail("track %d's predecessor %d does not precede it in time", id, q.id)
		}
	}

	return nil
}

// checkLinkData validates the link-metadata store against the graph.
func (l *Links) checkLinkData() error {
	for timePoint, bucket := range l.data.byTime {
		if len(bucket) == 0 {
			return fail("empty metadata bucket left at time point %d", timePoint)
		}
		for pr, attrs := range bucket {
			if len(attrs) == 0 {
				return fail("empty attribute map left for link %s → %s", pr.from, pr.to)
			}
			if pr.from.T != timePoint {
				return fail("link %s → %s stored in bucket %d", pr.from, pr.to, timePoint)
			}
			if pr.to.T != pr.from.T+1 {
				return fail("metadata key %s → %s does not span one time point", pr.from, pr.to)
			}
			if !l.ContainsLink(pr.from, pr.to) {
				return fail("metadata stored for nonexistent link %s → %s", pr.from, pr.to)
			}
		}
	}

	return nil
}

// fail builds a CheckConsistency error wrapping ErrInconsistent.
func fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}
