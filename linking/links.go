// Package linking: the Links coordinator, query side.
//
// Links owns the whole track arena, the position→track index and the metadata
// stores; every cross-track pointer is maintained by the mutation methods in
// mutate.go so the graph is always in canonical form between public calls.
package linking

import (
	"fmt"
	"iter"
	"sort"
)

// LinkDataEntry is one result of FindAllLinksWithData: a stored (earlier,
// later) pair together with the value of the requested attribute.
type LinkDataEntry struct {
	From  Position
	To    Position
	Value any
}

// Links records the trajectories, divisions and merges of tracked entities
// across discrete time points.
//
// Links exclusively owns all Track instances; Track predecessor/successor
// references are non-owning associations into this arena. The structure is
// not safe for concurrent mutation: guard writes externally when sharing an
// instance across goroutines.
type Links struct {
	// tracks is the arena of live tracks, keyed by stable track id.
	tracks map[int]*Track

	// byPosition indexes every tracked position to its owning track and must
	// always agree with track membership.
	byPosition map[Position]*Track

	// data holds per-link metadata.
	data *linkDataStore

	// nextTrackID generates stable track identifiers, starting at 1.
	nextTrackID int
}

// NewLinks returns an empty lineage graph.
// Complexity: O(1)
func NewLinks() *Links {
	return &Links{
		tracks:     make(map[int]*Track),
		byPosition: make(map[Position]*Track),
		data:       newLinkDataStore(),
	}
}

// LinkCount returns the total number of links: position-to-position
// connections inside tracks plus track-to-track connections.
// Complexity: O(tracks)
func (l *Links) LinkCount() int {
	n := 0
	for _, t := range l.tracks {
		n += len(t.positions) - 1 + len(t.next)
	}

	return n
}

// ContainsPosition reports whether p belongs to any track.
// Complexity: O(1)
func (l *Links) ContainsPosition(p Position) bool {
	_, ok := l.byPosition[p]

	return ok
}

// TrackOf returns the track containing p, or nil when p was never added.
// Complexity: O(1)
func (l *Links) TrackOf(p Position) *Track {
	return l.byPosition[p]
}

// TrackID returns the stable id of the given track within this instance.
// The second result is false when the track is not (or no longer) part of
// this graph, for example after it was folded into a neighbor by a merge.
// Complexity: O(1)
func (l *Links) TrackID(t *Track) (int, bool) {
	if t == nil || l.tracks[t.id] != t {
		return 0, false
	}

	return t.id, true
}

// TrackByID returns the track with the given stable id, or nil.
// Complexity: O(1)
func (l *Links) TrackByID(id int) *Track {
	return l.tracks[id]
}

// AllTracks returns a lazy sequence of (id, track) pairs in ascending id
// order. The sequence is restartable; do not mutate the graph mid-iteration.
// Complexity: O(tracks·log tracks) per full iteration.
func (l *Links) AllTracks() iter.Seq2[int, *Track] {
	return func(yield func(int, *Track) bool) {
		for _, id := range l.sortedTrackIDs() {
			if !yield(id, l.tracks[id]) {
				return
			}
		}
	}
}

// StartingTracks returns every track with no predecessors (lineage starts),
// sorted by track id.
// Complexity: O(tracks·log tracks)
func (l *Links) StartingTracks() []*Track {
	return l.selectTracks(func(t *Track) bool { return len(t.prev) == 0 })
}

// EndingTracks returns every track with no successors (lineage ends), sorted
// by track id.
// Complexity: O(tracks·log tracks)
func (l *Links) EndingTracks() []*Track {
	return l.selectTracks(func(t *Track) bool { return len(t.next) == 0 })
}

// TracksAtTimePoint returns every track whose time range covers timePoint,
// sorted by track id.
// Complexity: O(tracks·log tracks)
func (l *Links) TracksAtTimePoint(timePoint int) []*Track {
	return l.selectTracks(func(t *Track) bool {
		return t.minTimePoint <= timePoint && timePoint <= t.LastTimePoint()
	})
}

// FindFutures returns the positions at the next time point that p links to:
// zero results for a lineage end, two for a division. Results are sorted.
// Complexity: O(successors)
func (l *Links) FindFutures(p Position) []Position {
	t := l.byPosition[p]
	if t == nil {
		return nil
	}
	if p != t.LastPosition() {
		return []Position{t.positions[t.Age(p)+1]}
	}
	out := make([]Position, 0, len(t.next))
	for _, n := range t.next {
		out = append(out, n.FirstPosition())
	}
	sort.Slice(out, func(i, j int) bool { return positionsLess(out[i], out[j]) })

	return out
}

// FindPasts returns the positions at the previous time point that link to p.
// More than one result marks an (anomalous) cell merge. Results are sorted.
// Complexity: O(predecessors)
func (l *Links) FindPasts(p Position) []Position {
	t := l.byPosition[p]
	if t == nil {
		return nil
	}
	if p != t.FirstPosition() {
		return []Position{t.positions[t.Age(p)-1]}
	}
	out := make([]Position, 0, len(t.prev))
	for _, q := range t.prev {
		out = append(out, q.LastPosition())
	}
	sort.Slice(out, func(i, j int) bool { return positionsLess(out[i], out[j]) })

	return out
}

// FindSingleFuture returns the unique position p links forward to, if there
// is exactly one. The second result is false for lineage ends and divisions.
// Complexity: O(successors)
func (l *Links) FindSingleFuture(p Position) (Position, bool) {
	futures := l.FindFutures(p)
	if len(futures) != 1 {
		return Position{}, false
	}

	return futures[0], true
}

// FindSinglePast returns the unique position linking forward to p, if there
// is exactly one. The second result is false for lineage starts and merges.
// Complexity: O(predecessors)
func (l *Links) FindSinglePast(p Position) (Position, bool) {
	pasts := l.FindPasts(p)
	if len(pasts) != 1 {
		return Position{}, false
	}

	return pasts[0], true
}

// FindLinksOf returns every position directly linked to p, pasts before
// futures.
// Complexity: O(neighbors)
func (l *Links) FindLinksOf(p Position) []Position {
	return append(l.FindPasts(p), l.FindFutures(p)...)
}

// ContainsLink reports whether a and b are directly linked. Positions at the
// same or non-consecutive time points are never linked.
// Complexity: O(successors)
func (l *Links) ContainsLink(a, b Position) bool {
	pr, err := orderedPair(a, b)
	if err != nil {
		return false
	}
	for _, future := range l.FindFutures(pr.from) {
		if future == pr.to {
			return true
		}
	}

	return false
}

// AppearedPositions returns the first position of every lineage start,
// sorted. Positions at ignoreTimePoint are skipped; pass NoTimePoint to keep
// them all. Typically used with the first time point of an experiment, where
// every entity "appears" trivially.
// Complexity: O(tracks·log tracks)
func (l *Links) AppearedPositions(ignoreTimePoint int) []Position {
	var out []Position
	for _, t := range l.tracks {
		if len(t.prev) == 0 && t.minTimePoint != ignoreTimePoint {
			out = append(out, t.FirstPosition())
		}
	}
	sort.Slice(out, func(i, j int) bool { return positionsLess(out[i], out[j]) })

	return out
}

// DisappearedPositions returns the last position of every lineage end,
// sorted. Positions at ignoreTimePoint are skipped; pass NoTimePoint to keep
// them all.
// Complexity: O(tracks·log tracks)
func (l *Links) DisappearedPositions(ignoreTimePoint int) []Position {
	var out []Position
	for _, t := range l.tracks {
		if len(t.next) == 0 && t.LastTimePoint() != ignoreTimePoint {
			out = append(out, t.LastPosition())
		}
	}
	sort.Slice(out, func(i, j int) bool { return positionsLess(out[i], out[j]) })

	return out
}

// IterateToFuture walks forward from p, yielding each next position for as
// long as exactly one future exists. The walk stops (exclusive) at a
// division or a lineage end; p itself is not yielded.
func (l *Links) IterateToFuture(p Position) iter.Seq[Position] {
	return l.iterate(p, l.FindSingleFuture)
}

// IterateToPast walks backward from p, yielding each previous position for
// as long as exactly one past exists. The walk stops (exclusive) at a merge
// or a lineage start; p itself is not yielded.
func (l *Links) IterateToPast(p Position) iter.Seq[Position] {
	return l.iterate(p, l.FindSinglePast)
}

// iterate implements the shared single-link walk behind IterateToFuture and
// IterateToPast.
func (l *Links) iterate(p Position, step func(Position) (Position, bool)) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		cur := p
		for {
			next, ok := step(cur)
			if !ok || !yield(next) {
				return
			}
			cur = next
		}
	}
}

// LinksOfTimePoint returns a lazy sequence of every link whose earlier
// position is at the given time point, as (earlier, later) pairs. Order is
// deterministic (earlier position, then later).
// Complexity: O(tracks + links at timePoint) per full iteration.
func (l *Links) LinksOfTimePoint(timePoint int) iter.Seq2[Position, Position] {
	return func(yield func(Position, Position) bool) {
		type link struct{ from, to Position }
		var out []link
		for _, t := range l.tracks {
			// Intra-track link leaving timePoint.
			idx := timePoint - t.minTimePoint
			if idx >= 0 && idx < len(t.positions)-1 {
				out = append(out, link{t.positions[idx], t.positions[idx+1]})
			}
			// Track-to-track links leaving the track end.
			if t.LastTimePoint() == timePoint {
				for _, n := range t.next {
					out = append(out, link{t.LastPosition(), n.FirstPosition()})
				}
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].from != out[j].from {
				return positionsLess(out[i].from, out[j].from)
			}

			return positionsLess(out[i].to, out[j].to)
		})
		for _, lk := range out {
			if !yield(lk.from, lk.to) {
				return
			}
		}
	}
}

// Link metadata:
////////////////////

// SetLinkData stores value under name for the link (a, b). A nil value
// deletes the entry, leaving no empty containers behind.
// Returns ErrReservedName for "id", "source", "target" or "__"-prefixed
// names, ErrSameTimePoint/ErrNotConsecutive for invalid pairs.
// Complexity: O(1)
func (l *Links) SetLinkData(a, b Position, name string, value any) error {
	if isReservedName(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	pr, err := orderedPair(a, b)
	if err != nil {
		return err
	}
	l.data.set(pr, name, value)

	return nil
}

// LinkData returns the value stored under name for the link (a, b), or nil
// when absent or when the pair is invalid.
// Complexity: O(1)
func (l *Links) LinkData(a, b Position, name string) any {
	pr, err := orderedPair(a, b)
	if err != nil {
		return nil
	}

	return l.data.get(pr, name)
}

// FindAllLinksWithData returns every link carrying the given attribute name,
// with its value, sorted by the earlier position.
// Complexity: O(stored pairs)
func (l *Links) FindAllLinksWithData(name string) []LinkDataEntry {
	return l.data.pairsWithName(name)
}

// FindAllDataOfLink returns a copy of every attribute of the link (a, b).
// Never nil; empty for invalid pairs.
// Complexity: O(attributes)
func (l *Links) FindAllDataOfLink(a, b Position) map[string]any {
	pr, err := orderedPair(a, b)
	if err != nil {
		return map[string]any{}
	}

	return l.data.dataOf(pr)
}

// Lineage metadata:
////////////////////

// SetLineageData stores value under name for the whole lineage containing p.
// The value lives on the lineage's root track and survives splits and merges
// that keep the root intact. A nil value deletes the entry.
// Returns ErrReservedName for reserved names and ErrNoTrack when p is not
// part of any track.
// Complexity: O(lineage depth)
func (l *Links) SetLineageData(p Position, name string, value any) error {
	if isReservedName(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	t := l.byPosition[p]
	if t == nil {
		return fmt.Errorf("%w: %s", ErrNoTrack, p)
	}
	root := lineageRoot(t)
	if value == nil {
		delete(root.lineageData, name)
		if len(root.lineageData) == 0 {
			root.lineageData = nil
		}

		return nil
	}
	if root.lineageData == nil {
		root.lineageData = make(map[string]any)
	}
	root.lineageData[name] = value

	return nil
}

// LineageData returns the value stored under name for the lineage containing
// p, or nil.
// Complexity: O(lineage depth)
func (l *Links) LineageData(p Position, name string) any {
	t := l.byPosition[p]
	if t == nil {
		return nil
	}

	return lineageRoot(t).lineageData[name]
}

// FindAllDataOfLineage returns a copy of every attribute of the lineage
// containing p. Never nil.
// Complexity: O(lineage depth + attributes)
func (l *Links) FindAllDataOfLineage(p Position) map[string]any {
	out := make(map[string]any)
	t := l.byPosition[p]
	if t == nil {
		return out
	}
	for name, value := range lineageRoot(t).lineageData {
		out[name] = value
	}

	return out
}

// lineageRoot walks predecessor references up to the earliest ancestor
// track. When a track has several predecessors (a cell merge), the walk
// follows the one starting earliest, ties broken by lowest track id, so the
// root is deterministic.
func lineageRoot(t *Track) *Track {
	for len(t.prev) > 0 {
		chosen := t.prev[0]
		for _, q := range t.prev[1:] {
			if q.minTimePoint < chosen.minTimePoint ||
				(q.minTimePoint == chosen.minTimePoint && q.id < chosen.id) {
				chosen = q
			}
		}
		t = chosen
	}

	return t
}

// Internal helpers:
////////////////////

// sortedTrackIDs returns all live track ids in ascending order.
func (l *Links) sortedTrackIDs() []int {
	ids := make([]int, 0, len(l.tracks))
	for id := range l.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// selectTracks returns all tracks matching pred, sorted by id.
func (l *Links) selectTracks(pred func(*Track) bool) []*Track {
	var out []*Track
	for _, id := range l.sortedTrackIDs() {
		if t := l.tracks[id]; pred(t) {
			out = append(out, t)
		}
	}

	return out
}
