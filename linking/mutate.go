// Package linking: the Links coordinator, mutation side.
//
// Every public mutation validates its preconditions before touching state;
// the internal split/connect/merge steps cannot fail afterwards, so each
// operation is atomic. After any public call the graph is back in canonical
// form: no unmerged single-successor/single-predecessor pairs, no orphaned
// single-position tracks without metadata.
package linking

import "fmt"

// AddLink records that the entity at the earlier of a, b is the same entity
// (or its parent) as the one at the later. The two positions must be exactly
// one time point apart. Re-adding an existing link is a no-op.
// Returns ErrSameTimePoint or ErrNotConsecutive on invalid spans.
// Complexity: O(track length) worst case (a split), O(1) on the append path.
func (l *Links) AddLink(a, b Position) error {
	// 1) Normalize so a is exactly one time point before b.
	pr, err := orderedPair(a, b)
	if err != nil {
		return err
	}
	a, b = pr.from, pr.to

	// 2) Existing link: nothing to do.
	if l.ContainsLink(a, b) {
		return nil
	}

	trackA := l.byPosition[a]
	trackB := l.byPosition[b]

	// 3) Fast path: extend a dangling track end with a brand-new position.
	if trackA != nil && trackB == nil && a == trackA.LastPosition() && len(trackA.next) == 0 {
		trackA.positions = append(trackA.positions, b)
		l.byPosition[b] = trackA

		return nil
	}

	// 4) Ensure both endpoints have a track.
	if trackA == nil {
		trackA = l.registerNewTrack(a)
	}
	if trackB == nil {
		trackB = l.registerNewTrack(b)
	}

	// 5) Make a the last position of its track and b the first of its track,
	//    splitting where needed.
	if a != trackA.LastPosition() {
		l.split(trackA, a.T+1)
	}
	if b != trackB.FirstPosition() {
		trackB = l.split(trackB, b.T)
	}

	// 6) Connect and restore canonical form.
	l.connect(trackA, trackB)

	return nil
}

// RemoveLink severs the link between a and b, if any, and deletes all
// metadata stored for the pair. Removing an absent link is a no-op (the
// metadata is still deleted).
// Returns ErrSameTimePoint or ErrNotConsecutive on invalid spans.
// Complexity: O(track length) worst case (a split).
func (l *Links) RemoveLink(a, b Position) error {
	pr, err := orderedPair(a, b)
	if err != nil {
		return err
	}
	a, b = pr.from, pr.to
	l.data.removePair(pr)

	trackA := l.byPosition[a]
	trackB := l.byPosition[b]
	if trackA == nil || trackB == nil {
		return nil
	}

	if trackA == trackB {
		// Intra-track link: cut the track in two directly after a, then
		// sever the connection the split just made.
		later := l.split(trackA, b.T)
		trackA.setNext(later, nil)
		later.setPrev(trackA, nil)
		l.removeIfUnused(trackA)
		l.removeIfUnused(later)

		return nil
	}

	// Track-to-track link, if it exists at all.
	if a != trackA.LastPosition() || b != trackB.FirstPosition() || !containsTrack(trackA.next, trackB) {
		return nil
	}
	trackA.setNext(trackB, nil)
	trackB.setPrev(trackA, nil)
	// Severing may leave a now-unique neighbor pair that must fold together.
	if len(trackA.next) == 1 {
		l.tryMerge(trackA, trackA.next[0])
	}
	if len(trackB.prev) == 1 {
		l.tryMerge(trackB.prev[0], trackB)
	}
	l.removeIfUnused(trackA)
	l.removeIfUnused(trackB)

	return nil
}

// RemoveLinksOfPosition removes every link to and from p, along with all
// metadata referencing p, and deletes p from its track. Unknown positions
// are a no-op.
// Complexity: O(track length) worst case (a split).
func (l *Links) RemoveLinksOfPosition(p Position) {
	l.data.removeOfPosition(p)
	t := l.byPosition[p]
	if t == nil {
		return
	}

	switch age := t.Age(p); {
	case len(t.positions) == 1:
		// The track's only position: detach the whole track and delete it.
		l.detachAndDelete(t)

	case age == 0:
		// First position: sever all predecessor links, then drop p from the
		// front of the track.
		l.severAllPrev(t)
		t.positions = t.positions[1:]
		t.minTimePoint++
		delete(l.byPosition, p)
		l.removeIfUnused(t)

	case age == len(t.positions)-1:
		// Last position: sever all successor links, then drop p from the
		// end of the track.
		l.severAllNext(t)
		t.positions = t.positions[:len(t.positions)-1]
		delete(l.byPosition, p)
		l.removeIfUnused(t)

	default:
		// Interior position: isolate p at the end of the front fragment,
		// sever the split link, then drop p.
		later := l.split(t, p.T+1)
		t.setNext(later, nil)
		later.setPrev(t, nil)
		t.positions = t.positions[:len(t.positions)-1]
		delete(l.byPosition, p)
		l.removeIfUnused(t)
		l.removeIfUnused(later)
	}
}

// ReplacePosition substitutes newPos for oldPos at the same time point,
// rewriting the track, the position index and every metadata key that
// referenced oldPos. Unknown oldPos is a no-op.
// Returns ErrTimePointMismatch when the time points differ.
// Complexity: O(metadata pairs at the two adjacent time points)
func (l *Links) ReplacePosition(oldPos, newPos Position) error {
	if oldPos.T != newPos.T {
		return ErrTimePointMismatch
	}
	if oldPos == newPos {
		return nil
	}
	t := l.byPosition[oldPos]
	if t == nil {
		return nil
	}
	t.positions[t.Age(oldPos)] = newPos
	delete(l.byPosition, oldPos)
	l.byPosition[newPos] = t
	l.data.replacePosition(oldPos, newPos)

	return nil
}

// AddTrack registers an externally built track (see NewTrack) and indexes
// its positions. Re-adding a registered track is a no-op.
// Fails when any of the track's positions already belongs to another track,
// before any mutation.
// Complexity: O(track length)
func (l *Links) AddTrack(t *Track) error {
	if l.tracks[t.id] == t {
		return nil
	}
	for _, p := range t.positions {
		if l.byPosition[p] != nil {
			return fmt.Errorf("linking: position %s already belongs to a track", p)
		}
	}
	l.register(t)

	return nil
}

// ConnectTracks links nextTrack as a successor of prevTrack, registering
// either track first if needed. The tracks fold into one when the connection
// leaves exactly one successor and one predecessor.
// Returns ErrNotConsecutive unless prevTrack ends exactly one time point
// before nextTrack starts, ErrAlreadyConnected on double connection.
// Note: a fold invalidates the nextTrack reference; re-resolve via TrackOf.
// Complexity: O(track length)
func (l *Links) ConnectTracks(prevTrack, nextTrack *Track) error {
	if prevTrack.LastTimePoint()+1 != nextTrack.FirstTimePoint() {
		return ErrNotConsecutive
	}
	if containsTrack(prevTrack.next, nextTrack) {
		return ErrAlreadyConnected
	}
	// Validate registration of both tracks before mutating either.
	for _, t := range [2]*Track{prevTrack, nextTrack} {
		if l.tracks[t.id] == t {
			continue
		}
		for _, p := range t.positions {
			if l.byPosition[p] != nil {
				return fmt.Errorf("linking: position %s already belongs to a track", p)
			}
		}
	}
	if l.tracks[prevTrack.id] != prevTrack {
		l.register(prevTrack)
	}
	if l.tracks[nextTrack.id] != nextTrack {
		l.register(nextTrack)
	}

	l.connect(prevTrack, nextTrack)

	return nil
}

// RemoveAllLinks resets the graph to empty: all tracks, the position index
// and all link metadata are discarded.
// Complexity: O(1)
func (l *Links) RemoveAllLinks() {
	l.tracks = make(map[int]*Track)
	l.byPosition = make(map[Position]*Track)
	l.data = newLinkDataStore()
}

// MergeData incorporates every link, link attribute and lineage attribute of
// other into l. On conflicting attribute names the incoming value wins.
// other is left untouched; no track objects are shared.
// Complexity: O(size of other)
func (l *Links) MergeData(other *Links) {
	for _, id := range other.sortedTrackIDs() {
		t2 := other.tracks[id]
		// Intra-track links.
		for i := 0; i+1 < len(t2.positions); i++ {
			_ = l.AddLink(t2.positions[i], t2.positions[i+1])
		}
		// Track-to-track links.
		for _, n := range t2.next {
			_ = l.AddLink(t2.LastPosition(), n.FirstPosition())
		}
		// An isolated single-position track survives only to carry lineage
		// metadata; re-create it explicitly.
		if len(t2.positions) == 1 && len(t2.prev) == 0 && len(t2.next) == 0 &&
			t2.lineageData != nil && !l.ContainsPosition(t2.positions[0]) {
			nt, _ := NewTrack(t2.positions[0])
			_ = l.AddTrack(nt)
		}
	}

	// Lineage metadata, re-rooted in the combined graph.
	for _, id := range other.sortedTrackIDs() {
		t2 := other.tracks[id]
		if t2.lineageData == nil {
			continue
		}
		target := l.byPosition[t2.FirstPosition()]
		if target == nil {
			continue
		}
		root := lineageRoot(target)
		if root.lineageData == nil {
			root.lineageData = make(map[string]any, len(t2.lineageData))
		}
		for name, value := range t2.lineageData {
			root.lineageData[name] = value
		}
	}

	l.data.merge(other.data)
}

// Internal track bookkeeping:
////////////////////

// connect makes t2 a successor of t1, migrates lineage metadata off t2 now
// that it is no longer a lineage root, and folds the pair when the
// connection left exactly one link on both sides.
func (l *Links) connect(t1, t2 *Track) {
	t1.next = append(t1.next, t2)
	t2.prev = append(t2.prev, t1)
	if t2.lineageData != nil {
		root := lineageRoot(t2)
		if root != t2 {
			if root.lineageData == nil {
				root.lineageData = make(map[string]any, len(t2.lineageData))
			}
			for name, value := range t2.lineageData {
				if _, exists := root.lineageData[name]; !exists {
					root.lineageData[name] = value
				}
			}
			t2.lineageData = nil
		}
	}
	l.tryMerge(t1, t2)
}

// register assigns a stable id to t, stores it in the arena and indexes its
// positions.
func (l *Links) register(t *Track) {
	l.nextTrackID++
	t.id = l.nextTrackID
	l.tracks[t.id] = t
	for _, p := range t.positions {
		l.byPosition[p] = t
	}
}

// registerNewTrack creates and registers a single-position track anchoring p.
func (l *Links) registerNewTrack(p Position) *Track {
	t := &Track{minTimePoint: p.T, positions: []Position{p}}
	l.register(t)

	return t
}

// split cuts t directly before firstTimePoint and returns the new later
// fragment, connected as t's sole successor. t keeps its predecessors, its
// lineage metadata and its id; the fragment inherits t's successors.
// firstTimePoint must lie strictly inside (t.FirstTimePoint, t.LastTimePoint].
func (l *Links) split(t *Track, firstTimePoint int) *Track {
	idx := firstTimePoint - t.minTimePoint
	later := &Track{
		minTimePoint: firstTimePoint,
		positions:    append([]Position(nil), t.positions[idx:]...),
		prev:         []*Track{t},
		next:         t.next,
	}
	t.positions = t.positions[:idx:idx]
	t.next = []*Track{later}
	for _, n := range later.next {
		n.setPrev(t, later)
	}
	l.nextTrackID++
	later.id = l.nextTrackID
	l.tracks[later.id] = later
	for _, p := range later.positions {
		l.byPosition[p] = later
	}

	return later
}

// tryMerge folds t2 into t1 when t1 is t2's sole predecessor and t2 is t1's
// sole successor; otherwise a no-op. t2's former successors are re-linked to
// t1 and t2 leaves the arena. Lineage metadata carried by t2 moves to the
// lineage root of the merged track, keeping existing root values on
// conflicts.
func (l *Links) tryMerge(t1, t2 *Track) {
	if len(t1.next) != 1 || t1.next[0] != t2 || len(t2.prev) != 1 || t2.prev[0] != t1 {
		return
	}
	for _, p := range t2.positions {
		l.byPosition[p] = t1
	}
	t1.positions = append(t1.positions, t2.positions...)
	t1.next = t2.next
	for _, n := range t1.next {
		n.setPrev(t2, t1)
	}
	delete(l.tracks, t2.id)

	if t2.lineageData != nil {
		root := lineageRoot(t1)
		if root.lineageData == nil {
			root.lineageData = make(map[string]any, len(t2.lineageData))
		}
		for name, value := range t2.lineageData {
			if _, exists := root.lineageData[name]; !exists {
				root.lineageData[name] = value
			}
		}
	}
}

// removeIfUnused deletes t when it is a single position with no neighbors
// and no lineage metadata. Such a track records nothing and must not linger.
func (l *Links) removeIfUnused(t *Track) {
	if l.tracks[t.id] != t {
		return
	}
	if len(t.positions) != 1 || len(t.prev) != 0 || len(t.next) != 0 || len(t.lineageData) != 0 {
		return
	}
	delete(l.byPosition, t.positions[0])
	delete(l.tracks, t.id)
}

// detachAndDelete severs every link of the single-position track t, folds
// any neighbor pairs the severing made unique, and removes t entirely.
func (l *Links) detachAndDelete(t *Track) {
	l.severAllPrev(t)
	l.severAllNext(t)
	delete(l.byPosition, t.positions[0])
	delete(l.tracks, t.id)
}

// severAllPrev disconnects t from all predecessors, restoring canonical form
// on each former neighbor.
func (l *Links) severAllPrev(t *Track) {
	for _, q := range t.PreviousTracks() {
		q.setNext(t, nil)
		t.setPrev(q, nil)
		if len(q.next) == 1 {
			l.tryMerge(q, q.next[0])
		}
		l.removeIfUnused(q)
	}
}

// severAllNext disconnects t from all successors, restoring canonical form
// on each former neighbor.
func (l *Links) severAllNext(t *Track) {
	for _, n := range t.NextTracks() {
		n.setPrev(t, nil)
		t.setNext(n, nil)
		if len(n.prev) == 1 {
			l.tryMerge(n.prev[0], n)
		}
		l.removeIfUnused(n)
	}
}
