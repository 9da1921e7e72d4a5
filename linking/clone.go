// Package linking: whole-structure operations (deep copy and time shift).
package linking

// Copy returns a fully independent duplicate of the graph: new Track
// objects, a new position index and deep-copied metadata maps. Track ids are
// preserved, so TrackByID resolves identically on both instances. Metadata
// values themselves are shared; treat them as immutable.
// Complexity: O(tracks + positions + metadata)
func (l *Links) Copy() *Links {
	out := NewLinks()
	out.nextTrackID = l.nextTrackID

	// 1) Duplicate every track without its cross-references.
	twin := make(map[*Track]*Track, len(l.tracks))
	for id, t := range l.tracks {
		nt := &Track{
			id:           id,
			minTimePoint: t.minTimePoint,
			positions:    append([]Position(nil), t.positions...),
		}
		if t.lineageData != nil {
			nt.lineageData = make(map[string]any, len(t.lineageData))
			for name, value := range t.lineageData {
				nt.lineageData[name] = value
			}
		}
		out.tracks[id] = nt
		twin[t] = nt
	}

	// 2) Re-wire predecessor/successor references inside the new arena.
	for _, t := range l.tracks {
		nt := twin[t]
		for _, q := range t.prev {
			nt.prev = append(nt.prev, twin[q])
		}
		for _, n := range t.next {
			nt.next = append(nt.next, twin[n])
		}
	}

	// 3) Rebuild the index and copy metadata.
	for p, t := range l.byPosition {
		out.byPosition[p] = twin[t]
	}
	out.data = l.data.clone()

	return out
}

// MoveInTime shifts every position, the position index and every metadata
// key by delta time points. MoveInTime(d) followed by MoveInTime(-d)
// restores the original state.
// Complexity: O(positions + metadata)
func (l *Links) MoveInTime(delta int) {
	if delta == 0 {
		return
	}
	for _, t := range l.tracks {
		t.minTimePoint += delta
		for i := range t.positions {
			t.positions[i].T += delta
		}
	}
	shifted := make(map[Position]*Track, len(l.byPosition))
	for p, t := range l.byPosition {
		p.T += delta
		shifted[p] = t
	}
	l.byPosition = shifted
	l.data.moveInTime(delta)
}
