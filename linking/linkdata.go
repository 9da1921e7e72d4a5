// Package linking: per-link metadata store.
//
// Link metadata is keyed by an ordered pair of positions at consecutive time
// points and grouped per time point of the earlier position, so that queries
// and time-shifts only touch the buckets they need. Empty maps are collected
// eagerly: a bucket or per-pair map never outlives its last value.
package linking

import "sort"

// positionPair is an ordered key for link metadata: from is always exactly
// one time point before to.
type positionPair struct {
	from Position
	to   Position
}

// orderedPair normalizes (a, b) so the earlier position comes first.
// Returns ErrSameTimePoint or ErrNotConsecutive for invalid spans.
// Complexity: O(1)
func orderedPair(a, b Position) (positionPair, error) {
	if a.T == b.T {
		return positionPair{}, ErrSameTimePoint
	}
	if a.T > b.T {
		a, b = b, a
	}
	if b.T-a.T != 1 {
		return positionPair{}, ErrNotConsecutive
	}

	return positionPair{from: a, to: b}, nil
}

// linkDataStore maps (earlier, later) position pairs to named attribute
// values, bucketed by the time point of the earlier position.
type linkDataStore struct {
	// byTime[t] holds the attributes of every stored pair whose earlier
	// position is at time point t. Buckets and per-pair maps are deleted as
	// soon as they become empty.
	byTime map[int]map[positionPair]map[string]any
}

// newLinkDataStore returns an empty store.
func newLinkDataStore() *linkDataStore {
	return &linkDataStore{byTime: make(map[int]map[positionPair]map[string]any)}
}

// set stores value under the given name for the pair. A nil value deletes the
// entry; the owning per-pair map and time bucket are removed when they become
// empty. Reserved-name checks happen at the Links boundary, not here.
// Complexity: O(1)
func (s *linkDataStore) set(pr positionPair, name string, value any) {
	bucket := s.byTime[pr.from.T]
	if value == nil {
		if bucket == nil {
			return
		}
		attrs := bucket[pr]
		if attrs == nil {
			return
		}
		delete(attrs, name)
		if len(attrs) == 0 {
			delete(bucket, pr)
		}
		if len(bucket) == 0 {
			delete(s.byTime, pr.from.T)
		}

		return
	}
	if bucket == nil {
		bucket = make(map[positionPair]map[string]any)
		s.byTime[pr.from.T] = bucket
	}
	attrs := bucket[pr]
	if attrs == nil {
		attrs = make(map[string]any)
		bucket[pr] = attrs
	}
	attrs[name] = value
}

// get returns the value stored under name for the pair, or nil.
// Complexity: O(1)
func (s *linkDataStore) get(pr positionPair, name string) any {
	attrs := s.byTime[pr.from.T][pr]
	if attrs == nil {
		return nil
	}

	return attrs[name]
}

// dataOf returns a copy of every attribute of the pair. Never nil.
// Complexity: O(attributes)
func (s *linkDataStore) dataOf(pr positionPair) map[string]any {
	out := make(map[string]any)
	for name, value := range s.byTime[pr.from.T][pr] {
		out[name] = value
	}

	return out
}

// pairsWithName returns every stored pair carrying the given attribute name,
// together with its value, sorted by the earlier position for determinism.
// Complexity: O(stored pairs)
func (s *linkDataStore) pairsWithName(name string) []LinkDataEntry {
	var out []LinkDataEntry
	for _, bucket := range s.byTime {
		for pr, attrs := range bucket {
			if value, ok := attrs[name]; ok {
				out = append(out, LinkDataEntry{From: pr.from, To: pr.to, Value: value})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return positionsLess(out[i].From, out[j].From)
		}

		return positionsLess(out[i].To, out[j].To)
	})

	return out
}

// removePair drops every attribute stored for the pair.
// Complexity: O(1)
func (s *linkDataStore) removePair(pr positionPair) {
	bucket := s.byTime[pr.from.T]
	if bucket == nil {
		return
	}
	delete(bucket, pr)
	if len(bucket) == 0 {
		delete(s.byTime, pr.from.T)
	}
}

// removeOfPosition drops every pair that references p at either end. Only the
// two buckets that can hold such pairs are touched.
// Complexity: O(pairs at p.T−1 and p.T)
func (s *linkDataStore) removeOfPosition(p Position) {
	for _, t := range [2]int{p.T - 1, p.T} {
		bucket := s.byTime[t]
		for pr := range bucket {
			if pr.from == p || pr.to == p {
				delete(bucket, pr)
			}
		}
		if len(bucket) == 0 {
			delete(s.byTime, t)
		}
	}
}

// replacePair moves all attributes of oldPair to newPair, overwriting any
// attributes previously stored there. No-op when oldPair has none.
// Complexity: O(1)
func (s *linkDataStore) replacePair(oldPair, newPair positionPair) {
	attrs := s.byTime[oldPair.from.T][oldPair]
	if attrs == nil {
		return
	}
	s.removePair(oldPair)
	bucket := s.byTime[newPair.from.T]
	if bucket == nil {
		bucket = make(map[positionPair]map[string]any)
		s.byTime[newPair.from.T] = bucket
	}
	bucket[newPair] = attrs
}

// replacePosition rewrites every pair key referencing oldPos so it references
// newPos instead, preserving all attribute values. Both positions share a
// time point (checked at the Links boundary).
// Complexity: O(pairs at oldPos.T−1 and oldPos.T)
func (s *linkDataStore) replacePosition(oldPos, newPos Position) {
	for _, t := range [2]int{oldPos.T - 1, oldPos.T} {
		bucket := s.byTime[t]
		// Collect first: rewriting while ranging over the bucket would
		// visit moved keys twice.
		var stale []positionPair
		for pr := range bucket {
			if pr.from == oldPos || pr.to == oldPos {
				stale = append(stale, pr)
			}
		}
		for _, pr := range stale {
			moved := pr
			if moved.from == oldPos {
				moved.from = newPos
			}
			if moved.to == oldPos {
				moved.to = newPos
			}
			s.replacePair(pr, moved)
		}
	}
}

// clone returns a deep copy of the store. Attribute values themselves are
// shared, matching the copy semantics of the owning Links.
// Complexity: O(stored values)
func (s *linkDataStore) clone() *linkDataStore {
	out := newLinkDataStore()
	for t, bucket := range s.byTime {
		newBucket := make(map[positionPair]map[string]any, len(bucket))
		for pr, attrs := range bucket {
			newAttrs := make(map[string]any, len(attrs))
			for name, value := range attrs {
				newAttrs[name] = value
			}
			newBucket[pr] = newAttrs
		}
		out.byTime[t] = newBucket
	}

	return out
}

// merge copies every attribute of other into s. On conflicting names the
// incoming value wins.
// Complexity: O(values in other)
func (s *linkDataStore) merge(other *linkDataStore) {
	for _, bucket := range other.byTime {
		for pr, attrs := range bucket {
			for name, value := range attrs {
				s.set(pr, name, value)
			}
		}
	}
}

// moveInTime rewrites every pair key by shifting both positions delta time
// points.
// Complexity: O(stored pairs)
func (s *linkDataStore) moveInTime(delta int) {
	if delta == 0 {
		return
	}
	shifted := make(map[int]map[positionPair]map[string]any, len(s.byTime))
	for t, bucket := range s.byTime {
		newBucket := make(map[positionPair]map[string]any, len(bucket))
		for pr, attrs := range bucket {
			pr.from.T += delta
			pr.to.T += delta
			newBucket[pr] = attrs
		}
		shifted[t+delta] = newBucket
	}
	s.byTime = shifted
}

// forEachPair calls fn for every stored pair with its attribute map. Used by
// the consistency checker and iteration helpers; fn must not mutate.
func (s *linkDataStore) forEachPair(fn func(pr positionPair, attrs map[string]any)) {
	for _, bucket := range s.byTime {
		for pr, attrs := range bucket {
			fn(pr, attrs)
		}
	}
}
