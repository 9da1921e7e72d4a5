// Package linking implements the lineage-link graph at the heart of a
// particle/cell tracker: it records trajectories, divisions and (anomalous)
// merges across discrete time points, and keeps the structure canonical
// after every mutation.
//
// The graph is built from three pieces:
//
//   - Position — an immutable value identifying one tracked entity at one
//     time point. Equality and map-key behavior follow (X, Y, Z, T) only.
//   - Track — a maximal run of positions at consecutive time points, with
//     non-owning references to the tracks it divides into and the tracks it
//     came from.
//   - Links — the coordinator. It owns the track arena, the position→track
//     index, per-link metadata and per-lineage metadata, and exposes every
//     mutating and querying operation.
//
// Canonical form, maintained after every public operation:
//
//   - positions within a track occupy consecutive time points, no gaps;
//   - a single-position track with no links and no lineage metadata is
//     garbage and is deleted eagerly;
//   - a track pair connected by exactly one successor and exactly one
//     predecessor reference never persists: such pairs fold into one track;
//   - zero successors = lineage end, two = division; zero predecessors =
//     lineage start, two or more = cell merge (permitted but anomalous);
//   - lineage metadata lives only on lineage roots;
//   - link metadata never leaves empty containers behind.
//
// Mutation:
//
//	AddLink(a, b) error                  // O(track length) worst, O(1) append path
//	RemoveLink(a, b) error               // O(track length)
//	RemoveLinksOfPosition(p)             // O(track length)
//	ReplacePosition(old, new) error      // O(adjacent metadata)
//	AddTrack(t) error                    // O(track length)
//	ConnectTracks(prev, next) error      // O(track length)
//	RemoveAllLinks()                     // O(1)
//	MergeData(other)                     // O(size of other)
//	Copy() *Links                        // O(everything), fully independent
//	MoveInTime(delta)                    // O(positions + metadata)
//
// Query:
//
//	FindFutures(p) / FindPasts(p)                  // sorted neighbor positions
//	FindSingleFuture(p) / FindSinglePast(p)        // (Position, ok) — never an error for "not found"
//	FindLinksOf(p), ContainsLink(a, b), ContainsPosition(p)
//	TrackOf(p), TrackID(t), TrackByID(id), AllTracks()
//	StartingTracks(), EndingTracks(), TracksAtTimePoint(t)
//	AppearedPositions(ignore), DisappearedPositions(ignore)
//	IterateToFuture(p), IterateToPast(p)           // lazy single-link walks
//	LinksOfTimePoint(t)                            // lazy (earlier, later) pairs
//	LinkCount()
//
// Metadata:
//
//	SetLinkData / LinkData / FindAllLinksWithData / FindAllDataOfLink
//	SetLineageData / LineageData / FindAllDataOfLineage
//
// Verification:
//
//	CheckConsistency() error   // exhaustive invariant check, wraps ErrInconsistent
//
// Errors:
//
//	ErrSameTimePoint     – linking a position to one at the same time point
//	ErrNotConsecutive    – link or connection spanning ≠ 1 time point
//	ErrTimePointMismatch – replacement across time points
//	ErrReservedName      – metadata name "id", "source", "target" or "__…"
//	ErrAlreadyConnected  – double-connecting tracks
//	ErrOutOfRange        – time point outside a track's range
//	ErrNoTrack           – lineage metadata on an untracked position
//	ErrInconsistent      – reported by CheckConsistency only
//
// Precondition violations fail fast, before any mutation; every public
// operation is atomic. The structure is single-threaded: reads may run
// concurrently with each other, never with a mutation.
package linking
