// Package linking: central types and sentinel errors.
//
// This file declares Position, the reserved metadata name rules, and the
// sentinel errors shared by every operation in the package. Track and Links
// are declared in track.go and links.go respectively.
package linking

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors for lineage-graph operations.
var (
	// ErrSameTimePoint indicates an attempt to link two positions that share
	// a time point.
	ErrSameTimePoint = errors.New("linking: positions share a time point")

	// ErrNotConsecutive indicates a link or connection spanning a time gap
	// other than exactly one time point.
	ErrNotConsecutive = errors.New("linking: time points are not consecutive")

	// ErrTimePointMismatch indicates a position replacement that would change
	// the time point.
	ErrTimePointMismatch = errors.New("linking: replacement changes the time point")

	// ErrReservedName indicates a metadata name that is reserved for internal
	// use ("id", "source", "target", or any "__"-prefixed name).
	ErrReservedName = errors.New("linking: reserved metadata name")

	// ErrAlreadyConnected indicates an attempt to connect two tracks that are
	// already connected.
	ErrAlreadyConnected = errors.New("linking: tracks already connected")

	// ErrOutOfRange indicates a time point outside a track's covered range.
	ErrOutOfRange = errors.New("linking: time point outside track range")

	// ErrNoTrack indicates a position that is not part of any track.
	ErrNoTrack = errors.New("linking: position has no track")

	// ErrInconsistent is returned (wrapped, with detail) by CheckConsistency
	// when an internal invariant does not hold.
	ErrInconsistent = errors.New("linking: inconsistent internal state")
)

// NoTimePoint is a sentinel time point number that never occurs in real data.
// Pass it to AppearedPositions/DisappearedPositions to disable filtering.
const NoTimePoint = math.MinInt

// Position identifies a tracked entity at a single time point.
//
// Position is an immutable value type: equality and map-key behavior are
// defined purely by (X, Y, Z, T). "Moving" a position means replacing it with
// a new Position at the same time point via Links.ReplacePosition.
type Position struct {
	// X, Y, Z are the spatial coordinates.
	X, Y, Z float64

	// T is the time point number.
	T int
}

// NewPosition constructs a Position at the given coordinates and time point.
// Complexity: O(1)
func NewPosition(x, y, z float64, t int) Position {
	return Position{X: x, Y: y, Z: z, T: t}
}

// WithTimePoint returns a copy of p carrying the given time point number.
// Used by time-shifting; the coordinates are unchanged.
// Complexity: O(1)
func (p Position) WithTimePoint(t int) Position {
	p.T = t

	return p
}

// String renders the position as "(x, y, z) @ t" for error messages and logs.
func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f) @ %d", p.X, p.Y, p.Z, p.T)
}

// reservedDataNames are metadata names rejected at the API boundary.
// "id", "source" and "target" collide with columns used by common tabular
// exports; "__"-prefixed names are kept free for internal bookkeeping.
var reservedDataNames = map[string]struct{}{
	"id":     {},
	"source": {},
	"target": {},
}

// isReservedName reports whether a metadata name may not be used by callers.
// Complexity: O(1)
func isReservedName(name string) bool {
	if _, ok := reservedDataNames[name]; ok {
		return true
	}

	return strings.HasPrefix(name, "__")
}

// positionsLess orders positions by time point first, then by coordinates.
// Used wherever query results must be deterministic.
func positionsLess(a, b Position) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}

	return a.Z < b.Z
}
