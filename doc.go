// Package trackgraph tracks biological cells through time: positions
// detected at discrete time points are joined by links into tracks, and
// tracks into full cell lineages.
//
// What is in the box?
//
//	linking/    — the in-memory lineage graph: Position, Track and the
//	              Links coordinator with invariant-preserving mutations,
//	              lazy traversals and per-link / per-lineage metadata
//	trackstore/ — SQLite persistence for a Links graph, one dataset per
//	              database file
//	cmd/        — the trackgraph operator CLI: stats, check, shift
//
// The linking package is the heart of the module; start with its package
// documentation. Everything else is a thin collaborator built on its
// public API.
package trackgraph
