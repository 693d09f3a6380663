package store

import "errors"

// Sentinel errors shared by all store implementations.
//
// These are business-logic conditions, not infrastructure failures.
// Implementations wrap them with context via fmt.Errorf("...: %w", err) so
// callers can test with errors.Is while still seeing the offending path.
var (
	// ErrNotFound indicates no node exists at the requested path.
	ErrNotFound = errors.New("node not found")

	// ErrExists indicates a node of a different kind already occupies the
	// path. A path's kind is fixed once materialized (no file <-> directory
	// transition without an intervening delete).
	ErrExists = errors.New("node exists with a different kind")

	// ErrNotDirectory indicates a directory operation was attempted on a
	// file node.
	ErrNotDirectory = errors.New("node is not a directory")

	// ErrIsDirectory indicates a content stream was requested for a
	// directory node.
	ErrIsDirectory = errors.New("node is a directory")
)
