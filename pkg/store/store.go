// Package store defines the narrow contract between the virtual filesystem
// adapter and a path-addressed backing store.
//
// The store is deliberately simple: it understands absolute paths as keys,
// opaque node records as values, and sequential content streams. Everything
// filesystem-shaped (working directories, relative paths, permission
// decisions, protocol semantics) lives above it in pkg/vfs.
package store

import (
	"context"
	"io"
)

// Store is the backing-store contract the adapter depends on.
//
// Path Keys:
// Every operation is keyed by a normalized absolute path ("/alice/file.txt").
// The store never interprets paths beyond using them as keys and, for
// ListChildren, as a one-level prefix. Path normalization is the caller's
// responsibility (see vfs.Resolve).
//
// Derived Fields:
// A node's ContentID and Size are owned by the store, not the caller:
//   - ContentID is assigned when a file node is first saved and is preserved
//     across subsequent SaveNode calls.
//   - Size is derived from stored content length, updated when a write
//     stream closes. SaveNode never lets a caller-supplied Size overwrite
//     the size of existing content.
//
// Consistency:
// Concurrent operations on the same path are resolved last-write-wins.
// The store provides whatever atomicity its backend allows for MoveNode
// (documented per implementation); callers must not assume rollback.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// GetNode returns the node stored at the given path.
	//
	// An absent path is not an error: GetNode returns (nil, nil) so that
	// callers can probe existence cheaply before deciding whether to create.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - path: Normalized absolute path
	//
	// Returns:
	//   - *Node: The stored node, or nil if nothing exists at the path
	//   - error: Context or backend errors only (absence is nil, nil)
	GetNode(ctx context.Context, path string) (*Node, error)

	// SaveNode creates or updates the node at the given path.
	//
	// For a new file node the store assigns a ContentID. For an existing
	// node the stored ContentID and Size are preserved, so SaveNode is safe
	// for pure metadata updates (ownership, modified time).
	//
	// A path's kind is fixed once materialized: saving a file node over an
	// existing directory (or vice versa) fails with ErrExists.
	//
	// Returns:
	//   - error: ErrExists on a kind conflict, or context/backend errors
	SaveNode(ctx context.Context, path string, node *Node) error

	// DeleteNode removes the node at the given path along with its content.
	//
	// The operation is not recursive: deleting a directory removes only the
	// directory's own record. Returns ErrNotFound if nothing exists at the
	// path, which lets callers report idempotent deletes accurately.
	DeleteNode(ctx context.Context, path string) error

	// MoveNode relocates the node from one path to another.
	//
	// The node's content travels with it (the ContentID is unchanged).
	// If a node already exists at toPath it is overwritten. Moving a
	// directory relocates the directory record only, not its children;
	// callers that need deep renames must walk the tree themselves.
	//
	// Returns:
	//   - error: ErrNotFound if no node exists at fromPath
	MoveNode(ctx context.Context, fromPath, toPath string) error

	// ListChildren returns the nodes directly under the given directory
	// path, one level deep, in no guaranteed order.
	//
	// Returns:
	//   - []*Node: Direct children (may be empty)
	//   - error: ErrNotFound if the path is absent, ErrNotDirectory if it
	//     holds a file
	ListChildren(ctx context.Context, path string) ([]*Node, error)

	// OpenWriteStream opens a sequential write stream for the file node at
	// the given path.
	//
	// The node must already exist: metadata existence precedes content
	// existence, so a concurrent lister never observes content without a
	// node. The previous content, if any, remains readable until the
	// returned writer is closed; close is the durability boundary at which
	// the new content replaces the old and the node's Size and Modified are
	// updated.
	//
	// Returns:
	//   - io.WriteCloser: Sink for content bytes (caller must close)
	//   - error: ErrNotFound if the node is absent, ErrIsDirectory if the
	//     path holds a directory
	OpenWriteStream(ctx context.Context, path string) (io.WriteCloser, error)

	// OpenReadStream opens a sequential read stream for the file node at
	// the given path.
	//
	// A file node that has never been written reads as empty.
	//
	// Returns:
	//   - io.ReadCloser: Source of content bytes (caller must close)
	//   - error: ErrNotFound if the node is absent, ErrIsDirectory if the
	//     path holds a directory
	OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error)
}
