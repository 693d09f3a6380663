package store

import "time"

// Node is the metadata record for a single filesystem entry.
//
// A path either has no node (absent) or exactly one node that is a file or a
// directory. Content is never stored on the node itself: file bytes live
// behind the store's stream operations, keyed by ContentID, and directory
// children are discovered through ListChildren. Absence is represented by a
// nil *Node at the store boundary.
type Node struct {
	// Name is the final path segment, with no separators.
	Name string `json:"name"`

	// Directory reports whether this node is a directory.
	Directory bool `json:"directory"`

	// Owner and Group are identity names, not numeric IDs.
	Owner string `json:"owner"`
	Group string `json:"group"`

	// Hidden marks entries a listing may choose to suppress.
	Hidden bool `json:"hidden,omitempty"`

	// Modified is the last modification time in milliseconds since the
	// Unix epoch, the precision the FTP front end works in.
	Modified int64 `json:"modified"`

	// Size is the content length in bytes. Derived from stored content by
	// the store; meaningless for directories.
	Size int64 `json:"size"`

	// ContentID is the store-assigned identifier for this file's content.
	// Empty for directories and for files that have never been saved.
	// Opaque to callers.
	ContentID string `json:"content_id,omitempty"`
}

// Clone returns an independent copy of the node.
//
// Stores hand out and accept clones so that a caller-held snapshot and the
// stored record never alias each other.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// NowMillis returns the current time in milliseconds since the Unix epoch,
// the unit Node.Modified is expressed in.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
