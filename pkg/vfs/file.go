package vfs

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/adrianwalker/ftpserver-filesystem/internal/logger"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// File presents one resolved path as a filesystem entry.
//
// A File is a snapshot: it captures the identity, the resolved absolute
// path and the node as it was at resolution time, and it does not observe
// later external changes. Callers that need current state re-resolve
// through View.File. The one deliberate exception is SetLastModified and
// the lazy file creation inside OpenWriter, which update the held node so
// the same handle reflects the change it just made.
//
// An absent entry still gets a handle (node == nil). Metadata accessors on
// an absent handle return defined defaults: Name falls back to the last
// path segment, OwnerName and GroupName are empty, LastModified and Size
// are zero, and IsDirectory is false.
//
// Mutation methods return a bare boolean. The adapter does not classify why
// a store refused an operation; the underlying error is logged and the
// outcome forwarded, leaving richer taxonomies to the store.
type File struct {
	identity Identity
	path     string
	node     *store.Node
	store    store.Store
}

func newFile(identity Identity, p string, node *store.Node, st store.Store) *File {
	return &File{
		identity: identity,
		path:     p,
		node:     node,
		store:    st,
	}
}

// AbsolutePath returns the normalized absolute path this handle is bound to.
func (f *File) AbsolutePath() string {
	return f.path
}

// Name returns the entry's name: the stored node name, or the last path
// segment if the entry is absent.
func (f *File) Name() string {
	if f.node != nil {
		return f.node.Name
	}
	return path.Base(f.path)
}

// IsHidden reports whether the entry is marked hidden.
func (f *File) IsHidden() bool {
	return f.node != nil && f.node.Hidden
}

// IsDirectory reports whether the entry is a directory.
func (f *File) IsDirectory() bool {
	return f.node != nil && f.node.Directory
}

// IsFile reports whether the entry is a regular file.
func (f *File) IsFile() bool {
	return !f.IsDirectory()
}

// Exists reports whether a node existed at the path when the handle was
// resolved.
func (f *File) Exists() bool {
	return f.node != nil
}

// Readable reports whether the entry can be read. Anything that exists is
// readable.
func (f *File) Readable() bool {
	return f.Exists()
}

// Writable reports whether the identity may write at this path: true
// exactly when the path lies under the identity's home directory. A pure
// path-prefix rule, no ACL behind it.
func (f *File) Writable() bool {
	return homePrefixed(f.path, f.identity.HomeDirectory())
}

// Removable reports whether the entry exists and may be removed by the
// identity.
func (f *File) Removable() bool {
	return f.Exists() && f.Writable()
}

// OwnerName returns the owning identity's name.
func (f *File) OwnerName() string {
	if f.node != nil {
		return f.node.Owner
	}
	return ""
}

// GroupName returns the owning group's name.
func (f *File) GroupName() string {
	if f.node != nil {
		return f.node.Group
	}
	return ""
}

// LinkCount returns 2 for directories and 1 for files, the fixed convention
// directory listings expect. Not a real hard-link count.
func (f *File) LinkCount() int {
	if f.IsDirectory() {
		return 2
	}
	return 1
}

// LastModified returns the modification time in milliseconds since the
// Unix epoch.
func (f *File) LastModified() int64 {
	if f.node != nil {
		return f.node.Modified
	}
	return 0
}

// Size returns the content length in bytes.
func (f *File) Size() int64 {
	if f.node != nil {
		return f.node.Size
	}
	return 0
}

// SetLastModified sets the entry's modification time and persists it.
//
// On success the held snapshot is updated too, so this handle reports the
// time it just wrote. Returns false for an absent entry or a store failure.
func (f *File) SetLastModified(ctx context.Context, millis int64) bool {
	logger.Debug("set last modified %s: %d", f.path, millis)

	if f.node == nil {
		return false
	}

	f.node.Modified = millis

	if err := f.store.SaveNode(ctx, f.path, f.node); err != nil {
		logger.Warn("set last modified %s: %v", f.path, err)
		return false
	}

	return true
}

// Mkdir creates a directory at this handle's path, owned by the identity.
//
// Pre-existing nodes are not checked here; overwrite-or-reject is the
// store's policy, and its verdict is forwarded as the boolean.
func (f *File) Mkdir(ctx context.Context) bool {
	logger.Debug("mkdir: %s", f.path)

	node := &store.Node{
		Name:      path.Base(f.path),
		Directory: true,
		Owner:     f.identity.Name(),
		Group:     f.identity.Name(),
		Modified:  store.NowMillis(),
	}

	if err := f.store.SaveNode(ctx, f.path, node); err != nil {
		logger.Warn("mkdir %s: %v", f.path, err)
		return false
	}

	return true
}

// Delete removes the entry at this handle's path.
//
// Deletion is not recursive; if the backend needs directory contents gone
// first, that is between it and the caller.
func (f *File) Delete(ctx context.Context) bool {
	logger.Debug("delete: %s", f.path)

	if err := f.store.DeleteNode(ctx, f.path); err != nil {
		logger.Warn("delete %s: %v", f.path, err)
		return false
	}

	return true
}

// MoveTo relocates the entry to the target handle's path.
//
// The only error is ErrNilTarget, a caller defect. Everything else is the
// store's verdict, forwarded as the boolean; atomicity is whatever the
// store provides, with no rollback attempted here.
func (f *File) MoveTo(ctx context.Context, target *File) (bool, error) {
	if target == nil {
		return false, ErrNilTarget
	}

	logger.Debug("move %s -> %s", f.path, target.path)

	if err := f.store.MoveNode(ctx, f.path, target.path); err != nil {
		logger.Warn("move %s -> %s: %v", f.path, target.path, err)
		return false, nil
	}

	return true, nil
}

// ListFiles returns handles for the entries directly under this path, one
// level deep. Order is unspecified; callers that need ordering sort.
func (f *File) ListFiles(ctx context.Context) ([]*File, error) {
	logger.Debug("list files: %s", f.path)

	nodes, err := f.store.ListChildren(ctx, f.path)
	if err != nil {
		return nil, fmt.Errorf("list children %s: %w", f.path, err)
	}

	files := make([]*File, 0, len(nodes))
	for _, node := range nodes {
		files = append(files, newFile(f.identity, path.Join(f.path, node.Name), node, f.store))
	}

	return files, nil
}

// OpenWriter opens a buffered write stream for this entry at offset 0.
//
// An absent entry is first materialized as a file node owned by the
// identity; metadata existence must precede content existence so a
// concurrent lister never sees content without a node. The previous
// content, if any, is fully replaced once the returned writer is closed —
// close, not byte-write, is the durability boundary, so the caller must
// close on every exit path.
func (f *File) OpenWriter(ctx context.Context, offset int64) (io.WriteCloser, error) {
	logger.Debug("open writer %s: offset %d", f.path, offset)

	if offset != 0 {
		return nil, &UnsupportedOffsetError{Offset: offset}
	}

	if f.node == nil {
		node := &store.Node{
			Name:     path.Base(f.path),
			Owner:    f.identity.Name(),
			Group:    f.identity.Name(),
			Modified: store.NowMillis(),
		}

		if err := f.store.SaveNode(ctx, f.path, node); err != nil {
			return nil, fmt.Errorf("create file %s: %w", f.path, err)
		}

		f.node = node
	}

	w, err := f.store.OpenWriteStream(ctx, f.path)
	if err != nil {
		return nil, fmt.Errorf("open write stream %s: %w", f.path, err)
	}

	return newBufferedWriter(w), nil
}

// OpenReader opens a buffered read stream for this entry at offset 0.
//
// Behavior for an absent entry is store-defined; callers check Exists
// first. I/O errors from the store's stream propagate unchanged.
func (f *File) OpenReader(ctx context.Context, offset int64) (io.ReadCloser, error) {
	logger.Debug("open reader %s: offset %d", f.path, offset)

	if offset != 0 {
		return nil, &UnsupportedOffsetError{Offset: offset}
	}

	r, err := f.store.OpenReadStream(ctx, f.path)
	if err != nil {
		return nil, fmt.Errorf("open read stream %s: %w", f.path, err)
	}

	return newBufferedReader(r), nil
}
