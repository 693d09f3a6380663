package vfs

import (
	"context"
	"fmt"
	"path"

	"github.com/adrianwalker/ftpserver-filesystem/internal/logger"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// View is one identity's session-scoped window onto the store: it owns the
// session's working directory and resolves paths into File handles.
//
// A View is created per connected session by the Factory and discarded when
// the session ends; the working directory does not persist across sessions.
// The protocol server serializes commands within a session, so a View does
// no internal locking and must not be shared across goroutines.
type View struct {
	identity Identity
	store    store.Store

	home       string
	workingDir string
}

func newView(identity Identity, st store.Store) (*View, error) {
	if identity == nil {
		return nil, ErrNilIdentity
	}
	if st == nil {
		return nil, ErrNilStore
	}

	home := path.Clean(identity.HomeDirectory())

	return &View{
		identity:   identity,
		store:      st,
		home:       home,
		workingDir: home,
	}, nil
}

// HomeDirectory returns a handle for the identity's home directory,
// creating the directory if it does not exist yet.
//
// The self-healing matters: a new identity's first login must not fail
// because no entry was ever stored for its home. The create policy (a
// directory owned by the identity) lives here, in the adapter, so it stays
// visible and testable rather than hidden inside a store.
func (v *View) HomeDirectory(ctx context.Context) (*File, error) {
	logger.Debug("home directory: %s", v.home)

	file, err := v.File(ctx, v.home)
	if err != nil {
		return nil, err
	}

	if !file.Exists() {
		return v.createDirectory(ctx, file.AbsolutePath())
	}

	return file, nil
}

// WorkingDirectory returns a handle for the session's current working
// directory, re-creating it if it was deleted externally mid-session.
func (v *View) WorkingDirectory(ctx context.Context) (*File, error) {
	logger.Debug("working directory: %s", v.workingDir)

	file, err := v.File(ctx, v.workingDir)
	if err != nil {
		return nil, err
	}

	if !file.Exists() {
		return v.createDirectory(ctx, file.AbsolutePath())
	}

	return file, nil
}

// ChangeWorkingDirectory resolves dir and, if a node exists there, makes it
// the session's working directory.
//
// Whether changing into a file makes sense is the protocol layer's call;
// the adapter only checks existence. On failure the working directory is
// left exactly as it was.
func (v *View) ChangeWorkingDirectory(ctx context.Context, dir string) (bool, error) {
	logger.Debug("change working directory: %s", dir)

	file, err := v.File(ctx, dir)
	if err != nil {
		return false, err
	}

	if !file.Exists() {
		return false, nil
	}

	v.workingDir = file.AbsolutePath()

	return true, nil
}

// File resolves name against the working directory and returns a handle for
// the result.
//
// A handle is always returned, present or not: callers probe existence via
// File.Exists before deciding whether to create. Only an empty name or a
// store failure produce an error.
func (v *View) File(ctx context.Context, name string) (*File, error) {
	logger.Debug("file: %s", name)

	p, err := Resolve(v.workingDir, name)
	if err != nil {
		return nil, err
	}

	node, err := v.store.GetNode(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", p, err)
	}

	return newFile(v.identity, p, node, v.store), nil
}

// RandomAccessible reports whether streams may be opened at non-zero
// offsets. Always false: the store bridge is sequential-only.
func (v *View) RandomAccessible() bool {
	return false
}

// Dispose releases session-held resources. The view holds none (the store
// connection is managed by whoever built the store), so this is a no-op,
// kept for symmetry with the protocol server's session lifecycle.
func (v *View) Dispose() {
}

func (v *View) createDirectory(ctx context.Context, p string) (*File, error) {
	node := &store.Node{
		Name:      path.Base(p),
		Directory: true,
		Owner:     v.identity.Name(),
		Group:     v.identity.Name(),
		Modified:  store.NowMillis(),
	}

	if err := v.store.SaveNode(ctx, p, node); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", p, err)
	}

	return newFile(v.identity, p, node, v.store), nil
}
