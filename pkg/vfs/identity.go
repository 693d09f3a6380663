// Package vfs adapts a path-addressed backing store to the hierarchical
// filesystem view an FTP protocol server expects.
//
// The protocol server is an external collaborator: it parses commands,
// authenticates users and owns the wire. For each authenticated identity it
// asks the Factory for a View, then drives every filesystem command through
// that View and the File handles it resolves. The adapter translates those
// calls into the narrow store contract in pkg/store:
//
//	protocol server -> Factory -> View -> File -> store.Store
//
// No state crosses calls except the View's working directory.
package vfs

// Identity is the authenticated-user contract consumed from the protocol
// server. The adapter never mutates it; it only reads the name (used as
// owner/group on created nodes) and the home directory (the root of the
// identity's writable subtree).
type Identity interface {
	// Name returns the identity's login name.
	Name() string

	// HomeDirectory returns the identity's absolute home path.
	HomeDirectory() string
}
