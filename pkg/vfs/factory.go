package vfs

import (
	"github.com/adrianwalker/ftpserver-filesystem/internal/logger"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// Factory builds one View per authenticated identity. It is the single
// entry point the protocol server calls, and the only place the store is
// injected into the adapter.
type Factory struct {
	store store.Store
}

// NewFactory creates a view factory over the given store.
// A nil store is a caller defect and fails immediately with ErrNilStore.
func NewFactory(st store.Store) (*Factory, error) {
	if st == nil {
		return nil, ErrNilStore
	}

	return &Factory{store: st}, nil
}

// CreateView creates a session view for the given identity, with the
// working directory initialized to the identity's home directory.
// A nil identity fails with ErrNilIdentity.
func (f *Factory) CreateView(identity Identity) (*View, error) {
	if identity == nil {
		return nil, ErrNilIdentity
	}

	logger.Debug("create view: %s", identity.Name())

	return newView(identity, f.store)
}
