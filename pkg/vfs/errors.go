package vfs

import (
	"errors"
	"fmt"
)

// Argument errors are caller programming defects: they are reported
// immediately and are not recoverable within the adapter. Store-reported
// mutation failures, by contrast, surface as plain false returns on the
// File mutation methods (see File).
var (
	// ErrNilIdentity reports a nil identity passed to a constructor.
	ErrNilIdentity = errors.New("identity is nil")

	// ErrNilStore reports a nil store passed to a constructor.
	ErrNilStore = errors.New("store is nil")

	// ErrNilTarget reports a nil target handle passed to File.MoveTo.
	ErrNilTarget = errors.New("target file is nil")

	// ErrEmptyPath reports an empty path at the resolution boundary.
	ErrEmptyPath = errors.New("path is empty")
)

// UnsupportedOffsetError reports a stream request at a non-zero offset.
// The adapter supports neither resumed uploads nor ranged downloads; the
// protocol layer translates this into the appropriate protocol rejection.
type UnsupportedOffsetError struct {
	Offset int64
}

func (e *UnsupportedOffsetError) Error() string {
	return fmt.Sprintf("unsupported stream offset %d: only offset 0 is supported", e.Offset)
}
