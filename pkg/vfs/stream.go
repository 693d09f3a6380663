package vfs

import (
	"bufio"
	"io"
)

// The adapter buffers both stream directions so protocol-driven byte-at-a-
// time I/O does not hit the store per call. Buffering adds no semantics:
// errors from the underlying store streams propagate unchanged.

type bufferedWriter struct {
	*bufio.Writer
	inner io.WriteCloser
}

func newBufferedWriter(w io.WriteCloser) io.WriteCloser {
	return &bufferedWriter{
		Writer: bufio.NewWriter(w),
		inner:  w,
	}
}

// Close flushes buffered bytes and closes the store stream. The store
// stream's close finalizes storage, so it runs even when the flush fails;
// the first error wins.
func (w *bufferedWriter) Close() error {
	flushErr := w.Flush()
	closeErr := w.inner.Close()

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

type bufferedReader struct {
	*bufio.Reader
	inner io.ReadCloser
}

func newBufferedReader(r io.ReadCloser) io.ReadCloser {
	return &bufferedReader{
		Reader: bufio.NewReader(r),
		inner:  r,
	}
}

func (r *bufferedReader) Close() error {
	return r.inner.Close()
}
