package badger

import (
	"errors"
	"fmt"
	"io"
	"path"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// Content streaming
// =================
//
// A write stream never touches the node's current content. Chunks are
// written under a fresh content ID as bytes arrive; Close swaps the node
// record over to the new content ID (updating size and modified time) and
// only then drops the replaced chunks. Readers therefore see either the old
// content or the new content in full, never a mix — close is the
// durability boundary, exactly as the adapter above promises its callers.

// chunkWriter accumulates bytes and flushes fixed-size chunks, each in its
// own transaction to stay under badger's transaction size limits.
type chunkWriter struct {
	db        *badger.DB
	path      string
	contentID string

	buf    []byte
	index  int
	total  int64
	closed bool
	err    error
}

func newChunkWriter(db *badger.DB, p string) *chunkWriter {
	return &chunkWriter{
		db:        db,
		path:      p,
		contentID: uuid.NewString(),
	}
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, fmt.Errorf("write %s: stream is closed", w.path)
	}

	w.buf = append(w.buf, p...)
	w.total += int64(len(p))

	for len(w.buf) >= chunkSize {
		if err := w.flushChunk(w.buf[:chunkSize]); err != nil {
			w.err = err
			return 0, err
		}
		w.buf = w.buf[chunkSize:]
	}

	return len(p), nil
}

func (w *chunkWriter) flushChunk(chunk []byte) error {
	index := w.index
	w.index++

	err := w.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyChunk(w.contentID, index), chunk)
	})
	if err != nil {
		return fmt.Errorf("write chunk %d of %s: %w", index, w.contentID, err)
	}

	return nil
}

// Close flushes the final partial chunk and commits the node record over to
// the new content. If the node was deleted while the stream was open, the
// new chunks are discarded instead.
func (w *chunkWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.err != nil {
		_ = w.db.DropPrefix(keyChunkPrefix(w.contentID))
		return w.err
	}

	if len(w.buf) > 0 {
		if err := w.flushChunk(w.buf); err != nil {
			_ = w.db.DropPrefix(keyChunkPrefix(w.contentID))
			return err
		}
	}

	var oldContentID string
	deleted := false

	err := w.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, w.path)
		if err != nil {
			return err
		}
		if node == nil {
			deleted = true
			return nil
		}

		oldContentID = node.ContentID
		node.ContentID = w.contentID
		node.Size = w.total
		node.Modified = store.NowMillis()

		data, err := encodeNode(node)
		if err != nil {
			return err
		}

		if err := txn.Set(keyNode(w.path), data); err != nil {
			return err
		}
		if w.path != "/" {
			return txn.Set(keyChild(path.Dir(w.path), node.Name), []byte(w.path))
		}
		return nil
	})
	if err != nil {
		_ = w.db.DropPrefix(keyChunkPrefix(w.contentID))
		return fmt.Errorf("finalize write %s: %w", w.path, err)
	}

	if deleted {
		return w.db.DropPrefix(keyChunkPrefix(w.contentID))
	}

	if oldContentID != "" && oldContentID != w.contentID {
		if err := w.db.DropPrefix(keyChunkPrefix(oldContentID)); err != nil {
			return fmt.Errorf("drop replaced content %s: %w", oldContentID, err)
		}
	}

	return nil
}

// chunkReader walks the content chunks in index order. An empty content ID
// or a missing first chunk both read as end-of-stream.
type chunkReader struct {
	db        *badger.DB
	contentID string

	index  int
	buf    []byte
	eof    bool
	closed bool
}

func newChunkReader(db *badger.DB, contentID string) *chunkReader {
	return &chunkReader{
		db:        db,
		contentID: contentID,
		eof:       contentID == "",
	}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, fmt.Errorf("read %s: stream is closed", r.contentID)
	}

	for len(r.buf) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		if err := r.loadChunk(); err != nil {
			return 0, err
		}
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

func (r *chunkReader) loadChunk() error {
	index := r.index
	r.index++

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyChunk(r.contentID, index))
		if errors.Is(err, badger.ErrKeyNotFound) {
			r.eof = true
			return nil
		}
		if err != nil {
			return err
		}

		r.buf, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("read chunk %d of %s: %w", index, r.contentID, err)
	}

	return nil
}

func (r *chunkReader) Close() error {
	r.closed = true
	return nil
}
