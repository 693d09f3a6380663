// Package memory implements an in-memory backing store.
//
// All node records and content live in maps guarded by a single RWMutex.
// It is the reference implementation of the store contract and the substrate
// the adapter tests run against:
//   - Fast: all operations are memory-speed
//   - Volatile: data is lost on restart
//   - Thread-safe: multiple readers, exclusive writers
//
// Nodes are cloned on the way in and out so a caller-held snapshot never
// aliases the stored record.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// MemoryStore implements store.Store backed by process memory.
type MemoryStore struct {
	mu sync.RWMutex

	// nodes maps absolute path -> node record
	nodes map[string]*store.Node

	// content maps ContentID -> content bytes
	content map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(ctx context.Context) (*MemoryStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &MemoryStore{
		nodes:   make(map[string]*store.Node),
		content: make(map[string][]byte),
	}, nil
}

// GetNode returns a copy of the node at the given path, or (nil, nil) if the
// path is absent.
func (s *MemoryStore) GetNode(ctx context.Context, p string) (*store.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nodes[p].Clone(), nil
}

// SaveNode creates or updates the node at the given path.
//
// The stored ContentID and Size always win over caller-supplied values for
// an existing node; a brand-new file node is assigned a fresh ContentID.
func (s *MemoryStore) SaveNode(ctx context.Context, p string, node *store.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("save %s: node is nil", p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := node.Clone()

	existing, exists := s.nodes[p]
	if exists {
		if existing.Directory != saved.Directory {
			return fmt.Errorf("save %s: %w", p, store.ErrExists)
		}
		saved.ContentID = existing.ContentID
		saved.Size = existing.Size
	} else if !saved.Directory {
		saved.ContentID = uuid.NewString()
		saved.Size = 0
	}

	s.nodes[p] = saved

	return nil
}

// DeleteNode removes the node at the given path and its content.
//
// Deleting an absent path returns ErrNotFound so callers can report the
// outcome accurately. Directory deletion removes only the directory record.
func (s *MemoryStore) DeleteNode(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[p]
	if !exists {
		return fmt.Errorf("delete %s: %w", p, store.ErrNotFound)
	}

	delete(s.nodes, p)
	if node.ContentID != "" {
		delete(s.content, node.ContentID)
	}

	return nil
}

// MoveNode relocates the node record; its content travels via ContentID.
// The whole move happens under one lock, so it is atomic.
func (s *MemoryStore) MoveNode(ctx context.Context, fromPath, toPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[fromPath]
	if !exists {
		return fmt.Errorf("move %s: %w", fromPath, store.ErrNotFound)
	}

	moved := node.Clone()
	moved.Name = path.Base(toPath)

	s.nodes[toPath] = moved
	delete(s.nodes, fromPath)

	return nil
}

// ListChildren returns copies of the nodes directly under the given
// directory path. Map iteration order makes the result order unspecified.
func (s *MemoryStore) ListChildren(ctx context.Context, p string) ([]*store.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[p]
	if !exists {
		return nil, fmt.Errorf("list %s: %w", p, store.ErrNotFound)
	}
	if !node.Directory {
		return nil, fmt.Errorf("list %s: %w", p, store.ErrNotDirectory)
	}

	var children []*store.Node
	for childPath, child := range s.nodes {
		if childPath != p && path.Dir(childPath) == p {
			children = append(children, child.Clone())
		}
	}

	return children, nil
}

// OpenWriteStream returns a writer that buffers content for the file node at
// the given path and installs it atomically on Close.
func (s *MemoryStore) OpenWriteStream(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	node, exists := s.nodes[p]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrIsDirectory)
	}

	return &memoryWriter{store: s, path: p}, nil
}

// OpenReadStream returns a reader over a copy of the node's content.
// A file that has never been written reads as empty.
func (s *MemoryStore) OpenReadStream(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[p]
	if !exists {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDirectory)
	}

	data := s.content[node.ContentID]
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	return io.NopCloser(bytes.NewReader(dataCopy)), nil
}

// memoryWriter accumulates content bytes and commits them on Close.
// Until Close, readers continue to see the previous content.
type memoryWriter struct {
	store  *MemoryStore
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write %s: stream is closed", w.path)
	}
	return w.buf.Write(p)
}

// Close installs the buffered content as the node's new content and updates
// the node's size and modified time. Close is the durability boundary.
func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	node, exists := w.store.nodes[w.path]
	if !exists {
		// Node deleted while the stream was open: drop the content.
		return nil
	}

	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())

	w.store.content[node.ContentID] = data
	node.Size = int64(len(data))
	node.Modified = store.NowMillis()

	return nil
}
