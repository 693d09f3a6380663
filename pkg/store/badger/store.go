// Package badger implements a persistent backing store on BadgerDB.
//
// Node records, a child index for one-level listings, and fixed-size
// content chunks live in one embedded database under prefixed key
// namespaces (see keys.go). Suitable when metadata and content must survive
// restarts without an external service.
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// chunkSize is the fixed content chunk length. 1 MiB keeps individual
// transactions small while bounding per-stream key counts.
const chunkSize = 1 << 20

// Options configures the badger store.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs the database without disk persistence. Used by tests.
	InMemory bool
}

// BadgerStore implements store.Store on an embedded BadgerDB database.
//
// Thread safety comes from badger's MVCC transactions: reads run in View
// transactions, every mutation in a single Update transaction, which also
// makes MoveNode atomic.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (creating if needed) the database and returns the
// store. The caller owns the store's lifecycle and must Close it.
func NewBadgerStore(ctx context.Context, opts Options) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger database at %s: %w", opts.Path, err)
	}

	return &BadgerStore{db: db}, nil
}

// Close releases the database. Open streams must be closed first.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// GetNode returns the node at the given path, or (nil, nil) if absent.
func (s *BadgerStore) GetNode(ctx context.Context, p string) (*store.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var node *store.Node

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		node, err = getNode(txn, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", p, err)
	}

	return node, nil
}

// SaveNode creates or updates the node record and its child-index entry in
// one transaction. Store-derived fields (ContentID, Size) are preserved for
// existing nodes; a new file node gets a fresh content ID.
func (s *BadgerStore) SaveNode(ctx context.Context, p string, node *store.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("save %s: node is nil", p)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := getNode(txn, p)
		if err != nil {
			return err
		}

		saved := node.Clone()

		if existing != nil {
			if existing.Directory != saved.Directory {
				return store.ErrExists
			}
			saved.ContentID = existing.ContentID
			saved.Size = existing.Size
		} else if !saved.Directory {
			saved.ContentID = uuid.NewString()
			saved.Size = 0
		}

		data, err := encodeNode(saved)
		if err != nil {
			return err
		}

		if err := txn.Set(keyNode(p), data); err != nil {
			return err
		}

		if p != "/" {
			return txn.Set(keyChild(path.Dir(p), saved.Name), []byte(p))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save node %s: %w", p, err)
	}

	return nil
}

// DeleteNode removes the node record and child-index entry, then drops the
// node's content chunks. Returns ErrNotFound for an absent path.
func (s *BadgerStore) DeleteNode(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var contentID string

	err := s.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, p)
		if err != nil {
			return err
		}
		if node == nil {
			return store.ErrNotFound
		}

		contentID = node.ContentID

		if err := txn.Delete(keyNode(p)); err != nil {
			return err
		}

		if p != "/" {
			return txn.Delete(keyChild(path.Dir(p), node.Name))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete node %s: %w", p, err)
	}

	// Chunk removal runs outside the transaction: a large file's chunk
	// count can exceed badger's transaction limits, and DropPrefix batches
	// the deletes safely. Orphaned chunks after a crash here are garbage,
	// not corruption.
	if contentID != "" {
		if err := s.db.DropPrefix(keyChunkPrefix(contentID)); err != nil {
			return fmt.Errorf("delete content %s: %w", contentID, err)
		}
	}

	return nil
}

// MoveNode relocates the node record and re-links the child index in a
// single transaction, making the move atomic. Content chunks stay where
// they are; the content ID moves with the record.
func (s *BadgerStore) MoveNode(ctx context.Context, fromPath, toPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, fromPath)
		if err != nil {
			return err
		}
		if node == nil {
			return store.ErrNotFound
		}

		oldName := node.Name
		node.Name = path.Base(toPath)

		data, err := encodeNode(node)
		if err != nil {
			return err
		}

		if err := txn.Set(keyNode(toPath), data); err != nil {
			return err
		}
		if toPath != "/" {
			if err := txn.Set(keyChild(path.Dir(toPath), node.Name), []byte(toPath)); err != nil {
				return err
			}
		}

		if err := txn.Delete(keyNode(fromPath)); err != nil {
			return err
		}
		if fromPath != "/" {
			return txn.Delete(keyChild(path.Dir(fromPath), oldName))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("move node %s -> %s: %w", fromPath, toPath, err)
	}

	return nil
}

// ListChildren scans the child index one level under the given directory
// path and returns the child node records.
func (s *BadgerStore) ListChildren(ctx context.Context, p string) ([]*store.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var children []*store.Node

	err := s.db.View(func(txn *badger.Txn) error {
		node, err := getNode(txn, p)
		if err != nil {
			return err
		}
		if node == nil {
			return store.ErrNotFound
		}
		if !node.Directory {
			return store.ErrNotDirectory
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyChildPrefix(p)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			childPath, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			child, err := getNode(txn, string(childPath))
			if err != nil {
				return err
			}
			if child != nil {
				children = append(children, child)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list children %s: %w", p, err)
	}

	return children, nil
}

// OpenWriteStream returns a chunked writer for the file node at the given
// path. See io.go for the replace-on-close contract.
func (s *BadgerStore) OpenWriteStream(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node, err := s.GetNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrIsDirectory)
	}

	return newChunkWriter(s.db, p), nil
}

// OpenReadStream returns a sequential reader over the node's content
// chunks. A never-written file reads as empty.
func (s *BadgerStore) OpenReadStream(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node, err := s.GetNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDirectory)
	}

	return newChunkReader(s.db, node.ContentID), nil
}

// getNode reads and decodes a node record inside an open transaction,
// mapping badger's key-not-found to the store's nil-means-absent contract.
func getNode(txn *badger.Txn, p string) (*store.Node, error) {
	item, err := txn.Get(keyNode(p))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	return decodeNode(data)
}
