package badger

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
	storetesting "github.com/adrianwalker/ftpserver-filesystem/pkg/store/testing"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()

	st, err := NewBadgerStore(context.Background(), Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func TestBadgerStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			return newTestStore(t)
		},
	}
	suite.Run(t)
}

// Data written through one store handle must survive a close and reopen of
// the same database directory.
func TestBadgerStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := NewBadgerStore(ctx, Options{Path: dir})
	require.NoError(t, err)

	node := &store.Node{Name: "file.txt", Owner: "alice", Modified: store.NowMillis()}
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", node))

	w, err := st.OpenWriteStream(ctx, "/alice/file.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("durable bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, st.Close())

	reopened, err := NewBadgerStore(ctx, Options{Path: dir})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	restored, err := reopened.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "alice", restored.Owner)
	assert.Equal(t, int64(13), restored.Size)

	r, err := reopened.OpenReadStream(ctx, "/alice/file.txt")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 32)
	n, _ := r.Read(buf)
	assert.Equal(t, "durable bytes", string(buf[:n]))
}

// Overwriting a file must not leave the replaced content's chunks behind.
func TestBadgerStore_OverwriteDropsOldChunks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	node := &store.Node{Name: "file.txt", Modified: store.NowMillis()}
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", node))

	write := func(data []byte) {
		w, err := st.OpenWriteStream(ctx, "/alice/file.txt")
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	write(make([]byte, 3*chunkSize))
	first, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)

	write([]byte("tiny"))
	second, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first.ContentID, second.ContentID, "overwrite allocates a fresh content ID")
	assert.Equal(t, 0, countChunks(t, st, first.ContentID), "replaced chunks are dropped")
	assert.Equal(t, 1, countChunks(t, st, second.ContentID))
}

func TestBadgerStore_DeleteDropsChunks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	node := &store.Node{Name: "file.txt", Modified: store.NowMillis()}
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", node))

	w, err := st.OpenWriteStream(ctx, "/alice/file.txt")
	require.NoError(t, err)
	_, err = w.Write(make([]byte, 2*chunkSize))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	saved, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)

	require.NoError(t, st.DeleteNode(ctx, "/alice/file.txt"))

	assert.Equal(t, 0, countChunks(t, st, saved.ContentID))
}

// countChunks scans the chunk keyspace for a content ID.
func countChunks(t *testing.T, st *BadgerStore, contentID string) int {
	t.Helper()

	count := 0
	err := st.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyChunkPrefix(contentID)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	require.NoError(t, err)

	return count
}
