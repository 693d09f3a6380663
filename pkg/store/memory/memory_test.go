package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
	storetesting "github.com/adrianwalker/ftpserver-filesystem/pkg/store/testing"
)

func TestMemoryStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			st, err := NewMemoryStore(context.Background())
			require.NoError(t, err)
			return st
		},
	}
	suite.Run(t)
}

// Returned nodes are copies; mutating one must not leak into the store.
func TestMemoryStore_GetNodeReturnsCopy(t *testing.T) {
	ctx := context.Background()

	st, err := NewMemoryStore(ctx)
	require.NoError(t, err)

	original := &store.Node{Name: "file.txt", Owner: "alice", Modified: store.NowMillis()}
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", original))

	first, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	first.Owner = "mallory"

	second, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.Owner)
}

// Saved nodes are copied in; the caller's struct stays independent.
func TestMemoryStore_SaveNodeCopiesInput(t *testing.T) {
	ctx := context.Background()

	st, err := NewMemoryStore(ctx)
	require.NoError(t, err)

	node := &store.Node{Name: "file.txt", Owner: "alice", Modified: store.NowMillis()}
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", node))

	node.Owner = "mallory"

	stored, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)
}

func TestMemoryStore_SaveNodeNil(t *testing.T) {
	ctx := context.Background()

	st, err := NewMemoryStore(ctx)
	require.NoError(t, err)

	err = st.SaveNode(ctx, "/alice/file.txt", nil)
	assert.Error(t, err)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	st, err := NewMemoryStore(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.GetNode(ctx, "/alice/file.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
