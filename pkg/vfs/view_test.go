package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/store/memory"
)

// testIdentity is the minimal identity fixture used across the vfs tests.
type testIdentity struct {
	name string
	home string
}

func (i *testIdentity) Name() string          { return i.name }
func (i *testIdentity) HomeDirectory() string { return i.home }

func alice() *testIdentity {
	return &testIdentity{name: "alice", home: "/alice"}
}

func newTestView(t *testing.T) (*View, store.Store) {
	t.Helper()

	st, err := memory.NewMemoryStore(context.Background())
	require.NoError(t, err)

	factory, err := NewFactory(st)
	require.NoError(t, err)

	view, err := factory.CreateView(alice())
	require.NoError(t, err)

	return view, st
}

func TestNewFactory_NilStore(t *testing.T) {
	_, err := NewFactory(nil)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestCreateView_NilIdentity(t *testing.T) {
	st, err := memory.NewMemoryStore(context.Background())
	require.NoError(t, err)

	factory, err := NewFactory(st)
	require.NoError(t, err)

	_, err = factory.CreateView(nil)
	assert.ErrorIs(t, err, ErrNilIdentity)
}

func TestView_HomeDirectoryCreatedOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	home, err := view.HomeDirectory(ctx)
	require.NoError(t, err)

	assert.True(t, home.Exists())
	assert.True(t, home.IsDirectory())
	assert.Equal(t, "/alice", home.AbsolutePath())
	assert.Equal(t, "alice", home.OwnerName())

	// The directory was persisted, not just reported.
	node, err := st.GetNode(ctx, "/alice")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.True(t, node.Directory)
}

func TestView_HomeDirectoryExisting(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	existing := &store.Node{
		Name:      "alice",
		Directory: true,
		Owner:     "provisioner",
		Modified:  1000,
	}
	require.NoError(t, st.SaveNode(ctx, "/alice", existing))

	home, err := view.HomeDirectory(ctx)
	require.NoError(t, err)

	// An existing home is returned as stored, not re-created.
	assert.Equal(t, "provisioner", home.OwnerName())
	assert.Equal(t, int64(1000), home.LastModified())
}

func TestView_HomeDirectoryCleaned(t *testing.T) {
	ctx := context.Background()

	st, err := memory.NewMemoryStore(ctx)
	require.NoError(t, err)

	factory, err := NewFactory(st)
	require.NoError(t, err)

	view, err := factory.CreateView(&testIdentity{name: "bob", home: "/bob/"})
	require.NoError(t, err)

	home, err := view.HomeDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/bob", home.AbsolutePath())
}

func TestView_WorkingDirectoryStartsAtHome(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	wd, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/alice", wd.AbsolutePath())
	assert.True(t, wd.Exists())
}

func TestView_WorkingDirectoryRecreatedAfterExternalDelete(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	_, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)

	// Another session removes the directory out from under this one.
	require.NoError(t, st.DeleteNode(ctx, "/alice"))

	wd, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)
	assert.True(t, wd.Exists())
	assert.True(t, wd.IsDirectory())
}

func TestView_ChangeWorkingDirectory(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice", &store.Node{
		Name: "alice", Directory: true, Modified: store.NowMillis(),
	}))
	require.NoError(t, st.SaveNode(ctx, "/alice/docs", &store.Node{
		Name: "docs", Directory: true, Modified: store.NowMillis(),
	}))

	ok, err := view.ChangeWorkingDirectory(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, ok)

	wd, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/alice/docs", wd.AbsolutePath())

	// Relative climb back up.
	ok, err = view.ChangeWorkingDirectory(ctx, "..")
	require.NoError(t, err)
	assert.True(t, ok)

	wd, err = view.WorkingDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/alice", wd.AbsolutePath())
}

func TestView_ChangeWorkingDirectoryAbsent(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	ok, err := view.ChangeWorkingDirectory(ctx, "no-such-dir")
	require.NoError(t, err)
	assert.False(t, ok)

	// The working directory is untouched on failure.
	wd, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/alice", wd.AbsolutePath())
}

func TestView_FileReturnsHandleForAbsentPath(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)
	require.NotNil(t, file)

	assert.False(t, file.Exists())
	assert.Equal(t, "/alice/ghost.txt", file.AbsolutePath())
	assert.Equal(t, "ghost.txt", file.Name())
}

func TestView_FileEmptyName(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	_, err := view.File(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestView_RandomAccessible(t *testing.T) {
	view, _ := newTestView(t)

	assert.False(t, view.RandomAccessible())
}
