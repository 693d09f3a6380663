package vfs

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

func TestFile_AbsentDefaults(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)

	assert.False(t, file.Exists())
	assert.Equal(t, "ghost.txt", file.Name())
	assert.False(t, file.IsDirectory())
	assert.True(t, file.IsFile())
	assert.False(t, file.IsHidden())
	assert.False(t, file.Readable())
	assert.Equal(t, "", file.OwnerName())
	assert.Equal(t, "", file.GroupName())
	assert.Equal(t, int64(0), file.LastModified())
	assert.Equal(t, int64(0), file.Size())
	assert.Equal(t, 1, file.LinkCount())
}

func TestFile_Writable(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"inside home", "/alice/file.txt", true},
		{"home itself", "/alice", true},
		{"nested inside home", "/alice/docs/deep/file.txt", true},
		{"outside home", "/bob/file.txt", false},
		{"root", "/", false},
		// The rule is byte-wise, not segment-wise.
		{"sibling sharing the prefix", "/alicefoo/file.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := view.File(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, file.Writable())
		})
	}
}

func TestFile_Removable(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", &store.Node{
		Name: "file.txt", Modified: store.NowMillis(),
	}))
	require.NoError(t, st.SaveNode(ctx, "/bob", &store.Node{
		Name: "bob", Directory: true, Modified: store.NowMillis(),
	}))

	existing, err := view.File(ctx, "file.txt")
	require.NoError(t, err)
	assert.True(t, existing.Removable())

	absent, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)
	assert.False(t, absent.Removable(), "absent entries are not removable")

	foreign, err := view.File(ctx, "/bob")
	require.NoError(t, err)
	assert.False(t, foreign.Removable(), "entries outside home are not removable")
}

func TestFile_LinkCount(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/docs", &store.Node{
		Name: "docs", Directory: true, Modified: store.NowMillis(),
	}))

	dir, err := view.File(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, dir.LinkCount())
}

func TestFile_SetLastModified(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", &store.Node{
		Name: "file.txt", Modified: 1000,
	}))

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	ok := file.SetLastModified(ctx, 2000)
	assert.True(t, ok)

	// The handle reflects the time it just wrote.
	assert.Equal(t, int64(2000), file.LastModified())

	// And so does the store.
	node, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, int64(2000), node.Modified)
}

func TestFile_SetLastModifiedAbsent(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)

	assert.False(t, file.SetLastModified(ctx, 2000))
}

func TestFile_Mkdir(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	file, err := view.File(ctx, "docs")
	require.NoError(t, err)

	assert.True(t, file.Mkdir(ctx))

	node, err := st.GetNode(ctx, "/alice/docs")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.True(t, node.Directory)
	assert.Equal(t, "alice", node.Owner)
}

func TestFile_MkdirOverFile(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/thing", &store.Node{
		Name: "thing", Modified: store.NowMillis(),
	}))

	file, err := view.File(ctx, "thing")
	require.NoError(t, err)

	assert.False(t, file.Mkdir(ctx), "a path's kind is fixed once materialized")
}

func TestFile_Delete(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", &store.Node{
		Name: "file.txt", Modified: store.NowMillis(),
	}))

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	assert.True(t, file.Delete(ctx))

	node, err := st.GetNode(ctx, "/alice/file.txt")
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestFile_DeleteAbsent(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)

	assert.False(t, file.Delete(ctx))
}

func TestFile_MoveTo(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/old.txt", &store.Node{
		Name: "old.txt", Modified: store.NowMillis(),
	}))

	source, err := view.File(ctx, "old.txt")
	require.NoError(t, err)
	target, err := view.File(ctx, "new.txt")
	require.NoError(t, err)

	ok, err := source.MoveTo(ctx, target)
	require.NoError(t, err)
	assert.True(t, ok)

	node, err := st.GetNode(ctx, "/alice/new.txt")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "new.txt", node.Name)

	gone, err := st.GetNode(ctx, "/alice/old.txt")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestFile_MoveToNilTarget(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	_, err = file.MoveTo(ctx, nil)
	assert.ErrorIs(t, err, ErrNilTarget)
}

func TestFile_MoveToAbsentSource(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	source, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)
	target, err := view.File(ctx, "new.txt")
	require.NoError(t, err)

	// A store refusal is an outcome, not an error.
	ok, err := source.MoveTo(ctx, target)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile_ListFiles(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice", &store.Node{
		Name: "alice", Directory: true, Modified: store.NowMillis(),
	}))
	require.NoError(t, st.SaveNode(ctx, "/alice/docs", &store.Node{
		Name: "docs", Directory: true, Modified: store.NowMillis(),
	}))
	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", &store.Node{
		Name: "file.txt", Modified: store.NowMillis(),
	}))

	dir, err := view.WorkingDirectory(ctx)
	require.NoError(t, err)

	files, err := dir.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)

	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	assert.Equal(t, "docs", files[0].Name())
	assert.Equal(t, "/alice/docs", files[0].AbsolutePath())
	assert.True(t, files[0].IsDirectory())

	assert.Equal(t, "file.txt", files[1].Name())
	assert.Equal(t, "/alice/file.txt", files[1].AbsolutePath())
	assert.True(t, files[1].IsFile())
}

func TestFile_ListFilesNotDirectory(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	require.NoError(t, st.SaveNode(ctx, "/alice/file.txt", &store.Node{
		Name: "file.txt", Modified: store.NowMillis(),
	}))

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	_, err = file.ListFiles(ctx)
	assert.ErrorIs(t, err, store.ErrNotDirectory)
}

func TestFile_OpenWriterCreatesAbsentFile(t *testing.T) {
	ctx := context.Background()
	view, st := newTestView(t)

	file, err := view.File(ctx, "fresh.txt")
	require.NoError(t, err)
	require.False(t, file.Exists())

	w, err := file.OpenWriter(ctx, 0)
	require.NoError(t, err)

	// Metadata exists before any content byte lands.
	node, err := st.GetNode(ctx, "/alice/fresh.txt")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "alice", node.Owner)

	// The handle observed its own creation.
	assert.True(t, file.Exists())

	_, err = io.WriteString(w, "hello")
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestFile_WriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	w, err := file.OpenWriter(ctx, 0)
	require.NoError(t, err)
	_, err = io.WriteString(w, "round trip payload")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Re-resolve for current metadata.
	file, err = view.File(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len("round trip payload")), file.Size())

	r, err := file.OpenReader(ctx, 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "round trip payload", string(data))
}

func TestFile_WriteReadLarge(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	// Larger than any internal buffer, off by one from a power of two.
	payload := make([]byte, 2*1024*1024+1)
	for i := range payload {
		payload[i] = 'x'
	}

	file, err := view.File(ctx, "big.bin")
	require.NoError(t, err)

	w, err := file.OpenWriter(ctx, 0)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	file, err = view.File(ctx, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), file.Size())

	r, err := file.OpenReader(ctx, 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFile_OpenWriterNonZeroOffset(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	_, err = file.OpenWriter(ctx, 42)
	require.Error(t, err)

	var offsetErr *UnsupportedOffsetError
	require.True(t, errors.As(err, &offsetErr))
	assert.Equal(t, int64(42), offsetErr.Offset)
}

func TestFile_OpenReaderNonZeroOffset(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "file.txt")
	require.NoError(t, err)

	_, err = file.OpenReader(ctx, 7)
	var offsetErr *UnsupportedOffsetError
	assert.True(t, errors.As(err, &offsetErr))
}

func TestFile_OpenReaderAbsent(t *testing.T) {
	ctx := context.Background()
	view, _ := newTestView(t)

	file, err := view.File(ctx, "ghost.txt")
	require.NoError(t, err)

	_, err = file.OpenReader(ctx, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
