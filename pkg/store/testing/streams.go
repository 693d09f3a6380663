package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// RunStreamTests executes the content stream contract tests.
func (suite *StoreTestSuite) RunStreamTests(t *testing.T) {
	t.Run("OpenWriteStream_Absent", suite.testOpenWriteStreamAbsent)
	t.Run("OpenWriteStream_Directory", suite.testOpenWriteStreamDirectory)
	t.Run("OpenReadStream_Absent", suite.testOpenReadStreamAbsent)
	t.Run("OpenReadStream_Directory", suite.testOpenReadStreamDirectory)
	t.Run("Read_NeverWritten", suite.testReadNeverWritten)
	t.Run("WriteRead_RoundTrip", suite.testWriteReadRoundTrip)
	t.Run("Write_UpdatesSize", suite.testWriteUpdatesSize)
	t.Run("Write_Overwrite", suite.testWriteOverwrite)
	t.Run("Write_VisibleOnCloseOnly", suite.testWriteVisibleOnCloseOnly)
	t.Run("Write_MultipleChunks", suite.testWriteMultipleChunks)
	t.Run("Write_Large", suite.testWriteLarge)
}

func (suite *StoreTestSuite) testOpenWriteStreamAbsent(t *testing.T) {
	st := suite.NewStore(t)

	_, err := st.OpenWriteStream(testContext(), "/nonexistent")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testOpenWriteStreamDirectory(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))

	_, err := st.OpenWriteStream(testContext(), "/alice/docs")
	AssertErrorIs(t, store.ErrIsDirectory, err)
}

func (suite *StoreTestSuite) testOpenReadStreamAbsent(t *testing.T) {
	st := suite.NewStore(t)

	_, err := st.OpenReadStream(testContext(), "/nonexistent")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testOpenReadStreamDirectory(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))

	_, err := st.OpenReadStream(testContext(), "/alice/docs")
	AssertErrorIs(t, store.ErrIsDirectory, err)
}

func (suite *StoreTestSuite) testReadNeverWritten(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/empty.txt", fileNode("empty.txt"))

	data := mustReadContent(t, st, "/alice/empty.txt")
	assert.Empty(t, data)
}

func (suite *StoreTestSuite) testWriteReadRoundTrip(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("Hello, World!"))

	data := mustReadContent(t, st, "/alice/file.txt")
	assert.Equal(t, []byte("Hello, World!"), data)
}

func (suite *StoreTestSuite) testWriteUpdatesSize(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))

	before := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, int64(0), before.Size)

	mustWriteContent(t, st, "/alice/file.txt", []byte("13 bytes long"))

	after := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, int64(13), after.Size)
	assert.GreaterOrEqual(t, after.Modified, before.Modified)
}

func (suite *StoreTestSuite) testWriteOverwrite(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("the original, much longer content"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("short"))

	data := mustReadContent(t, st, "/alice/file.txt")
	assert.Equal(t, []byte("short"), data)

	node := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, int64(5), node.Size)
}

func (suite *StoreTestSuite) testWriteVisibleOnCloseOnly(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("old"))

	w, err := st.OpenWriteStream(testContext(), "/alice/file.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)

	// The previous content stays readable until the writer closes.
	data := mustReadContent(t, st, "/alice/file.txt")
	assert.Equal(t, []byte("old"), data)

	require.NoError(t, w.Close())

	data = mustReadContent(t, st, "/alice/file.txt")
	assert.Equal(t, []byte("new"), data)
}

func (suite *StoreTestSuite) testWriteMultipleChunks(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))

	w, err := st.OpenWriteStream(testContext(), "/alice/file.txt")
	require.NoError(t, err)

	for _, part := range []string{"one ", "two ", "three"} {
		_, err = w.Write([]byte(part))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	data := mustReadContent(t, st, "/alice/file.txt")
	assert.Equal(t, []byte("one two three"), data)
}

func (suite *StoreTestSuite) testWriteLarge(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/big.bin", fileNode("big.bin"))

	// Crosses internal chunking boundaries by one byte.
	testData := generateTestData(2*1024*1024 + 1)
	mustWriteContent(t, st, "/alice/big.bin", testData)

	data := mustReadContent(t, st, "/alice/big.bin")
	assert.Equal(t, testData, data)

	node := mustGetNode(t, st, "/alice/big.bin")
	assert.Equal(t, int64(len(testData)), node.Size)
}
