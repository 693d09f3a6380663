package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// RunNodeTests executes all node CRUD contract tests.
func (suite *StoreTestSuite) RunNodeTests(t *testing.T) {
	t.Run("GetNode_Absent", suite.testGetNodeAbsent)
	t.Run("SaveNode_CreateFile", suite.testSaveNodeCreateFile)
	t.Run("SaveNode_CreateDirectory", suite.testSaveNodeCreateDirectory)
	t.Run("SaveNode_MetadataUpdate", suite.testSaveNodeMetadataUpdate)
	t.Run("SaveNode_PreservesDerivedFields", suite.testSaveNodePreservesDerivedFields)
	t.Run("SaveNode_KindConflict", suite.testSaveNodeKindConflict)
	t.Run("DeleteNode_Absent", suite.testDeleteNodeAbsent)
	t.Run("DeleteNode_File", suite.testDeleteNodeFile)
	t.Run("DeleteNode_DirectoryNotRecursive", suite.testDeleteNodeDirectoryNotRecursive)
}

func (suite *StoreTestSuite) testGetNodeAbsent(t *testing.T) {
	st := suite.NewStore(t)

	assertNodeAbsent(t, st, "/nonexistent")
}

func (suite *StoreTestSuite) testSaveNodeCreateFile(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))

	node := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, "file.txt", node.Name)
	assert.False(t, node.Directory)
	assert.Equal(t, "alice", node.Owner)
	assert.NotEmpty(t, node.ContentID, "file nodes get a content ID on first save")
	assert.Equal(t, int64(0), node.Size)
}

func (suite *StoreTestSuite) testSaveNodeCreateDirectory(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))

	node := mustGetNode(t, st, "/alice/docs")
	assert.True(t, node.Directory)
	assert.Empty(t, node.ContentID, "directories have no content")
}

func (suite *StoreTestSuite) testSaveNodeMetadataUpdate(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))

	updated := fileNode("file.txt")
	updated.Owner = "bob"
	updated.Modified = 1234567890000
	mustSaveNode(t, st, "/alice/file.txt", updated)

	node := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, "bob", node.Owner)
	assert.Equal(t, int64(1234567890000), node.Modified)
}

func (suite *StoreTestSuite) testSaveNodePreservesDerivedFields(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("hello"))

	written := mustGetNode(t, st, "/alice/file.txt")
	require.Equal(t, int64(5), written.Size)

	// A metadata save with a bogus size and no content ID must not clobber
	// the stored values.
	update := fileNode("file.txt")
	update.Size = 9999
	mustSaveNode(t, st, "/alice/file.txt", update)

	node := mustGetNode(t, st, "/alice/file.txt")
	assert.Equal(t, int64(5), node.Size)
	assert.Equal(t, written.ContentID, node.ContentID)
}

func (suite *StoreTestSuite) testSaveNodeKindConflict(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/thing", dirNode("thing"))

	err := st.SaveNode(testContext(), "/alice/thing", fileNode("thing"))
	AssertErrorIs(t, store.ErrExists, err)

	mustSaveNode(t, st, "/alice/other", fileNode("other"))

	err = st.SaveNode(testContext(), "/alice/other", dirNode("other"))
	AssertErrorIs(t, store.ErrExists, err)
}

func (suite *StoreTestSuite) testDeleteNodeAbsent(t *testing.T) {
	st := suite.NewStore(t)

	err := st.DeleteNode(testContext(), "/nonexistent")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testDeleteNodeFile(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustWriteContent(t, st, "/alice/file.txt", []byte("doomed"))

	require.NoError(t, st.DeleteNode(testContext(), "/alice/file.txt"))

	assertNodeAbsent(t, st, "/alice/file.txt")

	_, err := st.OpenReadStream(testContext(), "/alice/file.txt")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testDeleteNodeDirectoryNotRecursive(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))
	mustSaveNode(t, st, "/alice/docs/file.txt", fileNode("file.txt"))

	require.NoError(t, st.DeleteNode(testContext(), "/alice/docs"))

	assertNodeAbsent(t, st, "/alice/docs")

	// Children are not removed; the store does not walk the tree.
	node := mustGetNode(t, st, "/alice/docs/file.txt")
	assert.Equal(t, "file.txt", node.Name)
}
