package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// RunMoveTests executes the MoveNode contract tests.
func (suite *StoreTestSuite) RunMoveTests(t *testing.T) {
	t.Run("MoveNode_AbsentSource", suite.testMoveNodeAbsentSource)
	t.Run("MoveNode_File", suite.testMoveNodeFile)
	t.Run("MoveNode_ContentTravels", suite.testMoveNodeContentTravels)
	t.Run("MoveNode_OverwritesTarget", suite.testMoveNodeOverwritesTarget)
	t.Run("MoveNode_DirectoryRecordOnly", suite.testMoveNodeDirectoryRecordOnly)
}

func (suite *StoreTestSuite) testMoveNodeAbsentSource(t *testing.T) {
	st := suite.NewStore(t)

	err := st.MoveNode(testContext(), "/nonexistent", "/alice/target")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testMoveNodeFile(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/old.txt", fileNode("old.txt"))
	original := mustGetNode(t, st, "/alice/old.txt")

	require.NoError(t, st.MoveNode(testContext(), "/alice/old.txt", "/alice/new.txt"))

	assertNodeAbsent(t, st, "/alice/old.txt")

	moved := mustGetNode(t, st, "/alice/new.txt")
	assert.Equal(t, "new.txt", moved.Name, "the node takes the target's base name")
	assert.Equal(t, original.ContentID, moved.ContentID, "content ID is unchanged by a move")
}

func (suite *StoreTestSuite) testMoveNodeContentTravels(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/old.txt", fileNode("old.txt"))
	mustWriteContent(t, st, "/alice/old.txt", []byte("travelling bytes"))

	require.NoError(t, st.MoveNode(testContext(), "/alice/old.txt", "/bob/new.txt"))

	data := mustReadContent(t, st, "/bob/new.txt")
	assert.Equal(t, []byte("travelling bytes"), data)
}

func (suite *StoreTestSuite) testMoveNodeOverwritesTarget(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/src.txt", fileNode("src.txt"))
	mustWriteContent(t, st, "/alice/src.txt", []byte("source"))

	mustSaveNode(t, st, "/alice/dst.txt", fileNode("dst.txt"))
	mustWriteContent(t, st, "/alice/dst.txt", []byte("doomed target"))

	require.NoError(t, st.MoveNode(testContext(), "/alice/src.txt", "/alice/dst.txt"))

	data := mustReadContent(t, st, "/alice/dst.txt")
	assert.Equal(t, []byte("source"), data)
}

func (suite *StoreTestSuite) testMoveNodeDirectoryRecordOnly(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))
	mustSaveNode(t, st, "/alice/docs/file.txt", fileNode("file.txt"))

	require.NoError(t, st.MoveNode(testContext(), "/alice/docs", "/alice/archive"))

	moved := mustGetNode(t, st, "/alice/archive")
	assert.True(t, moved.Directory)

	// The move is shallow: children keep their old paths.
	node := mustGetNode(t, st, "/alice/docs/file.txt")
	assert.Equal(t, "file.txt", node.Name)
}
