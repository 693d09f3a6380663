package testing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// RunChildrenTests executes the ListChildren contract tests.
func (suite *StoreTestSuite) RunChildrenTests(t *testing.T) {
	t.Run("ListChildren_Absent", suite.testListChildrenAbsent)
	t.Run("ListChildren_File", suite.testListChildrenFile)
	t.Run("ListChildren_Empty", suite.testListChildrenEmpty)
	t.Run("ListChildren_DirectOnly", suite.testListChildrenDirectOnly)
	t.Run("ListChildren_PrefixSibling", suite.testListChildrenPrefixSibling)
	t.Run("ListChildren_Root", suite.testListChildrenRoot)
}

// childNames extracts sorted child names for order-independent comparison.
func childNames(children []*store.Node) []string {
	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Name)
	}
	sort.Strings(names)
	return names
}

func (suite *StoreTestSuite) testListChildrenAbsent(t *testing.T) {
	st := suite.NewStore(t)

	_, err := st.ListChildren(testContext(), "/nonexistent")
	AssertErrorIs(t, store.ErrNotFound, err)
}

func (suite *StoreTestSuite) testListChildrenFile(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))

	_, err := st.ListChildren(testContext(), "/alice/file.txt")
	AssertErrorIs(t, store.ErrNotDirectory, err)
}

func (suite *StoreTestSuite) testListChildrenEmpty(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice", dirNode("alice"))

	children, err := st.ListChildren(testContext(), "/alice")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func (suite *StoreTestSuite) testListChildrenDirectOnly(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice", dirNode("alice"))
	mustSaveNode(t, st, "/alice/docs", dirNode("docs"))
	mustSaveNode(t, st, "/alice/file.txt", fileNode("file.txt"))
	mustSaveNode(t, st, "/alice/docs/nested.txt", fileNode("nested.txt"))

	children, err := st.ListChildren(testContext(), "/alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "file.txt"}, childNames(children))
}

func (suite *StoreTestSuite) testListChildrenPrefixSibling(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/alice", dirNode("alice"))
	mustSaveNode(t, st, "/alice/a.txt", fileNode("a.txt"))
	mustSaveNode(t, st, "/alicefoo", dirNode("alicefoo"))
	mustSaveNode(t, st, "/alicefoo/b.txt", fileNode("b.txt"))

	children, err := st.ListChildren(testContext(), "/alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, childNames(children))
}

func (suite *StoreTestSuite) testListChildrenRoot(t *testing.T) {
	st := suite.NewStore(t)

	mustSaveNode(t, st, "/", dirNode("/"))
	mustSaveNode(t, st, "/alice", dirNode("alice"))
	mustSaveNode(t, st, "/bob", dirNode("bob"))

	children, err := st.ListChildren(testContext(), "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, childNames(children))
}
