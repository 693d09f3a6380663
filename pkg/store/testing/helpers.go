package testing

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// AssertErrorIs checks if the error matches the expected error using errors.Is.
func AssertErrorIs(t *testing.T, expected error, actual error) {
	t.Helper()
	if !errors.Is(actual, expected) {
		t.Errorf("Expected error %v, got %v", expected, actual)
	}
}

// fileNode builds a file node for tests.
func fileNode(name string) *store.Node {
	return &store.Node{
		Name:     name,
		Owner:    "alice",
		Group:    "users",
		Modified: store.NowMillis(),
	}
}

// dirNode builds a directory node for tests.
func dirNode(name string) *store.Node {
	return &store.Node{
		Name:      name,
		Directory: true,
		Owner:     "alice",
		Group:     "users",
		Modified:  store.NowMillis(),
	}
}

// mustSaveNode saves a node and fails the test if it errors.
func mustSaveNode(t *testing.T, st store.Store, path string, node *store.Node) {
	t.Helper()
	err := st.SaveNode(testContext(), path, node)
	require.NoError(t, err, "SaveNode should succeed")
}

// mustGetNode fetches a node that must exist.
func mustGetNode(t *testing.T, st store.Store, path string) *store.Node {
	t.Helper()
	node, err := st.GetNode(testContext(), path)
	require.NoError(t, err, "GetNode should succeed")
	require.NotNil(t, node, "node should exist at %s", path)
	return node
}

// mustWriteContent writes file content through a write stream and fails the
// test if any step errors.
func mustWriteContent(t *testing.T, st store.Store, path string, data []byte) {
	t.Helper()
	w, err := st.OpenWriteStream(testContext(), path)
	require.NoError(t, err, "OpenWriteStream should succeed")
	_, err = w.Write(data)
	require.NoError(t, err, "Write should succeed")
	require.NoError(t, w.Close(), "Close should succeed")
}

// mustReadContent reads the full file content and fails the test if it errors.
func mustReadContent(t *testing.T, st store.Store, path string) []byte {
	t.Helper()
	r, err := st.OpenReadStream(testContext(), path)
	require.NoError(t, err, "OpenReadStream should succeed")
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err, "Reading content should succeed")
	return data
}

// assertNodeAbsent checks that nothing exists at the path.
func assertNodeAbsent(t *testing.T, st store.Store, path string) {
	t.Helper()
	node, err := st.GetNode(testContext(), path)
	require.NoError(t, err, "GetNode should not error for an absent path")
	assert.Nil(t, node, "expected no node at %s", path)
}

// generateTestData creates test data of specified size.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = byte(i % 256)
	}
	return data
}
