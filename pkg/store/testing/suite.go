package testing

import (
	"context"
	"testing"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// StoreTestSuite is a comprehensive test suite for Store implementations.
// It tests the interface contract, not implementation details, making it
// reusable across different implementations (memory, badger, S3, etc.).
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func(t *testing.T) store.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh Store instance
	// for each test. This ensures test isolation. Implementations that
	// hold resources should register cleanup on t.
	NewStore func(t *testing.T) store.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("NodeOperations", suite.RunNodeTests)
	t.Run("MoveOperations", suite.RunMoveTests)
	t.Run("ChildListing", suite.RunChildrenTests)
	t.Run("ContentStreams", suite.RunStreamTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
