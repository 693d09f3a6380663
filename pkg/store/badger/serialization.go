package badger

import (
	"encoding/json"
	"fmt"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// Node records are stored as JSON. Human-readable values make the database
// inspectable with the badger CLI and keep schema evolution painless;
// content chunks are raw bytes and need no encoding at all.

func encodeNode(node *store.Node) ([]byte, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encode node: %w", err)
	}
	return data, nil
}

func decodeNode(data []byte) (*store.Node, error) {
	var node store.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}
