package badger

import "fmt"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys split the database into
// logical namespaces:
//
// Data Type        Prefix   Key Format                      Value
// =====================================================================
// Node records     "n:"     n:<path>                        Node (JSON)
// Child index      "d:"     d:<parentPath>\x00<name>        child path (bytes)
// Content chunks   "b:"     b:<contentID>:<index>           chunk bytes
//
// Node records are point lookups by absolute path. The child index exists
// so ListChildren is a single range scan over "d:<parentPath>\x00" instead
// of a scan of every node; NUL separates the parent path from the child
// name because paths may contain any other byte. Content is chunked under
// the node's content ID, one key per fixed-size chunk.

const (
	prefixNode  = "n:"
	prefixChild = "d:"
	prefixChunk = "b:"

	childSep = "\x00"
)

func keyNode(path string) []byte {
	return []byte(prefixNode + path)
}

func keyChild(parentPath, name string) []byte {
	return []byte(prefixChild + parentPath + childSep + name)
}

// keyChildPrefix is the range-scan prefix covering every child of a
// directory.
func keyChildPrefix(parentPath string) []byte {
	return []byte(prefixChild + parentPath + childSep)
}

func keyChunk(contentID string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefixChunk, contentID, index))
}

// keyChunkPrefix is the range-scan prefix covering every chunk of one
// content stream; used to drop replaced content wholesale.
func keyChunkPrefix(contentID string) []byte {
	return []byte(prefixChunk + contentID + ":")
}
