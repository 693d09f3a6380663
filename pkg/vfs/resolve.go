package vfs

import (
	"path"
	"strings"
)

// Resolve normalizes a possibly relative path against a working directory.
//
// An input starting with "/" is treated as already absolute; anything else
// is joined onto the working directory. "." and ".." segments and repeated
// separators are collapsed. The result is the canonical store key for the
// entry, whether or not anything exists there: resolution is a pure string
// transformation and is idempotent.
//
// Returns ErrEmptyPath for an empty input; that is the only failure mode.
func Resolve(workingDir, input string) (string, error) {
	if input == "" {
		return "", ErrEmptyPath
	}

	if strings.HasPrefix(input, "/") {
		return path.Clean(input), nil
	}

	return path.Join(workingDir, input), nil
}

// homePrefixed is the write-permission predicate: a path is writable by an
// identity exactly when its string form is prefixed by the identity's home
// directory. Deliberately a plain prefix test, not an ACL.
func homePrefixed(p, home string) bool {
	return strings.HasPrefix(p, home)
}
