// Package vpath manipulates realm-rooted virtual paths.
//
// A virtual path is an absolute, slash-delimited identifier inside the grid
// namespace, e.g. "/zoneA/home/alice/project/data.csv". Paths are treated as
// opaque string keys: no filesystem access ever happens here.
package vpath

import "strings"

// Separator is the path component separator used by the grid namespace.
const Separator = "/"

// Clean normalizes a virtual path: collapses repeated separators, removes a
// trailing separator, and guarantees a leading one. The root path is "/".
func Clean(path string) string {
	if path == "" {
		return Separator
	}

	parts := strings.Split(path, Separator)
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}

	if len(cleaned) == 0 {
		return Separator
	}

	return Separator + strings.Join(cleaned, Separator)
}

// Join concatenates path components and cleans the result.
func Join(components ...string) string {
	return Clean(strings.Join(components, Separator))
}

// Base returns the last component of the path. The base of the root is "/".
func Base(path string) string {
	path = Clean(path)
	if path == Separator {
		return Separator
	}

	idx := strings.LastIndex(path, Separator)
	return path[idx+1:]
}

// Parent returns the parent directory of the path. The parent of the root is
// the root itself.
func Parent(path string) string {
	path = Clean(path)
	if path == Separator {
		return Separator
	}

	idx := strings.LastIndex(path, Separator)
	if idx == 0 {
		return Separator
	}
	return path[:idx]
}

// IsAncestor reports whether ancestor is a strict ancestor of path.
// A path is never its own ancestor.
func IsAncestor(ancestor, path string) bool {
	ancestor = Clean(ancestor)
	path = Clean(path)

	if ancestor == path {
		return false
	}
	if ancestor == Separator {
		return true
	}
	return strings.HasPrefix(path, ancestor+Separator)
}

// RelativeTo strips the given root prefix from path, returning a relative,
// separator-delimited remainder. Returns "" when path equals root and the
// cleaned path unchanged when root is not an ancestor.
func RelativeTo(path, root string) string {
	path = Clean(path)
	root = Clean(root)

	if path == root {
		return ""
	}
	if !IsAncestor(root, path) {
		return path
	}
	if root == Separator {
		return path[1:]
	}
	return path[len(root)+1:]
}

// AncestorsBelow returns the strict ancestors of path that live strictly
// below root, ordered nearest first (parent, grandparent, ...). The root
// itself is excluded: visibility on the realm root is not managed per user.
//
// AncestorsBelow("/z/home/alice/proj/x", "/z") ->
// ["/z/home/alice/proj", "/z/home/alice", "/z/home"].
func AncestorsBelow(path, root string) []string {
	path = Clean(path)
	root = Clean(root)

	var ancestors []string
	for p := Parent(path); p != root && IsAncestor(root, p); p = Parent(p) {
		ancestors = append(ancestors, p)
	}
	return ancestors
}

// Depth returns the number of components in the path. The root has depth 0.
func Depth(path string) int {
	path = Clean(path)
	if path == Separator {
		return 0
	}
	return strings.Count(path, Separator)
}
