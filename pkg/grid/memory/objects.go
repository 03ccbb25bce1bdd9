package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Existence and type predicates
// ============================================================================

// Exists reports whether an object or collection exists at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.lookup(path)
	return ok, nil
}

// IsDir reports whether path names a directory. A missing path is not a
// directory, not an error.
func (s *Store) IsDir(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.lookup(path)
	return ok && n.entry.Type == grid.EntryTypeDirectory, nil
}

// IsFile reports whether path names a file.
func (s *Store) IsFile(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.lookup(path)
	return ok && n.entry.Type == grid.EntryTypeFile, nil
}

// Stat returns the entry at path.
func (s *Store) Stat(ctx context.Context, path string) (*grid.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.lookup(path)
	if !ok {
		return nil, fmt.Errorf("no entry at %q", path)
	}

	entry := n.entry
	return &entry, nil
}

// ListChildren lists the immediate children of a directory, sorted by name.
func (s *Store) ListChildren(ctx context.Context, path string) ([]grid.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path = vpath.Clean(path)
	n, ok := s.lookup(path)
	if !ok {
		return nil, fmt.Errorf("no entry at %q", path)
	}
	if n.entry.Type != grid.EntryTypeDirectory {
		return nil, fmt.Errorf("%q is not a directory", path)
	}

	var children []grid.Entry
	for p, child := range s.nodes {
		if vpath.Parent(p) == path && p != vpath.Separator {
			children = append(children, child.entry)
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Name < children[j].Name
	})
	return children, nil
}

// ============================================================================
// Structural mutation
// ============================================================================

// Mkdir creates a directory at path. When the parent directory carries the
// inheritance flag, the parent's permission grants are copied onto the new
// directory.
func (s *Store) Mkdir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); ok {
		return fmt.Errorf("entry already exists at %q", path)
	}

	parent, ok := s.lookup(vpath.Parent(path))
	if !ok {
		return fmt.Errorf("parent of %q does not exist", path)
	}
	if parent.entry.Type != grid.EntryTypeDirectory {
		return fmt.Errorf("parent of %q is not a directory", path)
	}

	now := s.now()
	s.nodes[path] = &node{
		entry: grid.Entry{
			Path:       path,
			Name:       vpath.Base(path),
			Type:       grid.EntryTypeDirectory,
			CreatedAt:  now,
			ModifiedAt: now,
		},
	}

	if parent.inherit {
		inherited := make(map[string]grid.Permission, len(s.perms[parent.entry.Path]))
		for user, perm := range s.perms[parent.entry.Path] {
			inherited[user] = perm
		}
		if len(inherited) > 0 {
			s.perms[path] = inherited
		}
	}

	parent.entry.ModifiedAt = now
	return nil
}

// WriteFile creates or truncates a file at path with the given size. This is
// a fixture helper: real content transfer happens outside this layer.
func (s *Store) WriteFile(ctx context.Context, path string, size uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	now := s.now()

	if existing, ok := s.lookup(path); ok {
		if existing.entry.Type != grid.EntryTypeFile {
			return fmt.Errorf("%q is not a file", path)
		}
		existing.entry.Size = size
		existing.entry.ModifiedAt = now
		return nil
	}

	parent, ok := s.lookup(vpath.Parent(path))
	if !ok || parent.entry.Type != grid.EntryTypeDirectory {
		return fmt.Errorf("parent of %q is not a directory", path)
	}

	s.nodes[path] = &node{
		entry: grid.Entry{
			Path:       path,
			Name:       vpath.Base(path),
			Type:       grid.EntryTypeFile,
			Size:       size,
			CreatedAt:  now,
			ModifiedAt: now,
		},
	}

	if parent.inherit {
		inherited := make(map[string]grid.Permission, len(s.perms[parent.entry.Path]))
		for user, perm := range s.perms[parent.entry.Path] {
			inherited[user] = perm
		}
		if len(inherited) > 0 {
			s.perms[path] = inherited
		}
	}

	parent.entry.ModifiedAt = now
	return nil
}

// Delete removes the object or collection at path together with its
// descendants, permissions and metadata.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return fmt.Errorf("no entry at %q", path)
	}

	for _, p := range s.subtreePaths(path) {
		delete(s.nodes, p)
		delete(s.perms, p)
		delete(s.meta, p)
	}

	if parent, ok := s.lookup(vpath.Parent(path)); ok {
		parent.entry.ModifiedAt = s.now()
	}
	return nil
}

// Move relocates source to the full destination path dest, rewriting the
// subtree together with its permissions and metadata.
func (s *Store) Move(ctx context.Context, source, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source = vpath.Clean(source)
	dest = vpath.Clean(dest)

	if source == dest || vpath.IsAncestor(source, dest) {
		return fmt.Errorf("cannot move %q into itself", source)
	}
	if _, ok := s.lookup(source); !ok {
		return fmt.Errorf("no entry at %q", source)
	}
	if _, ok := s.lookup(dest); ok {
		return fmt.Errorf("entry already exists at %q", dest)
	}
	destParent, ok := s.lookup(vpath.Parent(dest))
	if !ok || destParent.entry.Type != grid.EntryTypeDirectory {
		return fmt.Errorf("parent of %q is not a directory", dest)
	}

	now := s.now()
	for _, p := range s.subtreePaths(source) {
		newPath := dest + strings.TrimPrefix(p, source)

		n := s.nodes[p]
		delete(s.nodes, p)
		n.entry.Path = newPath
		n.entry.Name = vpath.Base(newPath)
		n.entry.ModifiedAt = now
		s.nodes[newPath] = n

		if perms, ok := s.perms[p]; ok {
			delete(s.perms, p)
			s.perms[newPath] = perms
		}
		if avus, ok := s.meta[p]; ok {
			delete(s.meta, p)
			s.meta[newPath] = avus
		}
	}

	destParent.entry.ModifiedAt = now
	if srcParent, ok := s.lookup(vpath.Parent(source)); ok {
		srcParent.entry.ModifiedAt = now
	}
	return nil
}

// Copy duplicates source at the full destination path dest. Metadata travels
// with the copy; permission grants do not, matching the backing stores this
// facade fronts.
func (s *Store) Copy(ctx context.Context, source, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source = vpath.Clean(source)
	dest = vpath.Clean(dest)

	if source == dest || vpath.IsAncestor(source, dest) {
		return fmt.Errorf("cannot copy %q into itself", source)
	}
	if _, ok := s.lookup(source); !ok {
		return fmt.Errorf("no entry at %q", source)
	}
	if _, ok := s.lookup(dest); ok {
		return fmt.Errorf("entry already exists at %q", dest)
	}
	destParent, ok := s.lookup(vpath.Parent(dest))
	if !ok || destParent.entry.Type != grid.EntryTypeDirectory {
		return fmt.Errorf("parent of %q is not a directory", dest)
	}

	now := s.now()
	for _, p := range s.subtreePaths(source) {
		newPath := dest + strings.TrimPrefix(p, source)

		src := s.nodes[p]
		entry := src.entry
		entry.Path = newPath
		entry.Name = vpath.Base(newPath)
		entry.CreatedAt = now
		entry.ModifiedAt = now
		s.nodes[newPath] = &node{entry: entry, inherit: src.inherit}

		if avus, ok := s.meta[p]; ok {
			copied := make([]grid.AVU, len(avus))
			copy(copied, avus)
			s.meta[newPath] = copied
		}
	}

	destParent.entry.ModifiedAt = now
	return nil
}
