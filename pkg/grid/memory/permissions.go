package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// effective returns the stored permission for (user, path). Callers must hold
// at least a read lock.
func (s *Store) effective(user, path string) grid.Permission {
	return s.perms[vpath.Clean(path)][user]
}

// IsReadable reports whether the user can read path. The own bit carries
// implicit read.
func (s *Store) IsReadable(ctx context.Context, user, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perm := s.effective(user, path)
	return perm.Read || perm.Own, nil
}

// IsWritable reports whether the user can write path. The own bit carries
// implicit write.
func (s *Store) IsWritable(ctx context.Context, user, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perm := s.effective(user, path)
	return perm.Write || perm.Own, nil
}

// Owns reports whether the user owns path.
func (s *Store) Owns(ctx context.Context, user, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.effective(user, path).Own, nil
}

// Permission returns the user's stored permission on path. A missing grant is
// the zero Permission.
func (s *Store) Permission(ctx context.Context, user, path string) (grid.Permission, error) {
	if err := ctx.Err(); err != nil {
		return grid.Permission{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.lookup(path); !ok {
		return grid.Permission{}, fmt.Errorf("no entry at %q", path)
	}
	return s.effective(user, path), nil
}

// SetPermission replaces the user's permission on path. An empty permission
// removes the grant. With recurse set, the whole subtree is rewritten.
func (s *Store) SetPermission(ctx context.Context, user, path string, perm grid.Permission, recurse bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return fmt.Errorf("no entry at %q", path)
	}

	paths := []string{path}
	if recurse {
		paths = s.subtreePaths(path)
	}

	for _, p := range paths {
		if perm.IsEmpty() {
			delete(s.perms[p], user)
			if len(s.perms[p]) == 0 {
				delete(s.perms, p)
			}
			continue
		}

		if s.perms[p] == nil {
			s.perms[p] = make(map[string]grid.Permission)
		}
		s.perms[p][user] = perm
	}
	return nil
}

// RemovePermission removes the user's permission entry on path entirely.
func (s *Store) RemovePermission(ctx context.Context, user, path string, recurse bool) error {
	return s.SetPermission(ctx, user, path, grid.Permission{}, recurse)
}

// SetInherit toggles the inheritance flag on a directory.
func (s *Store) SetInherit(ctx context.Context, path string, inherit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.lookup(path)
	if !ok {
		return fmt.Errorf("no entry at %q", path)
	}
	if n.entry.Type != grid.EntryTypeDirectory {
		return fmt.Errorf("%q is not a directory", path)
	}

	n.inherit = inherit
	return nil
}

// ListPermissions returns every principal's permission on path, sorted by
// user for deterministic output.
func (s *Store) ListPermissions(ctx context.Context, path string) ([]grid.UserPermission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return nil, fmt.Errorf("no entry at %q", path)
	}

	perms := make([]grid.UserPermission, 0, len(s.perms[path]))
	for user, perm := range s.perms[path] {
		perms = append(perms, grid.UserPermission{User: user, Permission: perm})
	}

	sort.Slice(perms, func(i, j int) bool {
		return perms[i].User < perms[j].User
	})
	return perms, nil
}
