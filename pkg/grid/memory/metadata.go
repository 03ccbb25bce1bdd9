package memory

import (
	"context"
	"fmt"

	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// Metadata returns all AVU triples attached to path.
func (s *Store) Metadata(ctx context.Context, path string) ([]grid.AVU, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return nil, fmt.Errorf("no entry at %q", path)
	}

	avus := make([]grid.AVU, len(s.meta[path]))
	copy(avus, s.meta[path])
	return avus, nil
}

// AddMetadata attaches one AVU triple to path. Duplicate triples sharing an
// attribute are permitted; an exact duplicate is stored once.
func (s *Store) AddMetadata(ctx context.Context, path string, avu grid.AVU) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return fmt.Errorf("no entry at %q", path)
	}

	for _, existing := range s.meta[path] {
		if existing == avu {
			return nil
		}
	}

	s.meta[path] = append(s.meta[path], avu)
	return nil
}

// ReplaceMetadata rewrites one attached triple in place. Rewriting a triple
// that is not attached is a no-op.
func (s *Store) ReplaceMetadata(ctx context.Context, path string, old, new grid.AVU) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return fmt.Errorf("no entry at %q", path)
	}

	for i, existing := range s.meta[path] {
		if existing == old {
			s.meta[path][i] = new
			return nil
		}
	}
	return nil
}

// DeleteMetadata removes one exact AVU triple from path. Removing a triple
// that is not attached is a no-op.
func (s *Store) DeleteMetadata(ctx context.Context, path string, avu grid.AVU) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path = vpath.Clean(path)
	if _, ok := s.lookup(path); !ok {
		return fmt.Errorf("no entry at %q", path)
	}

	avus := s.meta[path]
	for i, existing := range avus {
		if existing == avu {
			s.meta[path] = append(avus[:i], avus[i+1:]...)
			if len(s.meta[path]) == 0 {
				delete(s.meta, path)
			}
			return nil
		}
	}
	return nil
}
