// Package memory provides an in-memory grid.Store implementation.
//
// It is the reference semantics for the storage facade and the backend used
// by tests and local development. All state lives in maps guarded by a single
// RWMutex; production deployments use a real storage service instead.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// node is one object in the namespace.
type node struct {
	entry   grid.Entry
	inherit bool
}

// Store is an in-memory implementation of grid.Store.
//
// Permission semantics: the own bit carries implicit read and write, matching
// the backing stores this facade fronts. The three bits remain independently
// settable; no bit is rewritten on storage.
type Store struct {
	mu    sync.RWMutex
	users map[string]struct{}
	nodes map[string]*node
	perms map[string]map[string]grid.Permission // path -> user -> permission
	meta  map[string][]grid.AVU
	quota map[string][]grid.QuotaStatus

	cartHost string
	cartPort int

	now func() time.Time
}

// New creates an empty Store with the root directory in place.
func New() *Store {
	s := &Store{
		users:    make(map[string]struct{}),
		nodes:    make(map[string]*node),
		perms:    make(map[string]map[string]grid.Permission),
		meta:     make(map[string][]grid.AVU),
		quota:    make(map[string][]grid.QuotaStatus),
		cartHost: "localhost",
		cartPort: 1247,
		now:      time.Now,
	}

	s.nodes[vpath.Separator] = &node{
		entry: grid.Entry{
			Path:       vpath.Separator,
			Name:       vpath.Separator,
			Type:       grid.EntryTypeDirectory,
			CreatedAt:  s.now(),
			ModifiedAt: s.now(),
		},
	}
	return s
}

// AddUser registers a principal with the in-memory identity directory.
func (s *Store) AddUser(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user] = struct{}{}
}

// RemoveUser deregisters a principal. Permission entries are left in place,
// matching a storage service whose grants outlive directory accounts.
func (s *Store) RemoveUser(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, user)
}

// SetQuota installs quota statuses for a user.
func (s *Store) SetQuota(user string, statuses []grid.QuotaStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota[user] = statuses
}

// SetCartEndpoint overrides the connection coordinates stamped on issued
// carts.
func (s *Store) SetCartEndpoint(host string, port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartHost = host
	s.cartPort = port
}

// UserExists reports whether the user is registered.
func (s *Store) UserExists(ctx context.Context, user string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[user]
	return ok, nil
}

// Quota returns the user's quota statuses.
func (s *Store) Quota(ctx context.Context, user string) ([]grid.QuotaStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[user]; !ok {
		return nil, fmt.Errorf("unknown user %q", user)
	}

	statuses := make([]grid.QuotaStatus, len(s.quota[user]))
	copy(statuses, s.quota[user])
	return statuses, nil
}

// lookup returns the node at path. Callers must hold at least a read lock.
func (s *Store) lookup(path string) (*node, bool) {
	n, ok := s.nodes[vpath.Clean(path)]
	return n, ok
}

// subtreePaths returns path plus every descendant path. Callers must hold at
// least a read lock.
func (s *Store) subtreePaths(path string) []string {
	path = vpath.Clean(path)
	paths := []string{path}
	for p := range s.nodes {
		if vpath.IsAncestor(path, p) {
			paths = append(paths, p)
		}
	}
	return paths
}
