package dataops

import (
	"context"
	"slices"
	"time"

	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Listing Engine
// ============================================================================

// ListEntry is one child in a directory listing, annotated with the
// requesting user's permission.
type ListEntry struct {
	Path       string          `json:"path"`
	Name       string          `json:"name"`
	Type       grid.EntryType  `json:"type"`
	Permission grid.Permission `json:"permission"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`

	// Size is reported for files only.
	Size uint64 `json:"size,omitempty"`

	// HasSubDirs is reported optimistically for directories: it is true
	// without exhaustively verifying that subdirectories exist.
	HasSubDirs bool `json:"has_sub_dirs,omitempty"`
}

// Listing is a single-level snapshot of a directory.
//
// Folders is always present; Files is present only when requested.
type Listing struct {
	Path       string          `json:"path"`
	Name       string          `json:"name"`
	Permission grid.Permission `json:"permission"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
	Folders    []ListEntry     `json:"folders"`
	Files      []ListEntry     `json:"files,omitempty"`
}

// ListOptions controls directory listing behavior.
type ListOptions struct {
	// IncludeFiles adds the Files slice to the listing.
	IncludeFiles bool

	// Exclude drops entries whose full path or basename appears in the
	// list. Used to hide reserved names such as trash roots.
	Exclude []string

	// ClaimOwnership grants the caller ownership of the path before
	// listing when the caller does not own it yet. Used for system and
	// shared roots that are provisioned lazily.
	ClaimOwnership bool
}

// PathPermissions reports, for one path, the permission entries of every
// principal other than the requesting user and the service principal.
type PathPermissions struct {
	Path        string                `json:"path"`
	Permissions []grid.UserPermission `json:"permissions"`
}

// ListDirectory returns a single-level snapshot of path annotated with the
// user's permissions. It never recurses: subdirectory contents require
// further calls.
func (s *Service) ListDirectory(ctx context.Context, user, path string, opts ListOptions) (*Listing, error) {
	ctx, span, start := s.begin(ctx, "list-directory", user, telemetry.Path(path))
	defer span.End()

	listing, err := s.listDirectory(ctx, user, path, opts)
	s.observe(ctx, "list-directory", start, err)
	return listing, err
}

func (s *Service) listDirectory(ctx context.Context, user, path string, opts ListOptions) (*Listing, error) {
	path = vpath.Clean(path)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkIsDir(ctx, path) },
	)
	if err != nil {
		return nil, err
	}

	if opts.ClaimOwnership {
		if err := s.claimOwnership(ctx, user, path); err != nil {
			return nil, err
		}
	}
	if err := s.checkReadable(ctx, user, path); err != nil {
		return nil, err
	}

	stat, err := s.store.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	perm, err := s.store.Permission(ctx, user, path)
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		Path:       stat.Path,
		Name:       stat.Name,
		Permission: perm,
		CreatedAt:  stat.CreatedAt,
		ModifiedAt: stat.ModifiedAt,
		Folders:    []ListEntry{},
	}
	if opts.IncludeFiles {
		listing.Files = []ListEntry{}
	}

	children, err := s.store.ListChildren(ctx, path)
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		if slices.Contains(opts.Exclude, child.Path) || slices.Contains(opts.Exclude, child.Name) {
			continue
		}

		readable, err := s.store.IsReadable(ctx, user, child.Path)
		if err != nil {
			return nil, err
		}
		if !readable {
			continue
		}

		childPerm, err := s.store.Permission(ctx, user, child.Path)
		if err != nil {
			return nil, err
		}

		entry := ListEntry{
			Path:       child.Path,
			Name:       child.Name,
			Type:       child.Type,
			Permission: childPerm,
			CreatedAt:  child.CreatedAt,
			ModifiedAt: child.ModifiedAt,
		}

		switch child.Type {
		case grid.EntryTypeDirectory:
			entry.HasSubDirs = true
			listing.Folders = append(listing.Folders, entry)
		case grid.EntryTypeFile:
			if opts.IncludeFiles {
				entry.Size = child.Size
				listing.Files = append(listing.Files, entry)
			}
		}
	}

	return listing, nil
}

// claimOwnership grants the user ownership of path when not yet held,
// preserving existing read/write bits.
func (s *Service) claimOwnership(ctx context.Context, user, path string) error {
	owns, err := s.store.Owns(ctx, user, path)
	if err != nil {
		return err
	}
	if owns {
		return nil
	}

	current, err := s.store.Permission(ctx, user, path)
	if err != nil {
		return err
	}
	claimed := grid.Permission{Read: current.Read, Write: current.Write, Own: true}
	return s.store.SetPermission(ctx, user, path, claimed, false)
}

// ListPermissions returns, for each path, the permission entries of every
// principal except the requesting user and the service principal. The user
// must own every requested path.
func (s *Service) ListPermissions(ctx context.Context, user string, paths []string) ([]PathPermissions, error) {
	ctx, span, start := s.begin(ctx, "list-permissions", user, telemetry.PathCount(len(paths)))
	defer span.End()

	result, err := s.listPermissions(ctx, user, paths)
	s.observe(ctx, "list-permissions", start, err)
	return result, err
}

func (s *Service) listPermissions(ctx context.Context, user string, paths []string) ([]PathPermissions, error) {
	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathsExist(ctx, paths) },
		func() error { return s.checkOwnsAll(ctx, user, paths) },
	)
	if err != nil {
		return nil, err
	}

	result := make([]PathPermissions, 0, len(paths))
	for _, path := range paths {
		perms, err := s.store.ListPermissions(ctx, path)
		if err != nil {
			return nil, err
		}

		filtered := make([]grid.UserPermission, 0, len(perms))
		for _, p := range perms {
			if p.User == user || p.User == s.serviceUser {
				continue
			}
			filtered = append(filtered, p)
		}

		result = append(result, PathPermissions{Path: vpath.Clean(path), Permissions: filtered})
	}
	return result, nil
}
