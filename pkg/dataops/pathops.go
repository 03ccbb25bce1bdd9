package dataops

import (
	"context"
	"errors"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	dverr "github.com/marmos91/datavault/pkg/dataops/errors"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Path Operation Engine
// ============================================================================
//
// Every operation is one validated sequence ending in exactly one structural
// mutation per object through the facade: validate existence/type/capability
// and destination collisions, then mutate. Batch validations run over the
// complete input before the first mutation, so a single collision aborts the
// whole batch untouched.

// CreateDir creates a directory at path. The creator becomes owner, and
// ownership is additionally normalized against the configured service
// principal so the service retains administrative access.
func (s *Service) CreateDir(ctx context.Context, user, path string) (*grid.Entry, error) {
	ctx, span, start := s.begin(ctx, "create-dir", user, telemetry.Path(path))
	defer span.End()

	entry, err := s.createDir(ctx, user, path)
	s.observe(ctx, "create-dir", start, err)
	return entry, err
}

func (s *Service) createDir(ctx context.Context, user, path string) (*grid.Entry, error) {
	path = vpath.Clean(path)
	parent := vpath.Parent(path)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, parent) },
		func() error { return s.checkIsDir(ctx, parent) },
		func() error { return s.checkWritable(ctx, user, parent) },
		func() error { return s.checkNotExists(ctx, path) },
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Mkdir(ctx, path); err != nil {
		return nil, err
	}
	if err := s.takeOwnership(ctx, user, path); err != nil {
		return nil, err
	}

	return s.store.Stat(ctx, path)
}

// takeOwnership grants full permission to the creating user and to the
// service principal.
func (s *Service) takeOwnership(ctx context.Context, user, path string) error {
	full := grid.Permission{Read: true, Write: true, Own: true}

	if err := s.store.SetPermission(ctx, user, path, full, false); err != nil {
		return err
	}
	if s.serviceUser != "" && s.serviceUser != user {
		if err := s.store.SetPermission(ctx, s.serviceUser, path, full, false); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every path. Home-directory protection applies: a path equal
// to the user's own home directory, the realm home root or the realm root is
// rejected with NotAuthorized even when otherwise writable.
//
// Validation covers the full batch before any deletion; once deletions
// begin, each path is processed independently.
func (s *Service) Delete(ctx context.Context, user string, paths []string) error {
	ctx, span, start := s.begin(ctx, "delete", user, telemetry.PathCount(len(paths)))
	defer span.End()

	err := s.deletePaths(ctx, user, paths)
	s.observe(ctx, "delete", start, err)
	return err
}

func (s *Service) deletePaths(ctx context.Context, user string, paths []string) error {
	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathsExist(ctx, paths) },
		func() error {
			for _, path := range paths {
				if err := s.checkNotHome(user, path); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return s.checkAllWritable(ctx, user, paths) },
	)
	if err != nil {
		return err
	}

	var failures []error
	for _, path := range paths {
		if err := s.store.Delete(ctx, vpath.Clean(path)); err != nil {
			logger.WarnCtx(ctx, "delete failed",
				logger.Path(path),
				logger.Err(err))
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// Move relocates every source into destDir, keeping basenames.
//
// All destination paths are computed and collision-checked before the first
// move: one pre-existing collision aborts the entire batch with the complete
// colliding subset. Moves themselves are independent per source, with no
// rollback of completed moves on later failure.
func (s *Service) Move(ctx context.Context, user string, sources []string, destDir string) ([]string, error) {
	ctx, span, start := s.begin(ctx, "move", user,
		telemetry.PathCount(len(sources)), telemetry.Dest(destDir))
	defer span.End()

	moved, err := s.move(ctx, user, sources, destDir)
	s.observe(ctx, "move", start, err)
	return moved, err
}

func (s *Service) move(ctx context.Context, user string, sources []string, destDir string) ([]string, error) {
	destDir = vpath.Clean(destDir)
	dests := destinationPaths(sources, destDir)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathsExist(ctx, sources) },
		func() error { return s.checkAllWritable(ctx, user, sources) },
		func() error { return s.checkPathExists(ctx, destDir) },
		func() error { return s.checkIsDir(ctx, destDir) },
		func() error { return s.checkDestOutsideSources(destDir, sources) },
		func() error { return s.checkWritable(ctx, user, destDir) },
		func() error { return s.checkNoneExist(ctx, dests) },
	)
	if err != nil {
		return nil, err
	}

	var moved []string
	var failures []error
	for i, source := range sources {
		if err := s.store.Move(ctx, vpath.Clean(source), dests[i]); err != nil {
			logger.WarnCtx(ctx, "move failed",
				logger.Path(source),
				logger.Dest(dests[i]),
				logger.Err(err))
			failures = append(failures, err)
			continue
		}
		moved = append(moved, dests[i])
	}
	return moved, errors.Join(failures...)
}

// Rename moves a single source to the full destination path dest, then
// verifies the move completed: a left-over source or missing destination
// is reported as IncompleteRename.
func (s *Service) Rename(ctx context.Context, user, source, dest string) error {
	ctx, span, start := s.begin(ctx, "rename", user,
		telemetry.Path(source), telemetry.Dest(dest))
	defer span.End()

	err := s.rename(ctx, user, source, dest)
	s.observe(ctx, "rename", start, err)
	return err
}

func (s *Service) rename(ctx context.Context, user, source, dest string) error {
	source = vpath.Clean(source)
	dest = vpath.Clean(dest)
	destParent := vpath.Parent(dest)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, source) },
		func() error { return s.checkWritable(ctx, user, source) },
		func() error { return s.checkPathExists(ctx, destParent) },
		func() error { return s.checkIsDir(ctx, destParent) },
		func() error { return s.checkDestOutsideSources(destParent, []string{source}) },
		func() error { return s.checkWritable(ctx, user, destParent) },
		func() error { return s.checkNotExists(ctx, dest) },
	)
	if err != nil {
		return err
	}

	if err := s.store.Move(ctx, source, dest); err != nil {
		return err
	}

	// The underlying move must report a complete result: the source gone
	// and the destination in place.
	sourceLeft, err := s.store.Exists(ctx, source)
	if err != nil {
		return err
	}
	destPresent, err := s.store.Exists(ctx, dest)
	if err != nil {
		return err
	}
	if sourceLeft || !destPresent {
		return dverr.NewIncompleteRename(source, dest)
	}
	return nil
}

// Copy duplicates every source into destDir, keeping basenames. The copying
// user becomes owner of each copy. Copies are independent per source: no
// rollback of completed copies on later failure.
func (s *Service) Copy(ctx context.Context, user string, sources []string, destDir string) ([]string, error) {
	ctx, span, start := s.begin(ctx, "copy", user,
		telemetry.PathCount(len(sources)), telemetry.Dest(destDir))
	defer span.End()

	copied, err := s.copyPaths(ctx, user, sources, destDir)
	s.observe(ctx, "copy", start, err)
	return copied, err
}

func (s *Service) copyPaths(ctx context.Context, user string, sources []string, destDir string) ([]string, error) {
	destDir = vpath.Clean(destDir)
	dests := destinationPaths(sources, destDir)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathsExist(ctx, sources) },
		func() error { return s.checkAllReadable(ctx, user, sources) },
		func() error { return s.checkPathExists(ctx, destDir) },
		func() error { return s.checkIsDir(ctx, destDir) },
		func() error { return s.checkDestOutsideSources(destDir, sources) },
		func() error { return s.checkWritable(ctx, user, destDir) },
		func() error { return s.checkNoneExist(ctx, dests) },
	)
	if err != nil {
		return nil, err
	}

	var copied []string
	var failures []error
	for i, source := range sources {
		if err := s.store.Copy(ctx, vpath.Clean(source), dests[i]); err != nil {
			logger.WarnCtx(ctx, "copy failed",
				logger.Path(source),
				logger.Dest(dests[i]),
				logger.Err(err))
			failures = append(failures, err)
			continue
		}
		if err := s.takeOwnership(ctx, user, dests[i]); err != nil {
			failures = append(failures, err)
			continue
		}
		copied = append(copied, dests[i])
	}
	return copied, errors.Join(failures...)
}

// destinationPaths computes destDir/basename(source) for every source.
func destinationPaths(sources []string, destDir string) []string {
	dests := make([]string, len(sources))
	for i, source := range sources {
		dests[i] = vpath.Join(destDir, vpath.Base(source))
	}
	return dests
}
