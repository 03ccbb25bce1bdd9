package dataops

import (
	"context"
	"errors"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
)

// ============================================================================
// Trash/Restore Engine
// ============================================================================
//
// Trashed objects keep their original placement encoded in their position
// under the trash root: an object trashed from home/alice/projects/a lives at
// trashRoot/projects/a. Restoration inverts that mapping, swapping the stored
// basename for the caller-supplied display name.

// RestorationPath computes where a trashed object goes when restored: the
// user's home directory, extended by the trashed object's position relative
// to the trash root, ending in displayName.
func (s *Service) RestorationPath(user, trashPath, displayName, trashRoot string) string {
	rel := vpath.RelativeTo(vpath.Parent(vpath.Clean(trashPath)), vpath.Clean(trashRoot))
	return vpath.Join(s.HomeDir(user), rel, displayName)
}

// Restore moves one trashed object back under the user's home directory,
// creating missing intermediate directories along the restoration path.
func (s *Service) Restore(ctx context.Context, user, trashPath, displayName, trashRoot string) (string, error) {
	ctx, span, start := s.begin(ctx, "restore", user, telemetry.Path(trashPath))
	defer span.End()

	restored, err := s.restore(ctx, user, trashPath, displayName, trashRoot)
	s.observe(ctx, "restore", start, err)
	return restored, err
}

func (s *Service) restore(ctx context.Context, user, trashPath, displayName, trashRoot string) (string, error) {
	trashPath = vpath.Clean(trashPath)
	target := s.RestorationPath(user, trashPath, displayName, trashRoot)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, trashPath) },
		func() error { return s.checkWritable(ctx, user, trashPath) },
		func() error { return s.checkNotExists(ctx, target) },
	)
	if err != nil {
		return "", err
	}

	if err := s.ensureDir(ctx, user, vpath.Parent(target)); err != nil {
		return "", err
	}
	if err := s.checkWritable(ctx, user, vpath.Parent(target)); err != nil {
		return "", err
	}

	if err := s.store.Move(ctx, trashPath, target); err != nil {
		return "", err
	}
	return target, nil
}

// ensureDir creates path and any missing ancestors below the realm root,
// granting the user ownership of each directory it creates.
func (s *Service) ensureDir(ctx context.Context, user, path string) error {
	exists, err := s.store.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// Walk top-down so every Mkdir has an existing parent.
	missing := []string{path}
	for _, ancestor := range vpath.AncestorsBelow(path, s.realmRoot) {
		exists, err := s.store.Exists(ctx, ancestor)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		missing = append(missing, ancestor)
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if err := s.store.Mkdir(ctx, missing[i]); err != nil {
			return err
		}
		if err := s.takeOwnership(ctx, user, missing[i]); err != nil {
			return err
		}
	}
	return nil
}

// EmptyTrash deletes every entry under the user's trash root. The root itself
// stays in place. Deletions are independent per entry.
func (s *Service) EmptyTrash(ctx context.Context, user, trashRoot string) error {
	ctx, span, start := s.begin(ctx, "empty-trash", user, telemetry.Path(trashRoot))
	defer span.End()

	err := s.emptyTrash(ctx, user, trashRoot)
	s.observe(ctx, "empty-trash", start, err)
	return err
}

func (s *Service) emptyTrash(ctx context.Context, user, trashRoot string) error {
	trashRoot = vpath.Clean(trashRoot)

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, trashRoot) },
		func() error { return s.checkIsDir(ctx, trashRoot) },
		func() error { return s.checkWritable(ctx, user, trashRoot) },
	)
	if err != nil {
		return err
	}

	children, err := s.store.ListChildren(ctx, trashRoot)
	if err != nil {
		return err
	}

	var failures []error
	for _, child := range children {
		if err := s.store.Delete(ctx, child.Path); err != nil {
			logger.WarnCtx(ctx, "trash entry delete failed",
				logger.Path(child.Path),
				logger.Err(err))
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
