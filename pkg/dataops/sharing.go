package dataops

import (
	"context"
	"errors"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Access-Control Propagation
// ============================================================================
//
// Sharing an object is not just a permission write on the object: the grantee
// must be able to traverse every ancestor directory to reach it from a
// listing. Share therefore walks the ancestor chain up to the realm root
// granting read, while Unshare walks the same chain pruning read only where
// no other accessible object remains. The asymmetry is deliberate: granting
// always reaches the root, revoking stops early so it never collaterally
// breaks an unrelated share.

// Share grants perm on every path to every user, making each path reachable
// by granting read on all intermediate directories up to the realm root.
//
// Preconditions (all-or-nothing, checked before any mutation): the owner and
// every grantee exist, every path exists, and the owner owns every path.
// Once mutations begin, each (grantee, path) pair is processed independently:
// a failure on one pair does not roll back or stop the others.
//
// Share is idempotent: repeating a call yields the same final permission
// state.
func (s *Service) Share(ctx context.Context, owner string, users, paths []string, perm grid.Permission) error {
	ctx, span, start := s.begin(ctx, "share", owner, telemetry.PathCount(len(paths)))
	defer span.End()

	err := runChecks(
		func() error { return s.checkUserExists(ctx, owner) },
		func() error { return s.checkUsersExist(ctx, users) },
		func() error { return s.checkPathsExist(ctx, paths) },
		func() error { return s.checkOwnsAll(ctx, owner, paths) },
	)
	if err != nil {
		s.observe(ctx, "share", start, err)
		return err
	}

	var failures []error
	for _, user := range users {
		for _, path := range paths {
			if err := s.shareOne(ctx, user, path, perm); err != nil {
				logger.WarnCtx(ctx, "share pair failed",
					logger.Grantee(user),
					logger.Path(path),
					logger.Err(err))
				failures = append(failures, err)
			}
		}
	}

	err = errors.Join(failures...)
	s.observe(ctx, "share", start, err)
	return err
}

// shareOne applies one (grantee, path) grant.
//
// Ordering is required: ancestors first, then the target, then the
// inheritance flag. Granting the target before its ancestors are traversable
// would leave it unreachable from a listing.
func (s *Service) shareOne(ctx context.Context, grantee, path string, perm grid.Permission) error {
	// 1. Make every ancestor traversable. Existing write/own bits on the
	// ancestor are preserved: the grantee gains visibility, never elevation.
	for _, ancestor := range vpath.AncestorsBelow(path, s.realmRoot) {
		current, err := s.store.Permission(ctx, grantee, ancestor)
		if err != nil {
			return err
		}

		granted := grid.Permission{Read: true, Write: current.Write, Own: current.Own}
		if err := s.store.SetPermission(ctx, grantee, ancestor, granted, false); err != nil {
			return err
		}
	}

	// 2. Exactly the requested triple on the target, recursively.
	if err := s.store.SetPermission(ctx, grantee, path, perm, true); err != nil {
		return err
	}

	// 3. Future children of a shared directory must be visible without a
	// fresh share call.
	isDir, err := s.store.IsDir(ctx, path)
	if err != nil {
		return err
	}
	if isDir {
		if err := s.store.SetInherit(ctx, path, true); err != nil {
			return err
		}
	}
	return nil
}

// Unshare removes every user's permission on every path, then prunes
// now-unnecessary read access on ancestor directories.
//
// Preconditions mirror Share. The ancestor walk stops at the first ancestor
// through which the revokee can still reach some other readable object: a
// readable immediate child of that ancestor. This is a heuristic, not a
// proof of no orphaned access; it is preserved as observed behavior.
func (s *Service) Unshare(ctx context.Context, owner string, users, paths []string) error {
	ctx, span, start := s.begin(ctx, "unshare", owner, telemetry.PathCount(len(paths)))
	defer span.End()

	err := runChecks(
		func() error { return s.checkUserExists(ctx, owner) },
		func() error { return s.checkUsersExist(ctx, users) },
		func() error { return s.checkPathsExist(ctx, paths) },
		func() error { return s.checkOwnsAll(ctx, owner, paths) },
	)
	if err != nil {
		s.observe(ctx, "unshare", start, err)
		return err
	}

	var failures []error
	for _, user := range users {
		for _, path := range paths {
			if err := s.unshareOne(ctx, user, path); err != nil {
				logger.WarnCtx(ctx, "unshare pair failed",
					logger.Grantee(user),
					logger.Path(path),
					logger.Err(err))
				failures = append(failures, err)
			}
		}
	}

	err = errors.Join(failures...)
	s.observe(ctx, "unshare", start, err)
	return err
}

// unshareOne removes one (revokee, path) grant and prunes the ancestor
// chain.
func (s *Service) unshareOne(ctx context.Context, revokee, path string) error {
	// Remove the revokee from the whole target subtree first, so the prune
	// walk below never mistakes the revoked object for remaining access.
	if err := s.store.RemovePermission(ctx, revokee, path, true); err != nil {
		return err
	}

	for _, ancestor := range vpath.AncestorsBelow(path, s.realmRoot) {
		keep, err := s.hasOtherReadableChild(ctx, revokee, ancestor)
		if err != nil {
			return err
		}
		if keep {
			// Pruning here would break legitimate access to another
			// shared object reachable through this ancestor.
			break
		}

		current, err := s.store.Permission(ctx, revokee, ancestor)
		if err != nil {
			return err
		}
		pruned := grid.Permission{Read: false, Write: current.Write, Own: current.Own}
		if err := s.store.SetPermission(ctx, revokee, ancestor, pruned, false); err != nil {
			return err
		}
	}
	return nil
}

// hasOtherReadableChild reports whether the user can read any immediate
// child of dir.
//
// Checking immediate children suffices because Share maintains the
// invariant that every shared object has a readable ancestor chain: any
// reachable object deeper in the tree implies a readable child here. The
// walk runs bottom-up, so a just-pruned chain member is no longer readable
// and excludes itself naturally.
func (s *Service) hasOtherReadableChild(ctx context.Context, user, dir string) (bool, error) {
	children, err := s.store.ListChildren(ctx, dir)
	if err != nil {
		return false, err
	}

	for _, child := range children {
		readable, err := s.store.IsReadable(ctx, user, child.Path)
		if err != nil {
			return false, err
		}
		if readable {
			return true, nil
		}
	}
	return false, nil
}
