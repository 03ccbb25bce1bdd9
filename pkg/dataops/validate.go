package dataops

import (
	"context"

	"github.com/marmos91/datavault/internal/vpath"
	dverr "github.com/marmos91/datavault/pkg/dataops/errors"
)

// ============================================================================
// Validation Gate
// ============================================================================
//
// Each check either passes silently (nil) or fails with a *errors.Condition
// whose Subjects field is the complete offending subset, computed by
// filtering the input set. Composite validations sequence checks through
// runChecks and abort at the first failure: fail-fast across checks,
// aggregated within a check.

// runChecks executes checks in order and returns the first failure.
func runChecks(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// checkUserExists fails with NotAUser when the principal is unknown.
func (s *Service) checkUserExists(ctx context.Context, user string) error {
	ok, err := s.store.UserExists(ctx, user)
	if err != nil {
		return dverr.Wrap(dverr.ErrNotAUser, err, user)
	}
	if !ok {
		return dverr.NewNotAUser(user)
	}
	return nil
}

// checkUsersExist fails with NotAUser listing every unknown principal.
func (s *Service) checkUsersExist(ctx context.Context, users []string) error {
	var missing []string
	for _, user := range users {
		ok, err := s.store.UserExists(ctx, user)
		if err != nil {
			return dverr.Wrap(dverr.ErrNotAUser, err, user)
		}
		if !ok {
			missing = append(missing, user)
		}
	}

	if len(missing) > 0 {
		return dverr.NewNotAUser(missing...)
	}
	return nil
}

// checkPathExists fails with DoesNotExist when the path is absent.
func (s *Service) checkPathExists(ctx context.Context, path string) error {
	ok, err := s.store.Exists(ctx, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrDoesNotExist, err, path)
	}
	if !ok {
		return dverr.NewDoesNotExist(path)
	}
	return nil
}

// checkPathsExist fails with DoesNotExist listing exactly the absent paths.
func (s *Service) checkPathsExist(ctx context.Context, paths []string) error {
	var missing []string
	for _, path := range paths {
		ok, err := s.store.Exists(ctx, path)
		if err != nil {
			return dverr.Wrap(dverr.ErrDoesNotExist, err, path)
		}
		if !ok {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return dverr.NewDoesNotExist(missing...)
	}
	return nil
}

// checkNotExists fails with AlreadyExists when the path is present.
func (s *Service) checkNotExists(ctx context.Context, path string) error {
	ok, err := s.store.Exists(ctx, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrAlreadyExists, err, path)
	}
	if ok {
		return dverr.NewAlreadyExists(path)
	}
	return nil
}

// checkNoneExist fails with AlreadyExists listing exactly the occupied
// paths. Used for batch destination-collision checks, where a single
// collision must abort the whole batch before any mutation.
func (s *Service) checkNoneExist(ctx context.Context, paths []string) error {
	var taken []string
	for _, path := range paths {
		ok, err := s.store.Exists(ctx, path)
		if err != nil {
			return dverr.Wrap(dverr.ErrAlreadyExists, err, path)
		}
		if ok {
			taken = append(taken, path)
		}
	}

	if len(taken) > 0 {
		return dverr.NewAlreadyExists(taken...)
	}
	return nil
}

// checkIsDir fails with NotAFolder when the path is not a directory.
func (s *Service) checkIsDir(ctx context.Context, path string) error {
	ok, err := s.store.IsDir(ctx, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrNotAFolder, err, path)
	}
	if !ok {
		return dverr.NewNotAFolder(path)
	}
	return nil
}

// checkIsFile fails with NotAFile when the path is not a file.
func (s *Service) checkIsFile(ctx context.Context, path string) error {
	ok, err := s.store.IsFile(ctx, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrNotAFile, err, path)
	}
	if !ok {
		return dverr.NewNotAFile(path)
	}
	return nil
}

// checkReadable fails with NotReadable when the user cannot read the path.
func (s *Service) checkReadable(ctx context.Context, user, path string) error {
	ok, err := s.store.IsReadable(ctx, user, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrNotReadable, err, path)
	}
	if !ok {
		return dverr.NewNotReadable(path)
	}
	return nil
}

// checkAllReadable fails with NotReadable listing exactly the unreadable
// paths.
func (s *Service) checkAllReadable(ctx context.Context, user string, paths []string) error {
	var denied []string
	for _, path := range paths {
		ok, err := s.store.IsReadable(ctx, user, path)
		if err != nil {
			return dverr.Wrap(dverr.ErrNotReadable, err, path)
		}
		if !ok {
			denied = append(denied, path)
		}
	}

	if len(denied) > 0 {
		return dverr.NewNotReadable(denied...)
	}
	return nil
}

// checkWritable fails with NotWritable when the user cannot write the path.
func (s *Service) checkWritable(ctx context.Context, user, path string) error {
	ok, err := s.store.IsWritable(ctx, user, path)
	if err != nil {
		return dverr.Wrap(dverr.ErrNotWritable, err, path)
	}
	if !ok {
		return dverr.NewNotWritable(path)
	}
	return nil
}

// checkAllWritable fails with NotWritable listing exactly the read-only
// paths.
func (s *Service) checkAllWritable(ctx context.Context, user string, paths []string) error {
	var denied []string
	for _, path := range paths {
		ok, err := s.store.IsWritable(ctx, user, path)
		if err != nil {
			return dverr.Wrap(dverr.ErrNotWritable, err, path)
		}
		if !ok {
			denied = append(denied, path)
		}
	}

	if len(denied) > 0 {
		return dverr.NewNotWritable(denied...)
	}
	return nil
}

// checkOwnsAll fails with NotOwner listing exactly the paths the user does
// not own.
func (s *Service) checkOwnsAll(ctx context.Context, user string, paths []string) error {
	var notOwned []string
	for _, path := range paths {
		ok, err := s.store.Owns(ctx, user, path)
		if err != nil {
			return dverr.Wrap(dverr.ErrNotOwner, err, path)
		}
		if !ok {
			notOwned = append(notOwned, path)
		}
	}

	if len(notOwned) > 0 {
		return dverr.NewNotOwner(notOwned...)
	}
	return nil
}

// checkDestOutsideSources fails with NotAuthorized listing every source the
// destination directory equals or lies inside. Relocating an object into its
// own subtree would detach the subtree from the namespace.
func (s *Service) checkDestOutsideSources(destDir string, sources []string) error {
	destDir = vpath.Clean(destDir)

	var offending []string
	for _, source := range sources {
		source = vpath.Clean(source)
		if source == destDir || vpath.IsAncestor(source, destDir) {
			offending = append(offending, source)
		}
	}

	if len(offending) > 0 {
		return &dverr.Condition{
			Code:     dverr.ErrNotAuthorized,
			Subjects: offending,
			Message:  "destination lies inside a source",
		}
	}
	return nil
}

// checkNotHome fails with NotAuthorized when path is the user's own home
// directory, the realm home root, or the realm root itself. Home-directory
// protection applies even when the path is otherwise writable.
func (s *Service) checkNotHome(user, path string) error {
	path = vpath.Clean(path)

	protected := []string{
		s.realmRoot,
		vpath.Join(s.realmRoot, "home"),
		s.HomeDir(user),
	}
	for _, p := range protected {
		if path == p {
			return dverr.NewNotAuthorized(path, "home directories cannot be deleted")
		}
	}
	return nil
}
