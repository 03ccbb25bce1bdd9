package dataops

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Cart credential issuance
// ============================================================================

// IssueCart mints temporary transfer credentials for the given paths.
//
// Download carts require every path to be readable; upload carts require the
// parent directory of every path to be writable. The credential key comes
// from the backend when it supplies one, otherwise a fresh uuid is stamped.
func (s *Service) IssueCart(ctx context.Context, user string, paths []string, direction grid.CartDirection) (*grid.CartCredential, error) {
	ctx, span, start := s.begin(ctx, "issue-cart", user,
		telemetry.PathCount(len(paths)), telemetry.CartDirection(direction.String()))
	defer span.End()

	cred, err := s.issueCart(ctx, user, paths, direction)
	s.observe(ctx, "issue-cart", start, err)
	return cred, err
}

func (s *Service) issueCart(ctx context.Context, user string, paths []string, direction grid.CartDirection) (*grid.CartCredential, error) {
	checks := []func() error{
		func() error { return s.checkUserExists(ctx, user) },
	}

	switch direction {
	case grid.CartUpload:
		// Upload targets need not exist yet; their parents must take writes.
		parents := make([]string, len(paths))
		for i, path := range paths {
			parents[i] = vpath.Parent(vpath.Clean(path))
		}
		checks = append(checks,
			func() error { return s.checkPathsExist(ctx, parents) },
			func() error { return s.checkAllWritable(ctx, user, parents) },
		)
	default:
		checks = append(checks,
			func() error { return s.checkPathsExist(ctx, paths) },
			func() error { return s.checkAllReadable(ctx, user, paths) },
		)
	}

	if err := runChecks(checks...); err != nil {
		return nil, err
	}

	cred, err := s.store.IssueCart(ctx, user, paths, direction)
	if err != nil {
		return nil, err
	}
	if cred.Key == "" {
		cred.Key = uuid.NewString()
	}
	if cred.IssuedAt.IsZero() {
		cred.IssuedAt = time.Now().UTC()
	}
	telemetry.SetAttributes(ctx, telemetry.CartKey(cred.Key))
	logger.InfoCtx(ctx, "cart issued",
		logger.Direction(direction.String()),
		logger.CartKey(cred.Key),
		logger.PathCount(len(paths)))

	s.auditCart(ctx, user, paths, direction, cred.Key)
	return cred, nil
}

// auditCart records issuance as a best-effort metadata note on the first
// path. Audit failures are logged and never surfaced to the caller.
func (s *Service) auditCart(ctx context.Context, user string, paths []string, direction grid.CartDirection, key string) {
	if direction != grid.CartDownload || len(paths) == 0 {
		return
	}

	avu := grid.AVU{
		Attribute: "datavault::cart-issued",
		Value:     key,
		Unit:      user,
	}
	if err := s.store.AddMetadata(ctx, vpath.Clean(paths[0]), avu); err != nil {
		logger.WarnCtx(ctx, "cart audit note failed",
			logger.Path(paths[0]),
			logger.Attribute(avu.Attribute),
			logger.Err(err))
	}
}
