package dataops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverr "github.com/marmos91/datavault/pkg/dataops/errors"
	"github.com/marmos91/datavault/pkg/grid"
)

func TestCreateDir(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatorAndServicePrincipalOwn", func(t *testing.T) {
		svc, store := newTestService(t)

		entry, err := svc.CreateDir(ctx, "alice", "/zone/home/alice/newdir")
		require.NoError(t, err)
		assert.Equal(t, "/zone/home/alice/newdir", entry.Path)
		assert.Equal(t, grid.EntryTypeDirectory, entry.Type)

		assert.Equal(t, fullPerm, permOf(t, store, "alice", "/zone/home/alice/newdir"))
		assert.Equal(t, fullPerm, permOf(t, store, testSvcUser, "/zone/home/alice/newdir"))
	})

	t.Run("RejectsMissingParent", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.CreateDir(ctx, "alice", "/zone/home/alice/no/such/dir")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrDoesNotExist, dverr.CodeOf(err))
	})

	t.Run("RejectsOccupiedPath", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/taken")

		_, err := svc.CreateDir(ctx, "alice", "/zone/home/alice/taken")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrAlreadyExists, dverr.CodeOf(err))
	})

	t.Run("RejectsUnwritableParent", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.CreateDir(ctx, "bob", "/zone/home/alice/intruder")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrNotWritable, dverr.CodeOf(err))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesAllPaths", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/old")
		writeFileOwned(t, store, "alice", "/zone/home/alice/stale.txt", 1)

		require.NoError(t, svc.Delete(ctx, "alice", []string{"/zone/home/alice/old", "/zone/home/alice/stale.txt"}))
		assert.False(t, exists(t, store, "/zone/home/alice/old"))
		assert.False(t, exists(t, store, "/zone/home/alice/stale.txt"))
	})

	t.Run("HomeDirectoryIsProtected", func(t *testing.T) {
		svc, store := newTestService(t)

		for _, path := range []string{"/zone/home/alice", "/zone/home", "/zone"} {
			err := svc.Delete(ctx, "alice", []string{path})
			require.Error(t, err, "deleting %q must be rejected", path)
			assert.Equal(t, dverr.ErrNotAuthorized, dverr.CodeOf(err))
			assert.True(t, exists(t, store, path))
		}
	})

	t.Run("OneMissingPathAbortsWholeBatch", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/keep")

		err := svc.Delete(ctx, "alice", []string{"/zone/home/alice/keep", "/zone/home/alice/phantom"})
		require.Error(t, err)

		cond := dverr.AsCondition(err)
		require.NotNil(t, cond)
		assert.Equal(t, dverr.ErrDoesNotExist, cond.Code)
		assert.Equal(t, []string{"/zone/home/alice/phantom"}, cond.Subjects)

		assert.True(t, exists(t, store, "/zone/home/alice/keep"), "no deletion may happen when validation fails")
	})

	t.Run("OneUnwritablePathAbortsWholeBatch", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/mine")
		mkdirOwned(t, store, "bob", "/zone/home/bob/his")

		err := svc.Delete(ctx, "alice", []string{"/zone/home/alice/mine", "/zone/home/bob/his"})
		require.Error(t, err)
		assert.Equal(t, dverr.ErrNotWritable, dverr.CodeOf(err))
		assert.True(t, exists(t, store, "/zone/home/alice/mine"))
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("RelocatesKeepingBasenames", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/a.txt", 1)
		writeFileOwned(t, store, "alice", "/zone/home/alice/b.txt", 2)
		mkdirOwned(t, store, "alice", "/zone/home/alice/archive")

		moved, err := svc.Move(ctx, "alice", []string{"/zone/home/alice/a.txt", "/zone/home/alice/b.txt"}, "/zone/home/alice/archive")
		require.NoError(t, err)
		assert.Equal(t, []string{"/zone/home/alice/archive/a.txt", "/zone/home/alice/archive/b.txt"}, moved)

		assert.False(t, exists(t, store, "/zone/home/alice/a.txt"))
		assert.True(t, exists(t, store, "/zone/home/alice/archive/a.txt"))
	})

	t.Run("OneCollisionAbortsWholeBatch", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/a.txt", 1)
		writeFileOwned(t, store, "alice", "/zone/home/alice/b.txt", 2)
		mkdirOwned(t, store, "alice", "/zone/home/alice/archive")
		writeFileOwned(t, store, "alice", "/zone/home/alice/archive/b.txt", 9)

		_, err := svc.Move(ctx, "alice", []string{"/zone/home/alice/a.txt", "/zone/home/alice/b.txt"}, "/zone/home/alice/archive")
		require.Error(t, err)

		cond := dverr.AsCondition(err)
		require.NotNil(t, cond)
		assert.Equal(t, dverr.ErrAlreadyExists, cond.Code)
		assert.Equal(t, []string{"/zone/home/alice/archive/b.txt"}, cond.Subjects)

		// The non-colliding source stays untouched.
		assert.True(t, exists(t, store, "/zone/home/alice/a.txt"))
	})

	t.Run("RejectsFileDestination", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/a.txt", 1)
		writeFileOwned(t, store, "alice", "/zone/home/alice/dest.txt", 1)

		_, err := svc.Move(ctx, "alice", []string{"/zone/home/alice/a.txt"}, "/zone/home/alice/dest.txt")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrNotAFolder, dverr.CodeOf(err))
	})

	t.Run("RejectsDestinationInsideSource", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/a")
		mkdirOwned(t, store, "alice", "/zone/home/alice/a/b")

		moved, err := svc.Move(ctx, "alice", []string{"/zone/home/alice/a"}, "/zone/home/alice/a/b")
		require.Error(t, err)
		assert.Empty(t, moved)

		cond := dverr.AsCondition(err)
		require.NotNil(t, cond)
		assert.Equal(t, dverr.ErrNotAuthorized, cond.Code)
		assert.Equal(t, []string{"/zone/home/alice/a"}, cond.Subjects)

		// The tree is untouched: the source still hangs off its parent and
		// the destination is still reachable through it.
		assert.True(t, exists(t, store, "/zone/home/alice/a"))
		assert.True(t, exists(t, store, "/zone/home/alice/a/b"))
	})

	t.Run("RejectsDestinationEqualToSource", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/a")

		_, err := svc.Move(ctx, "alice", []string{"/zone/home/alice/a"}, "/zone/home/alice/a")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrNotAuthorized, dverr.CodeOf(err))
		assert.True(t, exists(t, store, "/zone/home/alice/a"))
	})
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("MovesToFullDestination", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/draft.txt", 1)

		require.NoError(t, svc.Rename(ctx, "alice", "/zone/home/alice/draft.txt", "/zone/home/alice/final.txt"))
		assert.False(t, exists(t, store, "/zone/home/alice/draft.txt"))
		assert.True(t, exists(t, store, "/zone/home/alice/final.txt"))
	})

	t.Run("RejectsOccupiedDestination", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/draft.txt", 1)
		writeFileOwned(t, store, "alice", "/zone/home/alice/final.txt", 1)

		err := svc.Rename(ctx, "alice", "/zone/home/alice/draft.txt", "/zone/home/alice/final.txt")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrAlreadyExists, dverr.CodeOf(err))
	})

	t.Run("RejectsMissingSource", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.Rename(ctx, "alice", "/zone/home/alice/nope.txt", "/zone/home/alice/final.txt")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrDoesNotExist, dverr.CodeOf(err))
	})

	t.Run("RejectsDestinationInsideSource", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/a")
		mkdirOwned(t, store, "alice", "/zone/home/alice/a/b")

		err := svc.Rename(ctx, "alice", "/zone/home/alice/a", "/zone/home/alice/a/b/a")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrNotAuthorized, dverr.CodeOf(err))
		assert.True(t, exists(t, store, "/zone/home/alice/a/b"))
	})
}

func TestCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicatesAndTransfersOwnership", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/data.csv", 10)
		require.NoError(t, store.SetPermission(ctx, "bob", "/zone/home/alice/data.csv", grid.Permission{Read: true}, false))

		copied, err := svc.Copy(ctx, "bob", []string{"/zone/home/alice/data.csv"}, "/zone/home/bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"/zone/home/bob/data.csv"}, copied)

		// Source stays; bob owns the copy.
		assert.True(t, exists(t, store, "/zone/home/alice/data.csv"))
		assert.Equal(t, fullPerm, permOf(t, store, "bob", "/zone/home/bob/data.csv"))
	})

	t.Run("RequiresReadableSourcesListingAll", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/a.csv", 1)
		writeFileOwned(t, store, "alice", "/zone/home/alice/b.csv", 1)

		_, err := svc.Copy(ctx, "bob", []string{"/zone/home/alice/a.csv", "/zone/home/alice/b.csv"}, "/zone/home/bob")
		require.Error(t, err)

		cond := dverr.AsCondition(err)
		require.NotNil(t, cond)
		assert.Equal(t, dverr.ErrNotReadable, cond.Code)
		assert.Equal(t, []string{"/zone/home/alice/a.csv", "/zone/home/alice/b.csv"}, cond.Subjects)
	})

	t.Run("OneCollisionAbortsWholeBatch", func(t *testing.T) {
		svc, store := newTestService(t)
		writeFileOwned(t, store, "alice", "/zone/home/alice/a.csv", 1)
		writeFileOwned(t, store, "alice", "/zone/home/bob/a.csv", 1)
		require.NoError(t, store.SetPermission(ctx, "alice", "/zone/home/bob", grid.Permission{Read: true, Write: true}, false))

		_, err := svc.Copy(ctx, "alice", []string{"/zone/home/alice/a.csv"}, "/zone/home/bob")
		require.Error(t, err)
		assert.Equal(t, dverr.ErrAlreadyExists, dverr.CodeOf(err))
	})

	t.Run("RejectsDestinationInsideSource", func(t *testing.T) {
		svc, store := newTestService(t)
		mkdirOwned(t, store, "alice", "/zone/home/alice/a")
		mkdirOwned(t, store, "alice", "/zone/home/alice/a/b")

		copied, err := svc.Copy(ctx, "alice", []string{"/zone/home/alice/a"}, "/zone/home/alice/a/b")
		require.Error(t, err)
		assert.Empty(t, copied)

		cond := dverr.AsCondition(err)
		require.NotNil(t, cond)
		assert.Equal(t, dverr.ErrNotAuthorized, cond.Code)
		assert.Equal(t, []string{"/zone/home/alice/a"}, cond.Subjects)
	})
}
