package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/datavault/pkg/grid"
)

var full = grid.Permission{Read: true, Write: true, Own: true}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	ok, err := s.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	s.AddUser("alice")
	ok, err = s.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	s.RemoveUser("alice")
	ok, err = s.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMkdir(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesUnderRoot", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))

		isDir, err := s.IsDir(ctx, "/zone")
		require.NoError(t, err)
		assert.True(t, isDir)
	})

	t.Run("RejectsMissingParent", func(t *testing.T) {
		s := New()
		assert.Error(t, s.Mkdir(ctx, "/zone/home"))
	})

	t.Run("RejectsDuplicate", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		assert.Error(t, s.Mkdir(ctx, "/zone"))
	})

	t.Run("InheritCopiesParentGrants", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		require.NoError(t, s.SetPermission(ctx, "bob", "/zone", grid.Permission{Read: true}, false))
		require.NoError(t, s.SetInherit(ctx, "/zone", true))

		require.NoError(t, s.Mkdir(ctx, "/zone/child"))
		readable, err := s.IsReadable(ctx, "bob", "/zone/child")
		require.NoError(t, err)
		assert.True(t, readable)
	})
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))

	require.NoError(t, s.WriteFile(ctx, "/zone/a.txt", 10))
	entry, err := s.Stat(ctx, "/zone/a.txt")
	require.NoError(t, err)
	assert.Equal(t, grid.EntryTypeFile, entry.Type)
	assert.Equal(t, uint64(10), entry.Size)

	// Rewriting truncates in place.
	require.NoError(t, s.WriteFile(ctx, "/zone/a.txt", 3))
	entry, err = s.Stat(ctx, "/zone/a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), entry.Size)

	// A directory cannot be overwritten as a file.
	require.NoError(t, s.Mkdir(ctx, "/zone/dir"))
	assert.Error(t, s.WriteFile(ctx, "/zone/dir", 1))
}

func TestListChildren(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))
	require.NoError(t, s.Mkdir(ctx, "/zone/beta"))
	require.NoError(t, s.Mkdir(ctx, "/zone/alpha"))
	require.NoError(t, s.WriteFile(ctx, "/zone/gamma.txt", 1))
	require.NoError(t, s.Mkdir(ctx, "/zone/alpha/nested"))

	children, err := s.ListChildren(ctx, "/zone")
	require.NoError(t, err)

	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma.txt"}, names, "immediate children only, sorted by name")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))
	require.NoError(t, s.Mkdir(ctx, "/zone/sub"))
	require.NoError(t, s.WriteFile(ctx, "/zone/sub/a.txt", 1))
	require.NoError(t, s.SetPermission(ctx, "alice", "/zone/sub/a.txt", full, false))
	require.NoError(t, s.AddMetadata(ctx, "/zone/sub/a.txt", grid.AVU{Attribute: "k", Value: "v", Unit: "u"}))

	require.NoError(t, s.Delete(ctx, "/zone/sub"))

	for _, path := range []string{"/zone/sub", "/zone/sub/a.txt"} {
		ok, err := s.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, ok, "%q must be gone", path)
	}

	assert.Error(t, s.Delete(ctx, "/zone/sub"))
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))
	require.NoError(t, s.Mkdir(ctx, "/zone/src"))
	require.NoError(t, s.WriteFile(ctx, "/zone/src/a.txt", 7))
	require.NoError(t, s.Mkdir(ctx, "/zone/dst"))
	require.NoError(t, s.SetPermission(ctx, "alice", "/zone/src/a.txt", full, false))
	require.NoError(t, s.AddMetadata(ctx, "/zone/src/a.txt", grid.AVU{Attribute: "k", Value: "v", Unit: "u"}))

	require.NoError(t, s.Move(ctx, "/zone/src", "/zone/dst/src"))

	// The subtree, its grants and its metadata travel together.
	entry, err := s.Stat(ctx, "/zone/dst/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), entry.Size)
	assert.Equal(t, "a.txt", entry.Name)

	perm, err := s.Permission(ctx, "alice", "/zone/dst/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, full, perm)

	avus, err := s.Metadata(ctx, "/zone/dst/src/a.txt")
	require.NoError(t, err)
	assert.Len(t, avus, 1)

	ok, err := s.Exists(ctx, "/zone/src")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("RejectsOccupiedDestination", func(t *testing.T) {
		require.NoError(t, s.Mkdir(ctx, "/zone/src"))
		assert.Error(t, s.Move(ctx, "/zone/src", "/zone/dst/src"))
	})

	t.Run("RejectsDestinationInsideSource", func(t *testing.T) {
		require.NoError(t, s.Mkdir(ctx, "/zone/nest"))
		require.NoError(t, s.Mkdir(ctx, "/zone/nest/sub"))

		assert.Error(t, s.Move(ctx, "/zone/nest", "/zone/nest/sub/nest"))
		assert.Error(t, s.Move(ctx, "/zone/nest", "/zone/nest"))

		// The tree stays intact: both the source and the inner directory
		// remain reachable from the root.
		ok, err := s.Exists(ctx, "/zone/nest")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.Exists(ctx, "/zone/nest/sub")
		require.NoError(t, err)
		assert.True(t, ok)

		children, err := s.ListChildren(ctx, "/zone/nest")
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "/zone/nest/sub", children[0].Path)
	})
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))
	require.NoError(t, s.Mkdir(ctx, "/zone/src"))
	require.NoError(t, s.WriteFile(ctx, "/zone/src/a.txt", 7))
	require.NoError(t, s.Mkdir(ctx, "/zone/dst"))
	require.NoError(t, s.SetPermission(ctx, "alice", "/zone/src/a.txt", full, false))
	require.NoError(t, s.AddMetadata(ctx, "/zone/src/a.txt", grid.AVU{Attribute: "k", Value: "v", Unit: "u"}))

	require.NoError(t, s.Copy(ctx, "/zone/src", "/zone/dst/src"))

	// Source stays in place.
	ok, err := s.Exists(ctx, "/zone/src/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	// Metadata travels with the copy; permission grants do not.
	avus, err := s.Metadata(ctx, "/zone/dst/src/a.txt")
	require.NoError(t, err)
	assert.Len(t, avus, 1)

	perm, err := s.Permission(ctx, "alice", "/zone/dst/src/a.txt")
	require.NoError(t, err)
	assert.True(t, perm.IsEmpty())

	t.Run("RejectsDestinationInsideSource", func(t *testing.T) {
		assert.Error(t, s.Copy(ctx, "/zone/src", "/zone/src/inner"))

		ok, err := s.Exists(ctx, "/zone/src/inner")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnCarriesImplicitReadWrite", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		require.NoError(t, s.SetPermission(ctx, "alice", "/zone", grid.Permission{Own: true}, false))

		readable, err := s.IsReadable(ctx, "alice", "/zone")
		require.NoError(t, err)
		assert.True(t, readable)

		writable, err := s.IsWritable(ctx, "alice", "/zone")
		require.NoError(t, err)
		assert.True(t, writable)
	})

	t.Run("RecurseRewritesSubtree", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		require.NoError(t, s.Mkdir(ctx, "/zone/sub"))
		require.NoError(t, s.WriteFile(ctx, "/zone/sub/a.txt", 1))

		require.NoError(t, s.SetPermission(ctx, "bob", "/zone", grid.Permission{Read: true}, true))

		for _, path := range []string{"/zone", "/zone/sub", "/zone/sub/a.txt"} {
			readable, err := s.IsReadable(ctx, "bob", path)
			require.NoError(t, err)
			assert.True(t, readable, "%q must be readable after recursive grant", path)
		}
	})

	t.Run("EmptyPermissionRemovesGrant", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		require.NoError(t, s.SetPermission(ctx, "alice", "/zone", full, false))
		require.NoError(t, s.RemovePermission(ctx, "alice", "/zone", false))

		perm, err := s.Permission(ctx, "alice", "/zone")
		require.NoError(t, err)
		assert.True(t, perm.IsEmpty())
	})

	t.Run("ListPermissionsSortedByUser", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Mkdir(ctx, "/zone"))
		require.NoError(t, s.SetPermission(ctx, "zed", "/zone", grid.Permission{Read: true}, false))
		require.NoError(t, s.SetPermission(ctx, "alice", "/zone", full, false))

		perms, err := s.ListPermissions(ctx, "/zone")
		require.NoError(t, err)
		require.Len(t, perms, 2)
		assert.Equal(t, "alice", perms[0].User)
		assert.Equal(t, "zed", perms[1].User)
	})
}

func TestMetadata(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Mkdir(ctx, "/zone"))
	avu := grid.AVU{Attribute: "k", Value: "v", Unit: "u"}

	t.Run("ExactDuplicateStoredOnce", func(t *testing.T) {
		require.NoError(t, s.AddMetadata(ctx, "/zone", avu))
		require.NoError(t, s.AddMetadata(ctx, "/zone", avu))

		avus, err := s.Metadata(ctx, "/zone")
		require.NoError(t, err)
		assert.Len(t, avus, 1)
	})

	t.Run("SameAttributeDifferentValueCoexist", func(t *testing.T) {
		require.NoError(t, s.AddMetadata(ctx, "/zone", grid.AVU{Attribute: "k", Value: "v2", Unit: "u"}))

		avus, err := s.Metadata(ctx, "/zone")
		require.NoError(t, err)
		assert.Len(t, avus, 2)
	})

	t.Run("ReplaceRewritesInPlace", func(t *testing.T) {
		replacement := grid.AVU{Attribute: "k", Value: "encoded", Unit: "enc"}
		require.NoError(t, s.ReplaceMetadata(ctx, "/zone", avu, replacement))

		avus, err := s.Metadata(ctx, "/zone")
		require.NoError(t, err)
		assert.Contains(t, avus, replacement)
		assert.NotContains(t, avus, avu)
	})

	t.Run("DeleteUnattachedIsNoOp", func(t *testing.T) {
		assert.NoError(t, s.DeleteMetadata(ctx, "/zone", grid.AVU{Attribute: "never", Value: "x", Unit: "y"}))
	})
}

func TestIssueCart(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddUser("alice")
	s.SetCartEndpoint("grid.example.org", 2247)

	t.Run("StampsEndpointAndFreshCredentials", func(t *testing.T) {
		cred, err := s.IssueCart(ctx, "alice", []string{"/zone/a.txt"}, grid.CartDownload)
		require.NoError(t, err)

		assert.NotEmpty(t, cred.Key)
		assert.NotEmpty(t, cred.Password)
		assert.Equal(t, "grid.example.org", cred.Host)
		assert.Equal(t, 2247, cred.Port)
		assert.Equal(t, "alice", cred.User)
		assert.False(t, cred.IssuedAt.IsZero())

		second, err := s.IssueCart(ctx, "alice", []string{"/zone/a.txt"}, grid.CartDownload)
		require.NoError(t, err)
		assert.NotEqual(t, cred.Key, second.Key)
		assert.NotEqual(t, cred.Password, second.Password)
	})

	t.Run("RejectsUnknownUser", func(t *testing.T) {
		_, err := s.IssueCart(ctx, "ghost", []string{"/zone/a.txt"}, grid.CartDownload)
		assert.Error(t, err)
	})

	t.Run("RejectsEmptyPathSet", func(t *testing.T) {
		_, err := s.IssueCart(ctx, "alice", nil, grid.CartUpload)
		assert.Error(t, err)
	})
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddUser("alice")
	s.SetQuota("alice", []grid.QuotaStatus{{Resource: "mainResc", Used: 100, Limit: 1000}})

	statuses, err := s.Quota(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "mainResc", statuses[0].Resource)

	_, err = s.Quota(ctx, "ghost")
	assert.Error(t, err)
}
