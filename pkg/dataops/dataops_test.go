package dataops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/datavault/pkg/grid"
	"github.com/marmos91/datavault/pkg/grid/memory"
)

const (
	testRealm   = "zone"
	testSvcUser = "vaultsvc"
)

var fullPerm = grid.Permission{Read: true, Write: true, Own: true}

// newTestService builds a Service over a fresh in-memory store with the realm
// skeleton and two user homes in place.
func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	store := memory.New()
	for _, user := range []string{"alice", "bob", testSvcUser} {
		store.AddUser(user)
	}

	ctx := context.Background()
	for _, dir := range []string{"/zone", "/zone/home", "/zone/home/alice", "/zone/home/bob"} {
		require.NoError(t, store.Mkdir(ctx, dir))
	}
	require.NoError(t, store.SetPermission(ctx, "alice", "/zone/home/alice", fullPerm, false))
	require.NoError(t, store.SetPermission(ctx, "bob", "/zone/home/bob", fullPerm, false))

	svc := New(store, Config{Realm: testRealm, ServiceUser: testSvcUser})
	return svc, store
}

// mkdirOwned creates a directory and grants the user full permission on it.
func mkdirOwned(t *testing.T, store *memory.Store, user, path string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Mkdir(ctx, path))
	require.NoError(t, store.SetPermission(ctx, user, path, fullPerm, false))
}

// writeFileOwned creates a file and grants the user full permission on it.
func writeFileOwned(t *testing.T, store *memory.Store, user, path string, size uint64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.WriteFile(ctx, path, size))
	require.NoError(t, store.SetPermission(ctx, user, path, fullPerm, false))
}

// exists reports whether the path is present in the store.
func exists(t *testing.T, store *memory.Store, path string) bool {
	t.Helper()
	ok, err := store.Exists(context.Background(), path)
	require.NoError(t, err)
	return ok
}

// permOf returns the user's stored permission on path.
func permOf(t *testing.T, store *memory.Store, user, path string) grid.Permission {
	t.Helper()
	perm, err := store.Permission(context.Background(), user, path)
	require.NoError(t, err)
	return perm
}
