// Package grid defines the storage facade consumed by the data operation
// layer.
//
// The facade is a thin interface over the remote hierarchical storage
// service: object existence, type, timestamps, structural mutation and
// permission bookkeeping. It is the single seam between the validation-gated
// operation layer and the backing store; the operation layer holds no durable
// state of its own and re-reads through this interface on every call, never
// caching across operations or requests.
//
// Implementations are expected to be safe for concurrent use. This layer
// acquires no locks: consistency relies entirely on the backing store's
// per-object semantics.
package grid

import "context"

// Store is the capability set the operation layer requires from the backing
// storage service.
//
// Every call may fail with a connectivity or backend error; such errors are
// propagated as-is by mutating operations and swallowed (logged only) on
// best-effort side channels.
type Store interface {
	// UserExists reports whether the user is known to the identity
	// directory of the storage service. Never cached across a request.
	UserExists(ctx context.Context, user string) (bool, error)

	// Exists reports whether an object or collection exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// IsDir reports whether path names a directory.
	IsDir(ctx context.Context, path string) (bool, error)

	// IsFile reports whether path names a file.
	IsFile(ctx context.Context, path string) (bool, error)

	// IsReadable reports whether the user can read path.
	IsReadable(ctx context.Context, user, path string) (bool, error)

	// IsWritable reports whether the user can write path.
	IsWritable(ctx context.Context, user, path string) (bool, error)

	// Owns reports whether the user owns path.
	Owns(ctx context.Context, user, path string) (bool, error)

	// Stat returns the entry at path.
	Stat(ctx context.Context, path string) (*Entry, error)

	// ListChildren lists the immediate children of a directory in a single
	// call. It does not recurse.
	ListChildren(ctx context.Context, path string) ([]Entry, error)

	// Permission returns the user's current permission on path. A missing
	// grant is reported as the zero Permission, not an error.
	Permission(ctx context.Context, user, path string) (Permission, error)

	// SetPermission replaces the user's permission on path. When recurse is
	// set and path is a directory, the permission is applied to the whole
	// subtree.
	SetPermission(ctx context.Context, user, path string, perm Permission, recurse bool) error

	// RemovePermission removes the user's permission entry on path entirely.
	RemovePermission(ctx context.Context, user, path string, recurse bool) error

	// SetInherit toggles the inheritance flag on a directory. While set,
	// newly created children inherit the directory's permission grants.
	SetInherit(ctx context.Context, path string, inherit bool) error

	// ListPermissions returns every principal's permission on path.
	ListPermissions(ctx context.Context, path string) ([]UserPermission, error)

	// Mkdir creates a directory at path. The parent must exist.
	Mkdir(ctx context.Context, path string) error

	// Delete removes the object or collection at path. Collections are
	// removed with their contents.
	Delete(ctx context.Context, path string) error

	// Move relocates source to the full destination path dest.
	Move(ctx context.Context, source, dest string) error

	// Copy duplicates source at the full destination path dest.
	Copy(ctx context.Context, source, dest string) error

	// Metadata returns all AVU triples attached to path.
	Metadata(ctx context.Context, path string) ([]AVU, error)

	// AddMetadata attaches one AVU triple to path. Duplicate triples on the
	// same attribute are permitted.
	AddMetadata(ctx context.Context, path string, avu AVU) error

	// ReplaceMetadata rewrites one attached triple in place. Rewriting a
	// triple that is not attached is not an error.
	ReplaceMetadata(ctx context.Context, path string, old, new AVU) error

	// DeleteMetadata removes one exact AVU triple from path. Removing a
	// triple that is not attached is not an error.
	DeleteMetadata(ctx context.Context, path string, avu AVU) error

	// IssueCart mints a single-use transfer credential for the path set.
	IssueCart(ctx context.Context, user string, paths []string, direction CartDirection) (*CartCredential, error)

	// Quota returns the user's quota statuses.
	Quota(ctx context.Context, user string) ([]QuotaStatus, error)
}
