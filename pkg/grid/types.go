package grid

import "time"

// ============================================================================
// Permissions
// ============================================================================

// Permission is the capability set a user holds on a path.
//
// The three bits are independently settable at the grid level: the backing
// store does not assume own implies write or write implies read. Application
// code always requests the superset it needs.
type Permission struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Own   bool `json:"own"`
}

// IsEmpty reports whether no capability is granted.
func (p Permission) IsEmpty() bool {
	return !p.Read && !p.Write && !p.Own
}

// Union returns the bitwise union of two permission sets.
func (p Permission) Union(other Permission) Permission {
	return Permission{
		Read:  p.Read || other.Read,
		Write: p.Write || other.Write,
		Own:   p.Own || other.Own,
	}
}

// UserPermission pairs a principal with the permission it holds on a path.
type UserPermission struct {
	User       string     `json:"user"`
	Permission Permission `json:"permission"`
}

// ============================================================================
// Entries
// ============================================================================

// EntryType discriminates files from directories.
type EntryType int

const (
	EntryTypeFile EntryType = iota + 1
	EntryTypeDirectory
)

// String returns a human-readable name for the entry type.
func (t EntryType) String() string {
	switch t {
	case EntryTypeFile:
		return "file"
	case EntryTypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Entry describes a single object in the grid namespace.
//
// Size is meaningful for files only; directories report zero.
type Entry struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Type       EntryType `json:"type"`
	Size       uint64    `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ============================================================================
// Metadata
// ============================================================================

// AVU is an attribute/value/unit metadata triple attached to a path.
//
// Attributes are not unique: a path may carry several triples sharing the
// same attribute name.
type AVU struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Unit      string `json:"unit"`
}

// ============================================================================
// Carts
// ============================================================================

// CartDirection indicates whether a cart authorizes uploads or downloads.
type CartDirection int

const (
	CartDownload CartDirection = iota + 1
	CartUpload
)

// String returns a human-readable name for the cart direction.
func (d CartDirection) String() string {
	switch d {
	case CartDownload:
		return "download"
	case CartUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// CartCredential is a single-use credential bundle authorizing bulk transfer
// of a path set. It is never persisted by this layer beyond issuance.
type CartCredential struct {
	Key      string    `json:"key"`
	Password string    `json:"password"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	User     string    `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// ============================================================================
// Quota
// ============================================================================

// QuotaStatus reports a user's consumption against one quota.
type QuotaStatus struct {
	Resource string `json:"resource"`
	Used     uint64 `json:"used"`
	Limit    uint64 `json:"limit"`
}
