package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for data operation spans.
// These follow OpenTelemetry semantic conventions where applicable; domain
// keys use the "dataops." and "grid." prefixes.
const (
	// ========================================================================
	// Operation attributes
	// ========================================================================
	AttrOperation = "dataops.operation" // Operation name: share, move, restore, etc.
	AttrUser      = "dataops.user"      // Acting principal
	AttrRealm     = "dataops.realm"     // Administrative namespace
	AttrPath      = "dataops.path"      // Object path
	AttrDest      = "dataops.dest"      // Destination path for move/copy/rename
	AttrPathCount = "dataops.paths"     // Number of paths in a batch
	AttrErrorCode = "dataops.error"     // Structured condition code name

	// ========================================================================
	// Metadata attributes
	// ========================================================================
	AttrAttribute = "grid.attribute" // AVU attribute name

	// ========================================================================
	// Cart attributes
	// ========================================================================
	AttrCartDirection = "grid.cart.direction" // download or upload
	AttrCartKey       = "grid.cart.key"       // Issued credential key
)

// Operation returns an attribute for the operation name.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// User returns an attribute for the acting principal.
func User(name string) attribute.KeyValue {
	return attribute.String(AttrUser, name)
}

// Realm returns an attribute for the administrative namespace.
func Realm(name string) attribute.KeyValue {
	return attribute.String(AttrRealm, name)
}

// Path returns an attribute for an object path.
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Dest returns an attribute for a destination path.
func Dest(p string) attribute.KeyValue {
	return attribute.String(AttrDest, p)
}

// PathCount returns an attribute for the number of paths in a batch.
func PathCount(n int) attribute.KeyValue {
	return attribute.Int(AttrPathCount, n)
}

// ErrorCode returns an attribute for a structured condition code name.
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// MetadataAttribute returns an attribute for an AVU attribute name.
func MetadataAttribute(name string) attribute.KeyValue {
	return attribute.String(AttrAttribute, name)
}

// CartDirection returns an attribute for the cart direction.
func CartDirection(dir string) attribute.KeyValue {
	return attribute.String(AttrCartDirection, dir)
}

// CartKey returns an attribute for an issued credential key.
func CartKey(key string) attribute.KeyValue {
	return attribute.String(AttrCartKey, key)
}

// StartOperationSpan starts a span for one data operation, stamping the
// common operation attributes. The span is named "dataops." followed by the
// kebab-case operation name, e.g. "dataops.create-dir".
func StartOperationSpan(ctx context.Context, op, user string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Operation(op),
		User(user),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "dataops."+op, trace.WithAttributes(allAttrs...))
}
