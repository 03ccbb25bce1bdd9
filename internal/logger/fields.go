package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently across
// all log statements so logs aggregate and query cleanly.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Operation
	// ========================================================================
	KeyOp        = "op"         // Data operation name: share, move, restore, etc.
	KeyUser      = "user"       // Acting principal
	KeyGrantee   = "grantee"    // Principal gaining or losing access
	KeyRealm     = "realm"      // Administrative namespace
	KeyPath      = "path"       // Full object path
	KeyDest      = "dest"       // Destination path for move/copy/rename
	KeyAttribute = "attribute"  // Metadata attribute name
	KeyDirection = "direction"  // Cart direction: download, upload
	KeyCartKey   = "cart_key"   // Issued cart credential key
	KeyPaths     = "path_count" // Number of paths in a batch

	// ========================================================================
	// Outcome
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Structured condition code name
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Op returns a slog.Attr for a data operation name.
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// User returns a slog.Attr for the acting principal.
func User(name string) slog.Attr {
	return slog.String(KeyUser, name)
}

// Grantee returns a slog.Attr for the principal gaining or losing access.
func Grantee(name string) slog.Attr {
	return slog.String(KeyGrantee, name)
}

// Realm returns a slog.Attr for the administrative namespace.
func Realm(name string) slog.Attr {
	return slog.String(KeyRealm, name)
}

// Path returns a slog.Attr for an object path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Dest returns a slog.Attr for a destination path.
func Dest(p string) slog.Attr {
	return slog.String(KeyDest, p)
}

// Attribute returns a slog.Attr for a metadata attribute name.
func Attribute(name string) slog.Attr {
	return slog.String(KeyAttribute, name)
}

// Direction returns a slog.Attr for a cart direction.
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// CartKey returns a slog.Attr for an issued cart credential key. Only the
// key is ever logged, never the password.
func CartKey(key string) slog.Attr {
	return slog.String(KeyCartKey, key)
}

// PathCount returns a slog.Attr for the number of paths in a batch.
func PathCount(n int) slog.Attr {
	return slog.Int(KeyPaths, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a structured condition code name.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}
