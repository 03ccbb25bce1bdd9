// Package metrics defines observability interfaces for the data operation
// layer. Implementations are optional: passing nil disables collection with
// zero overhead.
package metrics

import "time"

// OpsMetrics provides observability for data operations.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewOpsMetrics()
//	svc := dataops.New(store, cfg, dataops.WithMetrics(m))
//
//	// Without metrics (pass nothing for zero overhead)
//	svc := dataops.New(store, cfg)
type OpsMetrics interface {
	// RecordOperation records a completed operation with its name, duration
	// and outcome.
	//
	// Parameters:
	//   - op: operation name (e.g., "share", "move", "list-directory")
	//   - duration: time taken to process the operation
	//   - errorCode: condition code when the operation failed (e.g.,
	//     "DoesNotExist"), empty when it succeeded
	RecordOperation(op string, duration time.Duration, errorCode string)

	// RecordValidationFailure counts one validation-gate rejection.
	//
	// Parameters:
	//   - op: operation name
	//   - code: condition code that rejected the request
	RecordValidationFailure(op string, code string)
}
