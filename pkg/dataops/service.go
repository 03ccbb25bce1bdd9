// Package dataops implements the validation-gated data operation layer.
//
// Every public operation follows the same shape: a sequence of validation
// gate checks that either passes silently or fails with a structured
// condition carrying the complete offending subject set, followed by the
// structural mutation through the storage facade. The layer is stateless
// between requests: every read goes to the facade, nothing is cached, and no
// locks are taken. Consistency under concurrent callers is whatever the
// backing store provides per object.
package dataops

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	dverr "github.com/marmos91/datavault/pkg/dataops/errors"
	"github.com/marmos91/datavault/pkg/grid"
	"github.com/marmos91/datavault/pkg/metrics"
)

// Config carries the static settings of the operation layer.
type Config struct {
	// Realm is the administrative namespace all paths live under, without
	// slashes (e.g. "zoneA" for paths rooted at "/zoneA").
	Realm string

	// ServiceUser is the administrative principal that retains access to
	// every object created through this layer. Ownership of new objects is
	// normalized against it so the service never loses administrative
	// reach. Empty disables normalization.
	ServiceUser string
}

// Service is the validation-gated operation layer over a storage facade.
//
// A Service holds no durable state: it may be shared freely across requests
// and goroutines as long as the underlying store is safe for concurrent use.
type Service struct {
	store       grid.Store
	realm       string
	realmRoot   string
	serviceUser string
	metrics     metrics.OpsMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics installs an operation metrics sink. Passing nil leaves
// collection disabled.
func WithMetrics(m metrics.OpsMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service over the given facade.
func New(store grid.Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:       store,
		realm:       cfg.Realm,
		realmRoot:   vpath.Join(vpath.Separator, cfg.Realm),
		serviceUser: cfg.ServiceUser,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RealmRoot returns the realm root path (e.g. "/zoneA").
func (s *Service) RealmRoot() string {
	return s.realmRoot
}

// HomeDir returns the user's home directory path inside the realm.
func (s *Service) HomeDir(user string) string {
	return vpath.Join(s.realmRoot, "home", user)
}

// Quota returns the user's quota statuses.
func (s *Service) Quota(ctx context.Context, user string) ([]grid.QuotaStatus, error) {
	ctx, span, start := s.begin(ctx, "quota", user)
	defer span.End()

	statuses, err := s.quota(ctx, user)
	s.observe(ctx, "quota", start, err)
	return statuses, err
}

func (s *Service) quota(ctx context.Context, user string) ([]grid.QuotaStatus, error) {
	if err := s.checkUserExists(ctx, user); err != nil {
		return nil, err
	}
	return s.store.Quota(ctx, user)
}

// begin opens the span and log context shared by every public operation. op
// is the kebab-case operation name used for spans, metrics and logs alike.
func (s *Service) begin(ctx context.Context, op, user string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs, telemetry.Realm(s.realm))
	ctx, span := telemetry.StartOperationSpan(ctx, op, user, attrs...)

	lc := logger.NewLogContext(user).WithOp(op).WithRealm(s.realm)
	if sc := span.SpanContext(); sc.IsValid() {
		lc = lc.WithTrace(sc.TraceID().String(), sc.SpanID().String())
	}
	return logger.WithContext(ctx, lc), span, time.Now()
}

// observe records the outcome of one public operation on the metrics sink,
// the active span and the log.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	code := ""
	if c := dverr.AsCondition(err); c != nil {
		code = c.Code.String()
	} else if err != nil {
		code = "Backend"
	}

	if code != "" {
		telemetry.SetAttributes(ctx, telemetry.ErrorCode(code))
	}
	telemetry.RecordError(ctx, err)

	if s.metrics != nil {
		s.metrics.RecordOperation(op, time.Since(start), code)
		if code != "" && code != "Backend" {
			s.metrics.RecordValidationFailure(op, code)
		}
	}

	if err != nil {
		logger.DebugCtx(ctx, "operation rejected",
			logger.Err(err),
			logger.ErrorCode(code),
			logger.DurationMs(logger.Duration(start)))
		return
	}

	logger.DebugCtx(ctx, "operation completed",
		logger.DurationMs(logger.Duration(start)))
}
