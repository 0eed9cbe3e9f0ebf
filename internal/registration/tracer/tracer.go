// Package tracer is the tracing seam for the registration module. Services depend on
// the small Tracer interface below; production wires the OpenTelemetry adapter and
// tests wire the no-op tracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span; the returned context carries it to child operations.
	//
	//   ctx, span := tr.Start(ctx, tracer.SpanRegister, tracer.String(tracer.AttrSubject, subject))
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the registration module.
const (
	SpanRegister    = "registration.register"
	SpanGet         = "registration.get"
	SpanRemove      = "registration.remove"
	SpanList        = "registration.list"
	SpanStoreCreate = "registration.store.create"
	SpanCacheLookup = "registration.cache.lookup"
)

// Attribute keys. Subjects are pseudonymised citizen IDs, never raw ones.
const (
	AttrSubject  = "registration.subject"
	AttrOutcome  = "registration.outcome"
	AttrCacheHit = "cache.hit"
	AttrCount    = "registration.count"
)

// Event names.
const (
	EventAuditEmitted = "audit.emitted"
)

// NoopTracer discards all spans.
type NoopTracer struct{}

func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                  {}
func (noopSpan) SetAttributes(...Attribute) {}
func (noopSpan) AddEvent(string, ...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
