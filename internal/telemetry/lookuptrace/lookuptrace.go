// Package lookuptrace opens OpenTelemetry spans for lookups. The lookup
// engine opens one span per FindSuccessor call; the individual hops of
// FindPredecessor get no span of their own.
// Tracing is a no-op until telemetry.Init installs a real
// TracerProvider, so packages that import this never need a nil check.
package lookuptrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chordring/lookup"

// Background returns a detached context for lookups that don't already
// carry one -- the wire handlers are connection-scoped, not
// request-context-scoped.
func Background() context.Context {
	return context.Background()
}

// StartHop opens a span named op (e.g. "find_successor") tagged with the
// key being resolved.
func StartHop(ctx context.Context, op string, key uint64) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("chord.key", int64(key))))
}
