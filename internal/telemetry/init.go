// Package telemetry wires up the OpenTelemetry TracerProvider used by
// internal/telemetry/lookuptrace: a stdout exporter when tracing is
// enabled, otherwise the SDK's default no-op provider is left in place.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config controls whether and how lookup tracing is emitted.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Shutdown flushes and releases the tracer provider installed by Init.
type Shutdown func(context.Context) error

// Init installs a global TracerProvider per cfg. When cfg.Enabled is
// false it returns a no-op shutdown, leaving OpenTelemetry's built-in
// no-op tracer in place so span creation stays cheap and side-effect
// free.
func Init(cfg Config) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("build stdout trace exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
