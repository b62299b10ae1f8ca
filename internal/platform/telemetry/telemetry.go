// Package telemetry configura el exportador OTLP de trazas.
package telemetry

import (
	"context"

	"pet-clinic-api/internal/platform/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Options struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// Setup instala un TracerProvider global y devuelve su shutdown. Sin
// endpoint no hace nada y el shutdown es un no-op.
func Setup(ctx context.Context, opts Options, log logger.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if opts.Endpoint == "" {
		return noop
	}

	exOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exOpts = append(exOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exOpts...)
	if err != nil {
		log.Error("otel exporter error", map[string]any{"err": err})
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(opts.ServiceName)))
	if err != nil {
		log.Warn("otel resource error", map[string]any{"err": err})
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	log.Info("tracing enabled", map[string]any{"endpoint": opts.Endpoint})
	return provider.Shutdown
}
