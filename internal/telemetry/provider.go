package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Span exporter names accepted by InitTracing.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// InitTracing installs a tracer provider using the named exporter. Stdout
// spans are written to w; OTLP spans go to endpoint.
func InitTracing(ctx context.Context, exporter, endpoint string, w io.Writer, serviceName, serviceVersion string) (func(context.Context) error, error) {
	switch exporter {
	case ExporterStdout:
		return InitStdoutTracerProvider(w, serviceName, serviceVersion)
	case ExporterOTLP, "":
		return InitTracerProvider(ctx, endpoint, serviceName, serviceVersion)
	default:
		return nil, fmt.Errorf("unknown span exporter %q", exporter)
	}
}

// InitTracerProvider exports spans over OTLP/gRPC to endpoint and installs
// the W3C trace-context and baggage propagators used by the HTTP adapter and
// the Kafka headers.
func InitTracerProvider(ctx context.Context, endpoint, serviceName, serviceVersion string) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return installTracerProvider(exporter, serviceName, serviceVersion), nil
}

// InitStdoutTracerProvider writes spans as indented JSON to w, for running
// without a collector.
func InitStdoutTracerProvider(w io.Writer, serviceName, serviceVersion string) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	return installTracerProvider(exporter, serviceName, serviceVersion), nil
}

func installTracerProvider(exporter trace.SpanExporter, serviceName, serviceVersion string) func(context.Context) error {
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(newResource(serviceName, serviceVersion)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown
}

// WithHTTPRoute tags the active span with the matched ServeMux pattern, which
// otelhttp cannot see because routing happens after its handler runs.
func WithHTTPRoute(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Pattern != "" {
			span := oteltrace.SpanFromContext(r.Context())
			span.SetAttributes(semconv.HTTPRoute(r.Pattern))
		}
		h(w, r)
	}
}
