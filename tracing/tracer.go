package tracing

import (
	"context"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer starts server spans and carries trace context across HTTP headers.
type Tracer interface {
	Start(ctx context.Context, spanName string) (context.Context, oteltrace.Span)
	StartSpanFromHeader(ctx context.Context, h http.Header, spanName string) (context.Context, oteltrace.Span)
	InjectHTTP(ctx context.Context, h http.Header)
	Shutdown() error
}

type tracer struct {
	tracer oteltrace.Tracer
	tp     *trace.TracerProvider
}

func (t tracer) Start(ctx context.Context, spanName string) (context.Context, oteltrace.Span) {
	return t.tracer.Start(ctx, spanName, oteltrace.WithSpanKind(oteltrace.SpanKindServer))
}

func (t tracer) StartSpanFromHeader(ctx context.Context, h http.Header, spanName string) (context.Context, oteltrace.Span) {
	return t.Start(otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(h)), spanName)
}

func (t tracer) InjectHTTP(ctx context.Context, h http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
}

func (t tracer) Shutdown() error {
	if t.tp == nil {
		return nil
	}
	ctx := context.Background()
	_ = t.tp.ForceFlush(ctx)
	return t.tp.Shutdown(ctx)
}

// NewTracer installs a provider exporting to exporter as the global one, so
// the upstream clients' spans land in the same traces.
func NewTracer(serviceName string, exporter trace.SpanExporter) Tracer {
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)
	return tracer{tracer: tp.Tracer(serviceName), tp: tp}
}

// NewNoopTracer keeps the middleware chain identical when tracing is off.
func NewNoopTracer() Tracer {
	return tracer{tracer: noop.NewTracerProvider().Tracer("")}
}

// FromConfig picks a tracer for the configured exporter name. Only "stdout"
// is known; anything else disables tracing.
func FromConfig(serviceName, exporter string, out io.Writer) (Tracer, error) {
	if exporter != "stdout" {
		return NewNoopTracer(), nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return NewTracer(serviceName, exp), nil
}
