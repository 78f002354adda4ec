package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	reqid "github.com/hanpama/gqlcore/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/hanpama/gqlcore"

// Setup installs a global tracer provider exporting to an OTLP/gRPC collector
// at endpoint and, when bus is not nil, turns the server events published on
// it into spans. If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, endpoint, service string, bus *eventbus.Bus) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Subscribe(bus, tp)
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Subscribe records one "http.request" span per request seen on bus, keyed
// by request id. Operation and rejection events annotate that span.
func Subscribe(bus *eventbus.Bus, tp trace.TracerProvider) (unsubscribe func()) {
	s := &subscriber{tracer: tp.Tracer(instrumentationName)}
	unsubs := []func(){
		eventbus.Subscribe(bus, s.httpStart),
		eventbus.Subscribe(bus, s.httpFinish),
		eventbus.Subscribe(bus, s.operationStart),
		eventbus.Subscribe(bus, s.operationFinish),
		eventbus.Subscribe(bus, s.rejected),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // request id -> trace.Span
}

func (s *subscriber) span(ctx context.Context) (trace.Span, bool) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.httpSpans.Load(rid)
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}

func (s *subscriber) httpStart(ctx context.Context, e events.HTTPStart) {
	rid, _ := reqid.FromContext(ctx)
	_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		semconv.HTTPMethodKey.String(e.Request.Method),
		attribute.String("http.target", e.Request.URL.Path),
		attribute.String("http.request_id", rid),
	)
	s.httpSpans.Store(rid, span)
}

func (s *subscriber) httpFinish(ctx context.Context, e events.HTTPFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.httpSpans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
	if e.Status >= 500 {
		span.SetStatus(codes.Error, "server error")
	}
	span.End()
}

func (s *subscriber) operationStart(ctx context.Context, e events.OperationStart) {
	if span, ok := s.span(ctx); ok {
		span.SetAttributes(
			semconv.GraphqlOperationName(e.OperationName),
			semconv.GraphqlOperationTypeKey.String(e.OperationType),
		)
	}
}

func (s *subscriber) operationFinish(ctx context.Context, e events.OperationFinish) {
	if span, ok := s.span(ctx); ok {
		span.SetAttributes(
			attribute.Int("graphql.error_count", len(e.Errors)),
			attribute.Int64("graphql.duration_ms", e.Duration.Milliseconds()),
		)
	}
}

func (s *subscriber) rejected(ctx context.Context, e events.RequestRejected) {
	span, ok := s.span(ctx)
	if !ok {
		return
	}
	span.AddEvent("graphql.rejected", trace.WithAttributes(
		attribute.String("graphql.stage", e.Stage),
		attribute.Int("graphql.error_count", len(e.Errors)),
	))
	for _, err := range e.Errors {
		span.RecordError(err)
	}
	if len(e.Errors) > 0 {
		span.SetStatus(codes.Error, e.Errors[0].Error())
	}
}
