package otel

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestSubscribeRecordsRequestSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	bus := eventbus.New()
	unsubscribe := Subscribe(bus, tp)
	defer unsubscribe()

	r := httptest.NewRequest("POST", "/graphql", nil)
	ctx, _ := reqid.WithID(context.Background(), "r1")
	eventbus.Publish(ctx, bus, events.HTTPStart{Request: r})
	eventbus.Publish(ctx, bus, events.OperationStart{OperationName: "Q", OperationType: "query"})
	eventbus.Publish(ctx, bus, events.OperationFinish{
		OperationName: "Q",
		OperationType: "query",
		Errors:        gqlerrors.List{gqlerrors.New("boom")},
		Duration:      3 * time.Millisecond,
	})
	eventbus.Publish(ctx, bus, events.HTTPFinish{Request: r, Status: 200})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "http.request", spans[0].Name())
	a := attrs(spans[0])
	assert.Equal(t, "POST", a["http.method"].AsString())
	assert.Equal(t, "/graphql", a["http.target"].AsString())
	assert.Equal(t, "r1", a["http.request_id"].AsString())
	assert.Equal(t, int64(200), a["http.status_code"].AsInt64())
	assert.Equal(t, "Q", a["graphql.operation.name"].AsString())
	assert.Equal(t, "query", a["graphql.operation.type"].AsString())
	assert.Equal(t, int64(1), a["graphql.error_count"].AsInt64())
	assert.Equal(t, int64(3), a["graphql.duration_ms"].AsInt64())
}

func TestSubscribeRecordsRejection(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	bus := eventbus.New()
	defer Subscribe(bus, tp)()

	r := httptest.NewRequest("GET", "/", nil)
	ctx, _ := reqid.WithID(context.Background(), "r2")
	eventbus.Publish(ctx, bus, events.HTTPStart{Request: r})
	eventbus.Publish(ctx, bus, events.RequestRejected{Stage: "parse", Errors: gqlerrors.List{gqlerrors.New("Syntax Error")}})
	eventbus.Publish(ctx, bus, events.HTTPFinish{Request: r, Status: 200})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Syntax Error", spans[0].Status().Description)

	var names []string
	for _, ev := range spans[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"graphql.rejected", "exception"}, names)
}

func TestEventsWithoutRequestSpanAreIgnored(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	bus := eventbus.New()
	defer Subscribe(bus, tp)()

	ctx := context.Background()
	eventbus.Publish(ctx, bus, events.OperationStart{OperationName: "Q"})
	eventbus.Publish(ctx, bus, events.RequestRejected{Stage: "validate"})
	eventbus.Publish(ctx, bus, events.HTTPFinish{Status: 200})

	assert.Empty(t, sr.Started())
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "gqlcore", eventbus.New())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
