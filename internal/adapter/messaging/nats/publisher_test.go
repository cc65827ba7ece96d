package nats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier_RoundTripsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg := nats.NewMsg("listing.created")
	prop := propagation.TraceContext{}
	prop.Inject(ctx, HeaderCarrier(msg.Header))

	require.NotEmpty(t, HeaderCarrier(msg.Header).Get("traceparent"))
	assert.Len(t, HeaderCarrier(msg.Header).Keys(), 1)

	extracted := prop.Extract(context.Background(), HeaderCarrier(msg.Header))
	assert.Equal(t, span.SpanContext().TraceID(), oteltrace.SpanContextFromContext(extracted).TraceID())
}
