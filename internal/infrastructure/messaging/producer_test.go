package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/infrastructure/event"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *OrderEventProducer {
	return &OrderEventProducer{writer: w, topic: "orders", serializer: event.NewEventSerializer()}
}

func TestOrderEventProducer_Export(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator()) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := newTestProducer(w)
	o := &order.Order{ID: 33, Status: order.StatusConfirmed}

	require.NoError(t, p.Export(ctx, order.NewOrderPlacedEvent(o), order.NewOrderConfirmedEvent(o)))

	require.Len(t, w.msgs, 2)
	msg := w.msgs[0]
	assert.Equal(t, "33", string(msg.Key))

	carrier := NewMessageCarrier(&msg)
	assert.Equal(t, order.EventTypeOrderPlaced, carrier.Get(HeaderEventType))
	assert.Contains(t, carrier.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	var env event.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, order.EventTypeOrderPlaced, env.Type)
	assert.Equal(t, int64(33), env.AggregateID)
	assert.Equal(t, order.EventTypeOrderConfirmed, NewMessageCarrier(&w.msgs[1]).Get(HeaderEventType))
}

func TestOrderEventProducer_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newTestProducer(w)

	err := p.Export(context.Background(), order.NewOrderPlacedEvent(&order.Order{ID: 1}))

	assert.ErrorContains(t, err, "leader not available")
	assert.NoError(t, p.Export(context.Background()))
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{}
	c := NewMessageCarrier(&msg)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	assert.Equal(t, "3", c.Get("a"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}
