package messaging

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/boutique/storefront/internal/application/notification"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/event"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var producerTracer = otel.Tracer("storefront/messaging")

// HeaderEventType carries the event type so consumers can route without decoding
const HeaderEventType = "event-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventProducer exports order events to a kafka topic, keyed by order ID so
// that every event of one order lands on the same partition.
type OrderEventProducer struct {
	writer     messageWriter
	topic      string
	serializer *event.EventSerializer
}

// NewOrderEventProducer creates a producer writing to topic
func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
		},
		serializer: event.NewEventSerializer(),
	}
}

// Export writes one message per event
func (p *OrderEventProducer) Export(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingBatchMessageCount(len(events)),
		),
	)
	defer span.End()

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := p.serializer.Serialize(e)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		msg := kafka.Message{
			Key:   []byte(strconv.FormatInt(e.AggregateID(), 10)),
			Value: value,
			Headers: []kafka.Header{
				{Key: HeaderEventType, Value: []byte(e.EventType())},
			},
			Time: e.OccurredAt(),
		}
		otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write %d events to %s: %w", len(msgs), p.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

var _ notification.EventExporter = (*OrderEventProducer)(nil)
