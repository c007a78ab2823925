package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OrderPlacedTopic is the default topic for placed orders.
const OrderPlacedTopic = "order.placed"

const (
	headerEventType   = "event-type"
	headerContentType = "content-type"
)

var producerTracer = otel.Tracer("messaging/producer")

// typedEvent is implemented by events that name themselves in the
// event-type header.
type typedEvent interface {
	EventType() string
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

type ProducerOption func(*kafka.Writer)

// WithBatchTimeout bounds how long the writer waits to fill a batch.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		w.BatchTimeout = d
	}
}

func WithRequiredAcks(acks kafka.RequiredAcks) ProducerOption {
	return func(w *kafka.Writer) {
		w.RequiredAcks = acks
	}
}

// NewProducer writes to topic, partitioning by message key so one vendor's
// orders keep their order.
func NewProducer(brokers []string, topic string, opts ...ProducerOption) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}

	return &Producer{writer: w, topic: topic}
}

// Publish writes event as JSON under key, with the trace context and the
// event type in the headers.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", event, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: headerContentType, Value: []byte("application/json")},
		},
	}
	if te, ok := event.(typedEvent); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: headerEventType, Value: []byte(te.EventType())})
	}

	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(key),
			semconv.MessagingMessageBodySize(len(data)),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
