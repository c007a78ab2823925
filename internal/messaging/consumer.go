package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrSkip marks a message the handler will never be able to process. The
// consumer commits such a message and moves on instead of stopping.
var ErrSkip = errors.New("skip message")

var consumerTracer = otel.Tracer("messaging/consumer")

// HandlerFunc processes one message payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

type Consumer struct {
	reader  *kafka.Reader
	topic   string
	groupID string
	logger  *slog.Logger
}

type consumerConfig struct {
	reader kafka.ReaderConfig
	logger *slog.Logger
}

type ConsumerOption func(*consumerConfig)

// WithStartOffset sets where a group with no committed offset starts
// reading (kafka.FirstOffset or kafka.LastOffset).
func WithStartOffset(offset int64) ConsumerOption {
	return func(cfg *consumerConfig) {
		cfg.reader.StartOffset = offset
	}
}

func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(cfg *consumerConfig) {
		cfg.logger = logger
	}
}

func NewConsumer(brokers []string, topic, groupID string, opts ...ConsumerOption) *Consumer {
	cfg := consumerConfig{
		reader: kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Consumer{
		reader:  kafka.NewReader(cfg.reader),
		topic:   topic,
		groupID: groupID,
		logger:  cfg.logger,
	}
}

// Consume hands each message to handler and commits it once handled. A
// handler error wrapping ErrSkip is logged and committed; any other error
// stops consumption and is returned, as is ctx's error once it is done.
func (c *Consumer) Consume(ctx context.Context, handler HandlerFunc) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("fetch from %s: %w", c.topic, err)
		}

		if err := c.process(ctx, msg, handler); err != nil {
			if !errors.Is(err, ErrSkip) {
				return err
			}
			c.logger.Warn("skipping message",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d on %s: %w", msg.Offset, c.topic, err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message, handler HandlerFunc) error {
	carrier := headerCarrier{msg: &msg}
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)

	attrs := []attribute.KeyValue{
		semconv.MessagingSystemKafka,
		semconv.MessagingOperationName("process"),
		semconv.MessagingOperationTypeDeliver,
		semconv.MessagingDestinationName(c.topic),
		semconv.MessagingKafkaConsumerGroup(c.groupID),
		semconv.MessagingKafkaMessageOffset(int(msg.Offset)),
		semconv.MessagingDestinationPartitionID(strconv.Itoa(msg.Partition)),
		semconv.MessagingKafkaMessageKey(string(msg.Key)),
	}
	if eventType := carrier.Get(headerEventType); eventType != "" {
		attrs = append(attrs, attribute.String("messaging.message.type", eventType))
	}

	spanCtx, span := consumerTracer.Start(parentCtx, "process "+c.topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	if err := handler(spanCtx, msg.Value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
