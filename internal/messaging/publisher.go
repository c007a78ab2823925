package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/campus-eats/preorder/internal/domain"
)

const publishTimeout = 5 * time.Second

type eventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// OrderPublisher forwards placed orders to Kafka from a background loop so
// that placing an order never waits on the broker. It satisfies
// session.Observer.
type OrderPublisher struct {
	producer eventPublisher
	queue    chan domain.Order
	logger   *slog.Logger
}

func NewOrderPublisher(producer eventPublisher, buffer int, logger *slog.Logger) *OrderPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &OrderPublisher{
		producer: producer,
		queue:    make(chan domain.Order, buffer),
		logger:   logger,
	}
}

// OrderPlaced queues the order; when the queue is full the event is dropped.
func (p *OrderPublisher) OrderPlaced(order domain.Order) {
	select {
	case p.queue <- order:
	default:
		p.logger.Warn("order event queue full, dropping event", "order_id", order.ID)
	}
}

func (p *OrderPublisher) SlotRejected(string) {}

// Run publishes queued orders until ctx is done, then flushes what is left.
// Each publish gets its own timeout and outlives ctx cancellation.
func (p *OrderPublisher) Run(ctx context.Context) {
	for {
		select {
		case order := <-p.queue:
			p.publish(ctx, order)
		case <-ctx.Done():
			p.drain(ctx)
			return
		}
	}
}

func (p *OrderPublisher) drain(ctx context.Context) {
	for {
		select {
		case order := <-p.queue:
			p.publish(ctx, order)
		default:
			return
		}
	}
}

func (p *OrderPublisher) publish(ctx context.Context, order domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := domain.NewOrderPlacedEvent(order)
	if err := p.producer.Publish(ctx, order.Vendor.ID, event); err != nil {
		p.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
		return
	}
	p.logger.Info("order placed event published", "order_id", order.ID, "vendor_id", order.Vendor.ID)
}
