package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/preorder/internal/domain"
)

type fakeProducer struct {
	mu     sync.Mutex
	keys   []string
	events []domain.OrderPlacedEvent
	err    error
}

func (f *fakeProducer) Publish(_ context.Context, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.events = append(f.events, event.(domain.OrderPlacedEvent))
	return nil
}

func (f *fakeProducer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testOrder(id string) domain.Order {
	return domain.Order{
		ID:          id,
		OrderNumber: "#A1234",
		Vendor:      domain.Vendor{ID: "1", Name: "Campus Grill"},
		Items: []domain.CartLine{
			{MenuItem: domain.MenuItem{ID: "1-1", Name: "Classic Burger"}, Quantity: 2},
		},
		PickupTime: "12:30 PM",
		Status:     domain.OrderStatusPending,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrderPublisher_Run(t *testing.T) {
	t.Run("publishes queued orders keyed by vendor", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewOrderPublisher(producer, 4, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			pub.Run(ctx)
			close(done)
		}()

		pub.OrderPlaced(testOrder("o-1"))
		pub.OrderPlaced(testOrder("o-2"))

		require.Eventually(t, func() bool { return producer.count() == 2 }, time.Second, 10*time.Millisecond)
		cancel()
		<-done

		assert.Equal(t, []string{"1", "1"}, producer.keys)
		assert.Equal(t, "o-1", producer.events[0].OrderID)
		assert.Equal(t, "Classic Burger", producer.events[0].Items[0].Name)
		assert.Equal(t, 2, producer.events[0].Items[0].Quantity)
	})

	t.Run("drains queue on shutdown", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewOrderPublisher(producer, 4, discardLogger())
		pub.OrderPlaced(testOrder("o-1"))
		pub.OrderPlaced(testOrder("o-2"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pub.Run(ctx)

		assert.Equal(t, 2, producer.count())
	})

	t.Run("full queue drops instead of blocking", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewOrderPublisher(producer, 1, discardLogger())

		pub.OrderPlaced(testOrder("o-1"))
		pub.OrderPlaced(testOrder("o-2"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pub.Run(ctx)

		require.Equal(t, 1, producer.count())
		assert.Equal(t, "o-1", producer.events[0].OrderID)
	})

	t.Run("publish errors are logged and skipped", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker down")}
		pub := NewOrderPublisher(producer, 1, discardLogger())
		pub.OrderPlaced(testOrder("o-1"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pub.Run(ctx)

		assert.Equal(t, 0, producer.count())
	})
}
