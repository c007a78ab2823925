// Package kitchen turns order-placed events into printed kitchen tickets.
package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/campus-eats/preorder/internal/domain"
	"github.com/campus-eats/preorder/internal/messaging"
)

type TicketHandler struct {
	vendorID string
	mu       sync.Mutex
	out      io.Writer
	logger   *slog.Logger
}

// NewTicketHandler prints tickets to out. A non-empty vendorID limits
// printing to that vendor's orders.
func NewTicketHandler(vendorID string, out io.Writer, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		vendorID: vendorID,
		out:      out,
		logger:   logger,
	}
}

func (h *TicketHandler) Handle(_ context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: unmarshal order placed event: %v", messaging.ErrSkip, err)
	}

	if h.vendorID != "" && event.VendorID != h.vendorID {
		h.logger.Debug("skipping order for other vendor", "order_id", event.OrderID, "vendor_id", event.VendorID)
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.out, FormatTicket(event)); err != nil {
		return fmt.Errorf("write ticket: %w", err)
	}

	h.logger.Info("ticket printed", "order_id", event.OrderID, "order_number", event.OrderNumber, "pickup_time", event.PickupTime)
	return nil
}

// FormatTicket renders the text printed for the kitchen.
func FormatTicket(event domain.OrderPlacedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", event.OrderNumber, event.VendorName)
	fmt.Fprintf(&b, "Pickup: %s\n", event.PickupTime)
	for _, line := range event.Items {
		fmt.Fprintf(&b, "  %dx %s\n", line.Quantity, line.Name)
	}

	var flags []string
	if event.TakeOut {
		flags = append(flags, "TAKE OUT")
	}
	if event.NeedsCutlery {
		flags = append(flags, "CUTLERY")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "[%s]\n", strings.Join(flags, "] ["))
	}
	if event.OrderNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", event.OrderNote)
	}
	fmt.Fprintf(&b, "Total: %s\n", event.Total.StringFixed(2))
	b.WriteString("----\n")

	return b.String()
}
