package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventTypeOrderPlaced names OrderPlacedEvent on the wire.
const EventTypeOrderPlaced = "order.placed"

type OrderPlacedEvent struct {
	OrderID      string          `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	VendorID     string          `json:"vendor_id"`
	VendorName   string          `json:"vendor_name"`
	Items        []EventLine     `json:"items"`
	PickupTime   string          `json:"pickup_time"`
	Total        decimal.Decimal `json:"total"`
	NeedsCutlery bool            `json:"needs_cutlery"`
	TakeOut      bool            `json:"take_out"`
	OrderNote    string          `json:"order_note,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type EventLine struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (OrderPlacedEvent) EventType() string { return EventTypeOrderPlaced }

func NewOrderPlacedEvent(order Order) OrderPlacedEvent {
	lines := make([]EventLine, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, EventLine{
			ItemID:   line.MenuItem.ID,
			Name:     line.MenuItem.Name,
			Quantity: line.Quantity,
		})
	}

	return OrderPlacedEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		VendorID:     order.Vendor.ID,
		VendorName:   order.Vendor.Name,
		Items:        lines,
		PickupTime:   order.PickupTime,
		Total:        order.Total,
		NeedsCutlery: order.NeedsCutlery,
		TakeOut:      order.TakeOut,
		OrderNote:    order.OrderNote,
		Timestamp:    order.CreatedAt,
	}
}
