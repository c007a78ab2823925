package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusCompleted OrderStatus = "completed"
)

// PickupNow is the pickup label used when no time was chosen.
const PickupNow = "Now"

type CartLine struct {
	MenuItem MenuItem `json:"menu_item"`
	Quantity int      `json:"quantity"`
}

// Subtotal is quantity × unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.MenuItem.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"order_number"`
	Vendor       Vendor          `json:"vendor"`
	Items        []CartLine      `json:"items"`
	PickupTime   string          `json:"pickup_time"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	NeedsCutlery bool            `json:"needs_cutlery"`
	TakeOut      bool            `json:"take_out"`
	OrderNote    string          `json:"order_note"`
}
