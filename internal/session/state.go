package session

import (
	"github.com/shopspring/decimal"

	"github.com/campus-eats/preorder/internal/domain"
)

// State is a read-only copy of the ordering session.
type State struct {
	SelectedVendor *domain.Vendor    `json:"selected_vendor"`
	Cart           []domain.CartLine `json:"cart"`
	Orders         []domain.Order    `json:"orders"`
	CurrentOrder   *domain.Order     `json:"current_order"`
	NeedsCutlery   bool              `json:"needs_cutlery"`
	TakeOut        bool              `json:"take_out"`
	OrderNote      string            `json:"order_note"`
	PickupTime     *string           `json:"pickup_time"`
	RejectedSlots  []string          `json:"rejected_slots"`
	SlotNotice     string            `json:"slot_notice,omitempty"`
	CartTotal      decimal.Decimal   `json:"cart_total"`
	CartItemCount  int               `json:"cart_item_count"`
}

// SlotOption is one pickup chip as the checkout view renders it.
type SlotOption struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Full     bool   `json:"full"`
}

func cloneVendor(v *domain.Vendor) *domain.Vendor {
	if v == nil {
		return nil
	}
	out := *v
	out.MenuItems = append([]domain.MenuItem(nil), v.MenuItems...)
	return &out
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = cloneLines(o.Items)
	o.Vendor.MenuItems = append([]domain.MenuItem(nil), o.Vendor.MenuItems...)
	return o
}

func cartTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func cartItemCount(lines []domain.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
