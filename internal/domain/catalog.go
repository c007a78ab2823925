package domain

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
}

type Vendor struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Location    string     `json:"location" yaml:"location"`
	PrepTime    string     `json:"prep_time" yaml:"prep_time"`
	FullyBooked bool       `json:"fully_booked" yaml:"fully_booked"`
	MenuItems   []MenuItem `json:"menu_items" yaml:"menu_items"`
}

// Item returns the menu item with the given id.
func (v Vendor) Item(itemID string) (MenuItem, bool) {
	for _, item := range v.MenuItems {
		if item.ID == itemID {
			return item, true
		}
	}
	return MenuItem{}, false
}
