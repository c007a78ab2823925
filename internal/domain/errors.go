package domain

import "errors"

var (
	// ErrInvalidSessionState is returned when an order is placed without a
	// selected vendor or with an empty cart.
	ErrInvalidSessionState = errors.New("invalid session state")
	// ErrSlotFull is returned when the requested pickup slot was rejected.
	ErrSlotFull = errors.New("slot full")

	ErrVendorNotFound    = errors.New("vendor not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrVendorFullyBooked = errors.New("vendor fully booked")
)
