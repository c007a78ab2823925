package session

import (
	"fmt"

	"github.com/campus-eats/preorder/internal/domain"
)

// SlotFullError reports a pickup slot rejected at checkout.
type SlotFullError struct {
	Label   string
	Message string
}

func (e *SlotFullError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", domain.ErrSlotFull, e.Label)
	}
	return e.Message
}

func (e *SlotFullError) Unwrap() error {
	return domain.ErrSlotFull
}
