// Package slotservice is a small pickup-slot reservation service. Each label
// has a fixed number of pickups and every reservation takes one.
package slotservice

import (
	"errors"
	"sync"

	"github.com/campus-eats/preorder/internal/domain"
)

var (
	ErrSlotFull    = errors.New("slot full")
	ErrUnknownSlot = errors.New("unknown slot")
)

// Level is the capacity of one pickup label.
type Level struct {
	Label     string `json:"label"`
	Available int    `json:"available"`
	Reserved  int    `json:"reserved"`
}

// Book holds slot capacity in memory and is safe for concurrent use.
type Book struct {
	mu     sync.Mutex
	order  []string
	levels map[string]*Level
}

// NewBook gives every label capacity pickups except blocked, which starts
// with none. "Now" is always bookable, first in the list, even when labels
// are windows that leave it out.
func NewBook(labels []string, capacity int, blocked string) *Book {
	b := &Book{levels: make(map[string]*Level, len(labels)+1)}
	for _, label := range append([]string{domain.PickupNow}, labels...) {
		if _, ok := b.levels[label]; ok {
			continue
		}
		available := capacity
		if label == blocked {
			available = 0
		}
		b.order = append(b.order, label)
		b.levels[label] = &Level{Label: label, Available: available}
	}
	return b
}

func (b *Book) List() []Level {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Level, 0, len(b.order))
	for _, label := range b.order {
		out = append(out, *b.levels[label])
	}
	return out
}

func (b *Book) Get(label string) (Level, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lvl, ok := b.levels[label]
	if !ok {
		return Level{}, ErrUnknownSlot
	}
	return *lvl, nil
}

// Reserve takes one pickup from label.
func (b *Book) Reserve(label string) (Level, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lvl, ok := b.levels[label]
	if !ok {
		return Level{}, ErrUnknownSlot
	}
	if lvl.Available == 0 {
		return *lvl, ErrSlotFull
	}
	lvl.Available--
	lvl.Reserved++
	return *lvl, nil
}
