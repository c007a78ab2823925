// Package slots decides whether a pickup-time label can be accepted at
// submission time.
//
// The simulated resolver models a backend whose slot capacity can be consumed
// between the moment a user picks a time and the moment they submit: one
// designated label looks available but is always rejected on submission.
package slots

import (
	"context"
	"fmt"

	"github.com/campus-eats/preorder/internal/clock"
	"github.com/campus-eats/preorder/internal/domain"
)

// CodeSlotFull is reported when a pickup slot has no capacity left.
const CodeSlotFull = "SLOT_FULL"

// DefaultBlockedSlot is the label rejected by the simulated backend.
const DefaultBlockedSlot = "12:15 PM"

// DefaultBlockedWindow is the rejected label when candidates are windows.
const DefaultBlockedWindow = "12:00 PM - 12:30 PM"

// DefaultSlots is the static candidate list shown at checkout.
var DefaultSlots = []string{
	domain.PickupNow,
	"12:00 PM",
	"12:15 PM",
	"12:30 PM",
	"12:45 PM",
	"1:00 PM",
}

// Outcome is the result of a submission check.
type Outcome struct {
	Accepted     bool   `json:"accepted"`
	Code         string `json:"code,omitempty"`
	BlockedLabel string `json:"blocked_time,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Submitter is the backend capability the session store depends on. Check
// reports whether label would be accepted without holding anything; Submit
// claims it for an order.
type Submitter interface {
	Check(ctx context.Context, label string) (Outcome, error)
	Submit(ctx context.Context, label string) (Outcome, error)
}

// Accepted returns a successful outcome.
func Accepted() Outcome {
	return Outcome{Accepted: true}
}

// Rejected returns a SLOT_FULL outcome for label.
func Rejected(label string) Outcome {
	return Outcome{
		Code:         CodeSlotFull,
		BlockedLabel: label,
		Message:      fmt.Sprintf("%s is fully booked. Please choose another pickup time.", label),
	}
}

type Resolver struct {
	candidates func() []string
	blocked    string
}

// NewResolver returns a resolver over a fixed candidate list.
func NewResolver(candidates []string, blocked string) *Resolver {
	fixed := make([]string, len(candidates))
	copy(fixed, candidates)

	return &Resolver{
		candidates: func() []string {
			out := make([]string, len(fixed))
			copy(out, fixed)
			return out
		},
		blocked: blocked,
	}
}

// NewWindowResolver returns a resolver whose candidates are the half-hour
// windows still open at the clock's current time.
func NewWindowResolver(clk clock.Clock, blocked string) *Resolver {
	return &Resolver{
		candidates: func() []string {
			return GenerateWindows(clk.Now())
		},
		blocked: blocked,
	}
}

func (r *Resolver) CandidateSlots() []string {
	return r.candidates()
}

func (r *Resolver) BlockedSlot() string {
	return r.blocked
}

// Evaluate checks label against the caller-owned rejected set and the
// blocked label. A rejected label stays rejected without re-checking. When
// the blocked label is reported, the caller must add it to its set.
func (r *Resolver) Evaluate(label string, rejected RejectedSet) Outcome {
	if rejected.Has(label) {
		return Rejected(label)
	}
	if r.blocked != "" && label == r.blocked {
		return Rejected(label)
	}
	return Accepted()
}

// Check implements Submitter with no prior rejections.
func (r *Resolver) Check(_ context.Context, label string) (Outcome, error) {
	return r.Evaluate(label, nil), nil
}

// Submit implements Submitter. The simulated backend holds no capacity, so
// it answers the same as Check.
func (r *Resolver) Submit(_ context.Context, label string) (Outcome, error) {
	return r.Evaluate(label, nil), nil
}
