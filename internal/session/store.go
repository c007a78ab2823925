// Package session holds the active ordering session: the selected vendor,
// the cart, order options, the chosen pickup time and the order history.
//
// A Store is not safe for concurrent use. It models a single UI event loop:
// callers must serialize access.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campus-eats/preorder/internal/clock"
	"github.com/campus-eats/preorder/internal/domain"
	"github.com/campus-eats/preorder/internal/slots"
)

// SlotNoticeText is the inline helper shown after the user chooses another
// time following a rejection.
const SlotNoticeText = "That slot just filled up. Pick another time to continue."

// Observer is told about placed orders and rejected slots.
type Observer interface {
	OrderPlaced(order domain.Order)
	SlotRejected(label string)
}

// Store is the single ordering session owned by the composition root.
type Store struct {
	submitter  slots.Submitter
	candidates func() []string
	clock      clock.Clock
	rand       RandSource
	newID      func() string
	logger     *slog.Logger
	observers  []Observer

	vendor       *domain.Vendor
	cart         []domain.CartLine
	orders       []domain.Order
	currentOrder *domain.Order
	needsCutlery bool
	takeOut      bool
	orderNote    string
	pickupTime   *string
	rejected     slots.RejectedSet
	slotNotice   string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for order timestamps.
func WithClock(clk clock.Clock) Option {
	return func(s *Store) {
		s.clock = clk
	}
}

// WithRand sets the source used for order numbers.
func WithRand(r RandSource) Option {
	return func(s *Store) {
		s.rand = r
	}
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCandidateSlots sets where the pickup labels offered at checkout come from.
func WithCandidateSlots(fn func() []string) Option {
	return func(s *Store) {
		s.candidates = fn
	}
}

// WithObserver registers an observer. Observers run synchronously inside the
// mutating call and must not block.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

// New returns an empty session that checks pickup slots with submitter.
func New(submitter slots.Submitter, opts ...Option) *Store {
	s := &Store{
		submitter: submitter,
		candidates: func() []string {
			return append([]string(nil), slots.DefaultSlots...)
		},
		clock:        clock.NewSystem(),
		rand:         globalRand{},
		newID:        newOrderID,
		logger:       slog.New(slog.DiscardHandler),
		needsCutlery: true,
		rejected:     slots.RejectedSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Snapshot returns a copy of the whole session. Later calls on the store do
// not affect it.
func (s *Store) Snapshot() State {
	orders := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		orders[i] = cloneOrder(o)
	}

	state := State{
		SelectedVendor: cloneVendor(s.vendor),
		Cart:           cloneLines(s.cart),
		Orders:         orders,
		NeedsCutlery:   s.needsCutlery,
		TakeOut:        s.takeOut,
		OrderNote:      s.orderNote,
		RejectedSlots:  s.rejected.Labels(),
		SlotNotice:     s.slotNotice,
		CartTotal:      cartTotal(s.cart),
		CartItemCount:  cartItemCount(s.cart),
	}
	if s.currentOrder != nil {
		o := cloneOrder(*s.currentOrder)
		state.CurrentOrder = &o
	}
	if s.pickupTime != nil {
		p := *s.pickupTime
		state.PickupTime = &p
	}
	return state
}

// SelectedVendor returns the chosen vendor, or nil.
func (s *Store) SelectedVendor() *domain.Vendor {
	return cloneVendor(s.vendor)
}

// Cart returns the cart lines in insertion order.
func (s *Store) Cart() []domain.CartLine {
	return cloneLines(s.cart)
}

// Orders returns the order history, newest first.
func (s *Store) Orders() []domain.Order {
	return s.Snapshot().Orders
}

// Order looks up a placed order by id.
func (s *Store) Order(id string) (domain.Order, bool) {
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return domain.Order{}, false
}

// CurrentOrder returns the order just placed, or nil once cleared.
func (s *Store) CurrentOrder() *domain.Order {
	if s.currentOrder == nil {
		return nil
	}
	o := cloneOrder(*s.currentOrder)
	return &o
}

// Order options.
func (s *Store) NeedsCutlery() bool { return s.needsCutlery }
func (s *Store) TakeOut() bool      { return s.takeOut }
func (s *Store) OrderNote() string  { return s.orderNote }

// PickupTime returns the chosen label, or nil for "Now".
func (s *Store) PickupTime() *string {
	if s.pickupTime == nil {
		return nil
	}
	p := *s.pickupTime
	return &p
}

// ItemQuantity returns how many of itemID are in the cart.
func (s *Store) ItemQuantity(itemID string) int {
	if i := s.lineIndex(itemID); i >= 0 {
		return s.cart[i].Quantity
	}
	return 0
}

// CartTotal is the sum of quantity × price over the cart.
func (s *Store) CartTotal() decimal.Decimal {
	return cartTotal(s.cart)
}

// CartItemCount is the sum of quantities in the cart.
func (s *Store) CartItemCount() int {
	return cartItemCount(s.cart)
}

// SelectVendor starts a new order with v. Any cart, options, pickup time and
// slot rejections from the previous vendor are discarded.
func (s *Store) SelectVendor(v domain.Vendor) {
	s.vendor = cloneVendor(&v)
	s.resetOrder()
	s.logger.Info("vendor selected", "vendor_id", v.ID)
}

// AddToCart adds one of item, appending a new line when it is not in the
// cart yet.
func (s *Store) AddToCart(item domain.MenuItem) {
	cart := cloneLines(s.cart)
	if i := s.lineIndex(item.ID); i >= 0 {
		cart[i].Quantity++
	} else {
		cart = append(cart, domain.CartLine{MenuItem: item, Quantity: 1})
	}
	s.cart = cart
}

// RemoveFromCart takes one of itemID out of the cart. The line goes away
// when its last unit is removed; unknown ids are ignored.
func (s *Store) RemoveFromCart(itemID string) {
	i := s.lineIndex(itemID)
	if i < 0 {
		return
	}

	cart := cloneLines(s.cart)
	if cart[i].Quantity > 1 {
		cart[i].Quantity--
	} else {
		cart = append(cart[:i], cart[i+1:]...)
	}
	s.cart = cart
}

// ClearCart abandons the order in progress, including the vendor selection.
func (s *Store) ClearCart() {
	s.vendor = nil
	s.resetOrder()
}

func (s *Store) SetNeedsCutlery(v bool) { s.needsCutlery = v }
func (s *Store) SetTakeOut(v bool)      { s.takeOut = v }
func (s *Store) SetOrderNote(note string) {
	s.orderNote = note
}

// SetPickupTime chooses a pickup label. domain.PickupNow is stored as no
// choice.
func (s *Store) SetPickupTime(label string) {
	if label == domain.PickupNow {
		s.pickupTime = nil
		return
	}
	s.pickupTime = &label
}

// PlaceOrder records the current cart as a pending order, makes it the
// current order and closes the session. It fails with
// domain.ErrInvalidSessionState, leaving the session untouched, when no
// vendor is selected or the cart is empty.
func (s *Store) PlaceOrder() (domain.Order, error) {
	if err := s.validate(); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:           s.newID(),
		OrderNumber:  GenerateOrderNumber(s.rand),
		Vendor:       *cloneVendor(s.vendor),
		Items:        cloneLines(s.cart),
		PickupTime:   s.resolvedPickupTime(),
		Total:        s.CartTotal(),
		Status:       domain.OrderStatusPending,
		CreatedAt:    s.clock.Now(),
		NeedsCutlery: s.needsCutlery,
		TakeOut:      s.takeOut,
		OrderNote:    s.orderNote,
	}

	s.orders = append([]domain.Order{order}, s.orders...)
	current := cloneOrder(order)
	s.currentOrder = &current
	s.vendor = nil
	s.resetOrder()

	s.logger.Info("order placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"vendor_id", order.Vendor.ID,
		"pickup_time", order.PickupTime,
		"total", order.Total.StringFixed(2),
	)
	for _, o := range s.observers {
		o.OrderPlaced(cloneOrder(order))
	}

	return cloneOrder(order), nil
}

// ClearCurrentOrder forgets the order shown on the confirmation view.
func (s *Store) ClearCurrentOrder() {
	s.currentOrder = nil
}

// CandidateTimeSlots lists the pickup labels offered at checkout.
func (s *Store) CandidateTimeSlots() []string {
	return s.candidates()
}

// SlotOptions lists the candidate labels with their selected and full flags.
func (s *Store) SlotOptions() []SlotOption {
	selected := s.resolvedPickupTime()
	labels := s.candidates()

	options := make([]SlotOption, 0, len(labels))
	for _, label := range labels {
		full := s.rejected.Has(label)
		options = append(options, SlotOption{
			Label:    label,
			Selected: label == selected && !full,
			Full:     full,
		})
	}
	return options
}

// IsSlotRejected reports whether label was rejected in this session.
func (s *Store) IsSlotRejected(label string) bool {
	return s.rejected.Has(label)
}

// RejectedSlots lists the labels rejected in this session, sorted.
func (s *Store) RejectedSlots() []string {
	return s.rejected.Labels()
}

// SlotNotice returns the inline helper text, empty when none is shown.
func (s *Store) SlotNotice() string {
	return s.slotNotice
}

// EvaluateSubmission asks whether label can be used for pickup without
// holding it. A label rejected earlier in the session is reported as full
// without asking the submitter again; a new rejection is remembered for the
// rest of the session.
func (s *Store) EvaluateSubmission(ctx context.Context, label string) (slots.Outcome, error) {
	return s.submit(ctx, label, s.submitter.Check)
}

// Checkout submits the session: the pickup time (or "Now") is claimed with
// the submitter and, when accepted, the order is placed. A rejected slot
// yields a *SlotFullError and leaves the cart and vendor as they are.
func (s *Store) Checkout(ctx context.Context) (domain.Order, error) {
	if err := s.validate(); err != nil {
		return domain.Order{}, err
	}

	out, err := s.submit(ctx, s.resolvedPickupTime(), s.submitter.Submit)
	if err != nil {
		return domain.Order{}, err
	}
	if !out.Accepted {
		return domain.Order{}, &SlotFullError{Label: out.BlockedLabel, Message: out.Message}
	}

	s.slotNotice = ""
	return s.PlaceOrder()
}

func (s *Store) submit(ctx context.Context, label string, call func(context.Context, string) (slots.Outcome, error)) (slots.Outcome, error) {
	if s.rejected.Has(label) {
		return slots.Rejected(label), nil
	}

	out, err := call(ctx, label)
	if err != nil {
		return slots.Outcome{}, fmt.Errorf("submit pickup slot %s: %w", label, err)
	}
	if out.Accepted {
		return out, nil
	}

	if out.BlockedLabel == "" {
		out.BlockedLabel = label
	}
	s.rejected.Add(out.BlockedLabel)

	s.logger.Warn("pickup slot rejected", "pickup_time", out.BlockedLabel, "code", out.Code)
	for _, o := range s.observers {
		o.SlotRejected(out.BlockedLabel)
	}

	return out, nil
}

// ChooseAnotherTime is the primary recovery after a rejection: the session
// is kept and the inline helper stays up until an order goes through.
func (s *Store) ChooseAnotherTime() {
	s.slotNotice = SlotNoticeText
}

// AbandonVendor is the secondary recovery after a rejection. The cart and
// vendor are left for a later SelectVendor or ClearCart to discard.
func (s *Store) AbandonVendor() {
	vendorID := ""
	if s.vendor != nil {
		vendorID = s.vendor.ID
	}
	s.logger.Info("vendor abandoned after slot rejection", "vendor_id", vendorID, "cart_items", s.CartItemCount())
}

func (s *Store) validate() error {
	if s.vendor == nil {
		return fmt.Errorf("%w: no vendor selected", domain.ErrInvalidSessionState)
	}
	if len(s.cart) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrInvalidSessionState)
	}
	return nil
}

func (s *Store) resolvedPickupTime() string {
	if s.pickupTime == nil {
		return domain.PickupNow
	}
	return *s.pickupTime
}

func (s *Store) resetOrder() {
	s.cart = nil
	s.needsCutlery = true
	s.takeOut = false
	s.orderNote = ""
	s.pickupTime = nil
	s.rejected = slots.RejectedSet{}
	s.slotNotice = ""
}

func (s *Store) lineIndex(itemID string) int {
	for i, line := range s.cart {
		if line.MenuItem.ID == itemID {
			return i
		}
	}
	return -1
}
