// Package ordering serves the ordering session to a UI as JSON over HTTP.
package ordering

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/campus-eats/preorder/internal/catalog"
	"github.com/campus-eats/preorder/internal/domain"
	"github.com/campus-eats/preorder/internal/session"
	"github.com/campus-eats/preorder/internal/slots"
)

const (
	ActionChooseAnotherTime = "choose_another_time"
	ActionAbandonVendor     = "abandon_vendor"
)

// Handler serializes every request on one mutex: the store is a single
// session driven by one UI, one event at a time.
type Handler struct {
	mu       sync.Mutex
	store    *session.Store
	catalog  *catalog.Catalog
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(store *session.Store, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		catalog:  cat,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register adds the routes to mux, wrapping each handler with wrap (in order).
func (h *Handler) Register(mux *http.ServeMux, wrap ...func(http.HandlerFunc) http.HandlerFunc) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /health", h.HandleHealth},
		{"GET /vendors", h.HandleListVendors},
		{"GET /vendors/{id}", h.HandleGetVendor},
		{"GET /slots", h.HandleListSlots},
		{"GET /session", h.HandleGetSession},
		{"POST /session/vendor", h.HandleSelectVendor},
		{"POST /session/cart/items", h.HandleAddItem},
		{"DELETE /session/cart/items/{itemId}", h.HandleRemoveItem},
		{"DELETE /session/cart", h.HandleClearCart},
		{"PATCH /session/options", h.HandleUpdateOptions},
		{"PUT /session/pickup-time", h.HandleSetPickupTime},
		{"POST /session/slots/evaluate", h.HandleEvaluateSlot},
		{"POST /session/checkout", h.HandleCheckout},
		{"POST /session/recovery/choose-another-time", h.HandleChooseAnotherTime},
		{"POST /session/recovery/abandon-vendor", h.HandleAbandonVendor},
		{"GET /session/current-order", h.HandleGetCurrentOrder},
		{"DELETE /session/current-order", h.HandleClearCurrentOrder},
		{"GET /orders", h.HandleListOrders},
		{"GET /orders/{id}", h.HandleGetOrder},
	}

	for _, route := range routes {
		fn := route.handler
		for _, w := range wrap {
			fn = w(fn)
		}
		mux.HandleFunc(route.pattern, fn)
	}
}

type sessionResponse struct {
	session.State
	Slots []session.SlotOption `json:"slots"`
}

type slotFullResponse struct {
	Error       string   `json:"error"`
	BlockedTime string   `json:"blocked_time"`
	Message     string   `json:"message"`
	Actions     []string `json:"actions"`
}

type selectVendorRequest struct {
	VendorID string `json:"vendor_id" validate:"required"`
}

type addItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type updateOptionsRequest struct {
	NeedsCutlery *bool   `json:"needs_cutlery"`
	TakeOut      *bool   `json:"take_out"`
	OrderNote    *string `json:"order_note" validate:"omitempty,max=500"`
}

type pickupTimeRequest struct {
	PickupTime string `json:"pickup_time" validate:"required"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleListVendors(w http.ResponseWriter, r *http.Request) {
	vendors := h.catalog.Vendors()
	h.logger.Info("vendors listed", "count", len(vendors))
	h.writeJSON(w, http.StatusOK, vendors)
}

func (h *Handler) HandleGetVendor(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.catalog.Vendor(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	h.writeJSON(w, http.StatusOK, vendor)
}

func (h *Handler) HandleListSlots(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, h.store.SlotOptions())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleSelectVendor(w http.ResponseWriter, r *http.Request) {
	var req selectVendorRequest
	if !h.decode(w, r, &req) {
		return
	}

	vendor, err := h.catalog.Vendor(req.VendorID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if vendor.FullyBooked {
		h.writeError(w, http.StatusConflict, domain.ErrVendorFullyBooked.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.SelectVendor(vendor)
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	vendor := h.store.SelectedVendor()
	if vendor == nil {
		h.writeError(w, http.StatusUnprocessableEntity, "no vendor selected")
		return
	}

	item, ok := vendor.Item(req.ItemID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	h.store.AddToCart(item)
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.RemoveFromCart(r.PathValue("itemId"))
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.ClearCart()
	h.logger.Info("cart cleared")
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleUpdateOptions(w http.ResponseWriter, r *http.Request) {
	var req updateOptionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.NeedsCutlery != nil {
		h.store.SetNeedsCutlery(*req.NeedsCutlery)
	}
	if req.TakeOut != nil {
		h.store.SetTakeOut(*req.TakeOut)
	}
	if req.OrderNote != nil {
		h.store.SetOrderNote(*req.OrderNote)
	}
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleSetPickupTime(w http.ResponseWriter, r *http.Request) {
	var req pickupTimeRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// "Now" clears the choice in every slot mode.
	if req.PickupTime != domain.PickupNow && !slices.Contains(h.store.CandidateTimeSlots(), req.PickupTime) {
		h.writeError(w, http.StatusBadRequest, "unknown pickup time")
		return
	}
	if h.store.IsSlotRejected(req.PickupTime) {
		h.writeError(w, http.StatusConflict, "pickup time is full")
		return
	}

	h.store.SetPickupTime(req.PickupTime)
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleEvaluateSlot(w http.ResponseWriter, r *http.Request) {
	var req pickupTimeRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	out, err := h.store.EvaluateSubmission(r.Context(), req.PickupTime)
	if err != nil {
		h.logger.Error("failed to evaluate pickup slot", "error", err, "pickup_time", req.PickupTime)
		h.writeError(w, http.StatusBadGateway, "slot service unavailable")
		return
	}
	if !out.Accepted {
		h.writeSlotFull(w, out.BlockedLabel, out.Message)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.store.Checkout(r.Context())
	if err != nil {
		var slotErr *session.SlotFullError
		switch {
		case errors.As(err, &slotErr):
			h.writeSlotFull(w, slotErr.Label, slotErr.Message)
		case errors.Is(err, domain.ErrInvalidSessionState):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("failed to check out", "error", err)
			h.writeError(w, http.StatusBadGateway, "slot service unavailable")
		}
		return
	}

	h.logger.Info("order checked out", "order_id", order.ID, "order_number", order.OrderNumber)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleChooseAnotherTime(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.ChooseAnotherTime()
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleAbandonVendor(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.AbandonVendor()
	h.writeSession(w, http.StatusOK)
}

func (h *Handler) HandleGetCurrentOrder(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	order := h.store.CurrentOrder()
	if order == nil {
		h.writeError(w, http.StatusNotFound, "no current order")
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleClearCurrentOrder(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.ClearCurrentOrder()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	orders := h.store.Orders()
	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.mu.Lock()
	defer h.mu.Unlock()

	order, ok := h.store.Order(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeSession must be called with h.mu held.
func (h *Handler) writeSession(w http.ResponseWriter, status int) {
	h.writeJSON(w, status, sessionResponse{
		State: h.store.Snapshot(),
		Slots: h.store.SlotOptions(),
	})
}

func (h *Handler) writeSlotFull(w http.ResponseWriter, label, message string) {
	h.logger.Info("pickup slot full", "pickup_time", label)
	h.writeJSON(w, http.StatusConflict, slotFullResponse{
		Error:       slots.CodeSlotFull,
		BlockedTime: label,
		Message:     message,
		Actions:     []string{ActionChooseAnotherTime, ActionAbandonVendor},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
