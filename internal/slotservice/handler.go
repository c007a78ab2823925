package slotservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/campus-eats/preorder/internal/slots"
)

type Handler struct {
	book     *Book
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(book *Book, logger *slog.Logger) *Handler {
	return &Handler{
		book:     book,
		validate: validator.New(),
		logger:   logger,
	}
}

type slotRequest struct {
	PickupTime string `json:"pickup_time" validate:"required"`
}

// slotFullResponse uses the camelCase field the ordering clients expect.
type slotFullResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	BlockedTime string `json:"blockedTime"`
}

// Register mounts the service routes on mux, each wrapped by wrap in order.
func (h *Handler) Register(mux *http.ServeMux, wrap ...func(http.HandlerFunc) http.HandlerFunc) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /slots", h.HandleList},
		{"GET /slots/availability", h.HandleAvailability},
		{"POST /slots/reserve", h.HandleReserve},
	}

	for _, route := range routes {
		fn := route.handler
		for _, w := range wrap {
			fn = w(fn)
		}
		mux.HandleFunc(route.pattern, fn)
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	levels := h.book.List()
	h.logger.Info("slots listed", "count", len(levels))
	h.writeJSON(w, http.StatusOK, levels)
}

// HandleAvailability answers like HandleReserve without taking capacity.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("pickup_time")
	if label == "" {
		h.writeError(w, http.StatusBadRequest, "pickup_time is required")
		return
	}

	level, err := h.book.Get(label)
	if err != nil {
		if errors.Is(err, ErrUnknownSlot) {
			h.writeError(w, http.StatusNotFound, "slot not found")
			return
		}
		h.logger.Error("failed to read slot", "error", err, "pickup_time", label)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if level.Available == 0 {
		h.writeSlotFull(w, label)
		return
	}
	h.writeJSON(w, http.StatusOK, level)
}

func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if !h.decode(w, r, &req) {
		return
	}

	level, err := h.book.Reserve(req.PickupTime)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotFull):
			h.logger.Warn("slot full", "pickup_time", req.PickupTime)
			h.writeSlotFull(w, req.PickupTime)
		case errors.Is(err, ErrUnknownSlot):
			h.writeError(w, http.StatusNotFound, "slot not found")
		default:
			h.logger.Error("failed to reserve slot", "error", err, "pickup_time", req.PickupTime)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("slot reserved", "pickup_time", req.PickupTime, "available", level.Available)
	h.writeJSON(w, http.StatusOK, level)
}

func (h *Handler) writeSlotFull(w http.ResponseWriter, label string) {
	h.writeJSON(w, http.StatusConflict, slotFullResponse{
		Error:       slots.CodeSlotFull,
		Message:     fmt.Sprintf("%s is fully booked. Please choose another pickup time.", label),
		BlockedTime: label,
	})
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
