package slotservice

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/preorder/internal/slots"
)

func newTestMux(book *Book) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(book, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)
	return mux
}

func TestBook(t *testing.T) {
	book := NewBook([]string{"12:00 PM", "12:15 PM", "12:00 PM"}, 1, "12:15 PM")

	levels := book.List()
	require.Len(t, levels, 3, "duplicate labels are collapsed")
	assert.Equal(t, Level{Label: "Now", Available: 1}, levels[0])
	assert.Equal(t, Level{Label: "12:00 PM", Available: 1}, levels[1])
	assert.Equal(t, Level{Label: "12:15 PM"}, levels[2])

	lvl, err := book.Reserve("12:00 PM")
	require.NoError(t, err)
	assert.Equal(t, Level{Label: "12:00 PM", Reserved: 1}, lvl)

	_, err = book.Reserve("12:00 PM")
	assert.ErrorIs(t, err, ErrSlotFull)

	_, err = book.Reserve("12:15 PM")
	assert.ErrorIs(t, err, ErrSlotFull)

	_, err = book.Reserve("9:00 PM")
	assert.ErrorIs(t, err, ErrUnknownSlot)

	_, err = book.Get("9:00 PM")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestNewBook_SeedsNow(t *testing.T) {
	windows := slots.GenerateWindows(time.Date(2025, 3, 4, 11, 0, 0, 0, time.UTC))
	require.NotContains(t, windows, "Now")

	book := NewBook(windows, 2, slots.DefaultBlockedWindow)

	levels := book.List()
	require.Len(t, levels, len(windows)+1)
	assert.Equal(t, Level{Label: "Now", Available: 2}, levels[0])

	_, err := book.Reserve("Now")
	require.NoError(t, err)

	lvl, err := book.Get(slots.DefaultBlockedWindow)
	require.NoError(t, err)
	assert.Zero(t, lvl.Available)
}

func TestHandler_HandleReserve(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"open slot", `{"pickup_time":"12:30 PM"}`, http.StatusOK},
		{"blocked slot", `{"pickup_time":"12:15 PM"}`, http.StatusConflict},
		{"unknown slot", `{"pickup_time":"9:00 PM"}`, http.StatusNotFound},
		{"missing label", `{}`, http.StatusBadRequest},
		{"malformed body", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(NewBook(slots.DefaultSlots, 5, slots.DefaultBlockedSlot))

			req := httptest.NewRequest(http.MethodPost, "/slots/reserve", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandler_ConflictBody(t *testing.T) {
	mux := newTestMux(NewBook(slots.DefaultSlots, 5, slots.DefaultBlockedSlot))

	req := httptest.NewRequest(http.MethodPost, "/slots/reserve", strings.NewReader(`{"pickup_time":"12:15 PM"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{
		"error":       "SLOT_FULL",
		"message":     "12:15 PM is fully booked. Please choose another pickup time.",
		"blockedTime": "12:15 PM",
	}, body)
}

func TestHandler_HandleAvailability(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"open slot", "?pickup_time=12%3A30+PM", http.StatusOK},
		{"blocked slot", "?pickup_time=12%3A15+PM", http.StatusConflict},
		{"unknown slot", "?pickup_time=9%3A00+PM", http.StatusNotFound},
		{"missing label", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewBook(slots.DefaultSlots, 5, slots.DefaultBlockedSlot)
			mux := newTestMux(book)

			req := httptest.NewRequest(http.MethodGet, "/slots/availability"+tt.query, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			for _, lvl := range book.List() {
				assert.Zero(t, lvl.Reserved, "availability never reserves")
			}
		})
	}
}

func TestHTTPSubmitterAgainstService(t *testing.T) {
	server := httptest.NewServer(newTestMux(NewBook(slots.DefaultSlots, 1, slots.DefaultBlockedSlot)))
	defer server.Close()

	submitter := slots.NewHTTPSubmitter(server.URL, server.Client())
	ctx := context.Background()

	out, err := submitter.Submit(ctx, "12:30 PM")
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	out, err = submitter.Submit(ctx, "12:30 PM")
	require.NoError(t, err)
	assert.False(t, out.Accepted, "capacity of one is used up")
	assert.Equal(t, "12:30 PM", out.BlockedLabel)

	out, err = submitter.Submit(ctx, slots.DefaultBlockedSlot)
	require.NoError(t, err)
	assert.Equal(t, slots.Rejected(slots.DefaultBlockedSlot), out)

	_, err = submitter.Submit(ctx, "9:00 PM")
	assert.Error(t, err, "unknown labels surface as errors")
}

func TestHTTPSubmitterCheckAgainstService(t *testing.T) {
	book := NewBook(slots.DefaultSlots, 1, slots.DefaultBlockedSlot)
	server := httptest.NewServer(newTestMux(book))
	defer server.Close()

	submitter := slots.NewHTTPSubmitter(server.URL, server.Client())
	ctx := context.Background()

	for range 3 {
		out, err := submitter.Check(ctx, "12:45 PM")
		require.NoError(t, err)
		assert.True(t, out.Accepted)
	}

	lvl, err := book.Get("12:45 PM")
	require.NoError(t, err)
	assert.Equal(t, Level{Label: "12:45 PM", Available: 1}, lvl)

	out, err := submitter.Submit(ctx, "12:45 PM")
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	out, err = submitter.Check(ctx, "12:45 PM")
	require.NoError(t, err)
	assert.Equal(t, slots.Rejected("12:45 PM"), out)
}
