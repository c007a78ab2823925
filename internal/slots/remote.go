package slots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// HTTPSubmitter asks a slot service about a pickup label. Check reads
// availability and Submit reserves; the service answers 409 with a SLOT_FULL
// body when capacity is gone.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSubmitter(baseURL string, client *http.Client) *HTTPSubmitter {
	return &HTTPSubmitter{
		baseURL: baseURL,
		client:  client,
	}
}

type reserveRequest struct {
	PickupTime string `json:"pickup_time"`
}

type conflictResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	BlockedTime string `json:"blockedTime"`
}

func (s *HTTPSubmitter) Submit(ctx context.Context, label string) (Outcome, error) {
	data, err := json.Marshal(reserveRequest{PickupTime: label})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal reserve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/slots/reserve", bytes.NewReader(data))
	if err != nil {
		return Outcome{}, fmt.Errorf("create reserve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("reserve slot %s: %w", label, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeOutcome(resp, label)
}

func (s *HTTPSubmitter) Check(ctx context.Context, label string) (Outcome, error) {
	endpoint := s.baseURL + "/slots/availability?pickup_time=" + url.QueryEscape(label)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("create availability request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("check slot %s: %w", label, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeOutcome(resp, label)
}

func decodeOutcome(resp *http.Response, label string) (Outcome, error) {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return Accepted(), nil
	case http.StatusConflict:
		var body conflictResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return Rejected(label), nil
		}
		blocked := body.BlockedTime
		if blocked == "" {
			blocked = label
		}
		outcome := Rejected(blocked)
		if body.Message != "" {
			outcome.Message = body.Message
		}
		return outcome, nil
	default:
		return Outcome{}, fmt.Errorf("slot service returned status %d for %s", resp.StatusCode, label)
	}
}
