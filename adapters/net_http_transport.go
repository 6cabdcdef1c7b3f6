package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Paths of the analytics endpoints, relative to the configured base URL.
const (
	pathSessionStart = "/analytics/session/start"
	pathSessionEnd   = "/analytics/session/end"
	pathHeartbeat    = "/analytics/heartbeat"
	pathTrack        = "/analytics/track"
)

// sessionIDHeader carries the session id on heartbeat and track calls.
const sessionIDHeader = "X-Session-ID"

// NetHTTPTransport is the standard transport implementation using net/http.
type NetHTTPTransport struct {
	baseURL string
	client  *http.Client
}

// Ensure NetHTTPTransport implements TransportAdapter interface
var _ TransportAdapter = (*NetHTTPTransport)(nil)

// NewNetHTTPTransport creates a transport that POSTs to the analytics
// endpoints under baseURL.
func NewNetHTTPTransport(baseURL string) *NetHTTPTransport {
	return &NetHTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *NetHTTPTransport) StartSession(ctx context.Context) (*HTTPResponse, error) {
	return t.post(ctx, pathSessionStart, nil, "")
}

func (t *NetHTTPTransport) EndSession(ctx context.Context, summary SessionSummary) (*HTTPResponse, error) {
	return t.post(ctx, pathSessionEnd, summary, summary.SessionID)
}

func (t *NetHTTPTransport) Heartbeat(ctx context.Context, payload HeartbeatPayload) (*HTTPResponse, error) {
	return t.post(ctx, pathHeartbeat, payload, payload.SessionID)
}

func (t *NetHTTPTransport) TrackEvent(ctx context.Context, sessionID string, event AnalyticsEvent) (*HTTPResponse, error) {
	return t.post(ctx, pathTrack, event, sessionID)
}

func (t *NetHTTPTransport) post(ctx context.Context, path string, body any, sessionID string) (*HTTPResponse, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionIDHeader, sessionID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	result := &HTTPResponse{
		Status: resp.StatusCode,
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	// Response bodies are small acks; a decode failure is not a transport
	// failure.
	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err == nil {
		result.Data = data
	}

	return result, nil
}
