package adapters

import "context"

// HTTPResponse represents the outcome of a transport call that reached the
// server. A transport-level failure (no response at all) is reported as an
// error instead.
type HTTPResponse struct {
	OK     bool
	Status int
	Data   map[string]any
}

// TransportAdapter performs the four outbound analytics calls.
// Implement this interface to use custom HTTP clients or non-HTTP hosts.
type TransportAdapter interface {
	// StartSession requests a server-issued session id.
	// On success the response Data contains "sessionId".
	StartSession(ctx context.Context) (*HTTPResponse, error)

	// EndSession reports the session summary. Best effort.
	EndSession(ctx context.Context, summary SessionSummary) (*HTTPResponse, error)

	// Heartbeat sends a liveness ping. A 401/403 status signals that the
	// server has invalidated the session.
	Heartbeat(ctx context.Context, payload HeartbeatPayload) (*HTTPResponse, error)

	// TrackEvent sends a single event attributed to sessionID.
	TrackEvent(ctx context.Context, sessionID string, event AnalyticsEvent) (*HTTPResponse, error)
}
