package adapters

// EventType identifies the kind of a tracked event. The set is fixed; the
// server rejects anything outside it.
type EventType string

const (
	EventFieldEdit     EventType = "field_edit"
	EventAction        EventType = "action"
	EventPageView      EventType = "page_view"
	EventProjectOpen   EventType = "project_open"
	EventFeatureUsage  EventType = "feature_usage"
	EventNavigation    EventType = "navigation"
	EventSearch        EventType = "search"
	EventError         EventType = "error"
	EventPerformance   EventType = "performance"
	EventUIInteraction EventType = "ui_interaction"
)

// AnalyticsEvent is one discrete tracked occurrence. Immutable once created.
// EventID is assigned by the engine and doubles as the dedupe key for the
// pending queue.
type AnalyticsEvent struct {
	EventID   string         `json:"eventId"`
	EventType EventType      `json:"eventType"`
	Timestamp int64          `json:"timestamp"`
	EventData map[string]any `json:"eventData"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SessionRecord is the single durable record that survives restarts. Every
// write replaces the whole record.
type SessionRecord struct {
	SessionID        string `json:"sessionId"`
	StartTime        int64  `json:"startTime"`
	LastActivity     int64  `json:"lastActivity"`
	CurrentProjectID string `json:"currentProjectId,omitempty"`
	CurrentPage      string `json:"currentPage,omitempty"`
}

// HeartbeatPayload is the liveness ping body. Only the freshest state
// matters; heartbeats are never queued or retried.
type HeartbeatPayload struct {
	SessionID        string `json:"sessionId"`
	LastActivity     int64  `json:"lastActivity"`
	IsVisible        bool   `json:"isVisible"`
	CurrentProjectID string `json:"currentProjectId,omitempty"`
	CurrentPage      string `json:"currentPage,omitempty"`
}

// SessionSummary is the end-of-session report sent to the server.
type SessionSummary struct {
	SessionID      string   `json:"sessionId"`
	Duration       int64    `json:"duration"`
	PageViews      []string `json:"pageViews"`
	ProjectsViewed []string `json:"projectsViewed"`
	Events         int      `json:"events"`
}
