package beacon

import (
	"time"

	"github.com/minddeck/beacon-go/adapters"
)

// Re-export adapter types for convenience
type (
	AnalyticsEvent   = adapters.AnalyticsEvent
	EventType        = adapters.EventType
	SessionRecord    = adapters.SessionRecord
	HeartbeatPayload = adapters.HeartbeatPayload
	SessionSummary   = adapters.SessionSummary
	TransportAdapter = adapters.TransportAdapter
	StorageAdapter   = adapters.StorageAdapter
	LifecycleAdapter = adapters.LifecycleAdapter
	LoggerAdapter    = adapters.LoggerAdapter
	HTTPResponse     = adapters.HTTPResponse
	Signal           = adapters.Signal
	LogLevel         = adapters.LogLevel
)

const (
	EventFieldEdit     = adapters.EventFieldEdit
	EventAction        = adapters.EventAction
	EventPageView      = adapters.EventPageView
	EventProjectOpen   = adapters.EventProjectOpen
	EventFeatureUsage  = adapters.EventFeatureUsage
	EventNavigation    = adapters.EventNavigation
	EventSearch        = adapters.EventSearch
	EventError         = adapters.EventError
	EventPerformance   = adapters.EventPerformance
	EventUIInteraction = adapters.EventUIInteraction
)

const (
	// SessionTimeout bounds how stale a persisted record may be and still be
	// restored on startup.
	SessionTimeout = 15 * time.Minute

	// HeartbeatInterval is the periodic liveness ping cadence.
	HeartbeatInterval = 30 * time.Second

	// MaxPendingEvents bounds the pending queue; overflow evicts the oldest.
	MaxPendingEvents = 100

	// MaxSessionEvents bounds the in-session event log; overflow drops the
	// oldest entries.
	MaxSessionEvents = 500

	// MaxSendAttempts is the per-event immediate-send attempt budget.
	MaxSendAttempts = 3

	// RetryBackoff is the linear backoff unit between send attempts
	// (attempt × RetryBackoff).
	RetryBackoff = time.Second
)

type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return "HTTP request failed"
}

// ClientConfig configures a Client. StorageAdapter is required; one of
// TransportAdapter or Endpoint is required. Zero durations and counts fall
// back to the package defaults.
type ClientConfig struct {
	Endpoint          string
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	MaxPendingEvents  int
	MaxSendAttempts   int
	RetryBackoff      time.Duration

	// UserAgent and Timezone are captured once at session start.
	UserAgent string
	Timezone  string

	TransportAdapter TransportAdapter
	StorageAdapter   StorageAdapter
	LifecycleAdapter LifecycleAdapter
	LoggerAdapter    LoggerAdapter
}
