package beacon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minddeck/beacon-go/adapters"
)

// Client is the session and telemetry tracking engine. It owns the session
// lifecycle (start/restore/end), the current page/project pointers, the
// heartbeat scheduler and the event dispatch pipeline.
//
// Tracking is strictly best-effort: no failure inside the engine ever
// reaches the caller. Track* methods are fire-and-forget.
//
// A Client holds at most one session. Applications that need independent
// sessions create independent Clients; there is no package-level singleton.
type Client struct {
	config    ClientConfig
	transport TransportAdapter
	storage   StorageAdapter
	lifecycle LifecycleAdapter
	logger    LoggerAdapter

	metadata   *MetadataManager
	sanitizer  *Sanitizer
	dispatcher *Dispatcher
	heartbeat  *HeartbeatScheduler

	opMu sync.Mutex // serializes StartSession/EndSession

	mu          sync.Mutex // guards session state; single mutator at a time
	state       sessionState
	session     *Session
	online      bool
	visible     bool
	initialized bool

	stats counters
	wg    sync.WaitGroup
}

// NewClient creates a new tracking client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.StorageAdapter == nil {
		return nil, errors.New("storageAdapter must be provided in config")
	}
	if config.TransportAdapter == nil && config.Endpoint == "" {
		return nil, errors.New("either endpoint or transportAdapter must be provided in config")
	}

	// Set defaults
	if config.HeartbeatInterval == 0 {
		config.HeartbeatInterval = HeartbeatInterval
	}
	if config.SessionTimeout == 0 {
		config.SessionTimeout = SessionTimeout
	}
	if config.MaxPendingEvents <= 0 {
		config.MaxPendingEvents = MaxPendingEvents
	}
	if config.MaxSendAttempts <= 0 {
		config.MaxSendAttempts = MaxSendAttempts
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = RetryBackoff
	}

	client := &Client{
		config:    config,
		transport: config.TransportAdapter,
		storage:   config.StorageAdapter,
		lifecycle: config.LifecycleAdapter,
		metadata:  NewMetadataManager(),
		sanitizer: NewSanitizer(),
		online:    true,
		visible:   true,
	}

	if client.transport == nil {
		client.transport = adapters.NewNetHTTPTransport(config.Endpoint)
	}

	// Use provided logger or default
	if config.LoggerAdapter != nil {
		client.logger = config.LoggerAdapter
	} else {
		client.logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}

	client.dispatcher = NewDispatcher(client.transport, client.logger,
		config.MaxPendingEvents, config.MaxSendAttempts, config.RetryBackoff, &client.stats)
	client.heartbeat = NewHeartbeatScheduler(config.HeartbeatInterval, client.heartbeatTick)

	return client, nil
}

// Init restores a persisted session if its lastActivity is within the
// session timeout, and begins consuming lifecycle signals. Idempotent.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	record, err := c.storage.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load persisted session: %v", err)
	}
	if record != nil {
		age := time.Now().UnixMilli() - record.LastActivity
		if age <= c.config.SessionTimeout.Milliseconds() {
			c.mu.Lock()
			c.session = restoredSession(*record, c.config.UserAgent, c.config.Timezone)
			c.state = stateActive
			c.mu.Unlock()
			c.heartbeat.Start()
			c.logger.Info("restored session %s", record.SessionID)
		} else {
			if err := c.storage.Clear(ctx); err != nil {
				c.logger.Warn("failed to clear stale session record: %v", err)
			}
		}
	}

	if c.lifecycle != nil {
		c.wg.Add(1)
		go c.consumeSignals()
	}
	return nil
}

// StartSession starts a new session, or returns the current session id if
// one is already active. It never fails: if the server cannot be reached an
// offline session id is synthesized instead.
func (c *Client) StartSession(ctx context.Context) string {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.session != nil && c.state == stateActive {
		id := c.session.SessionID
		c.mu.Unlock()
		return id
	}
	c.state = stateStarting
	online := c.online
	c.mu.Unlock()

	now := time.Now().UnixMilli()
	var id string
	if online {
		resp, err := c.transport.StartSession(ctx)
		switch {
		case err != nil:
			c.logger.Warn("session start failed, falling back to offline id: %v", err)
		case resp.OK && resp.Data != nil:
			id, _ = resp.Data["sessionId"].(string)
		default:
			c.logger.Warn("session start rejected with status %d, falling back to offline id", resp.Status)
		}
	}
	if id == "" {
		id = offlineSessionID(now)
	}

	c.mu.Lock()
	session := newSession(id, now, c.config.UserAgent, c.config.Timezone)
	c.session = session
	c.state = stateActive
	record := session.record()
	c.mu.Unlock()

	c.persist(record)
	c.heartbeat.Start()
	c.sendHeartbeat(ctx) // server reflects presence without delay
	c.logger.Info("session started: %s", id)
	return id
}

// EndSession stops the heartbeat, reports the session summary best-effort,
// flushes pending events, clears the persisted record and discards the
// session. Calling it without an active session is a no-op.
func (c *Client) EndSession(ctx context.Context) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	now := time.Now().UnixMilli()
	c.mu.Lock()
	if c.session == nil || c.state != stateActive {
		c.mu.Unlock()
		return
	}
	c.state = stateEnding
	summary := c.session.summary(now)
	sessionID := c.session.SessionID
	c.mu.Unlock()

	c.heartbeat.Stop()

	if _, err := c.transport.EndSession(ctx, summary); err != nil {
		c.logger.Warn("session end report failed: %v", err)
	}
	c.dispatcher.FlushPending(ctx, sessionID)

	if err := c.storage.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear persisted session: %v", err)
	}

	c.mu.Lock()
	c.session = nil
	c.state = stateNoSession
	c.mu.Unlock()
	c.logger.Info("session ended: %s", sessionID)
}

// HasActiveSession reports whether a session is currently active.
func (c *Client) HasActiveSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.state == stateActive
}

// GetSessionInfo returns a snapshot of the active session, or nil.
func (c *Client) GetSessionInfo() *SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.info()
}

// GetAnalyticsStats returns engine counters for local inspection.
func (c *Client) GetAnalyticsStats() AnalyticsStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := AnalyticsStats{
		HasSession:    c.session != nil,
		State:         c.state.String(),
		Online:        c.online,
		Visible:       c.visible,
		PendingEvents: c.dispatcher.PendingLen(),
		EventsTracked: c.stats.tracked.Load(),
		EventsSent:    c.stats.sent.Load(),
		EventsQueued:  c.stats.queued.Load(),
		EventsDropped: c.stats.dropped.Load(),
	}
	if c.session != nil {
		stats.SessionID = c.session.SessionID
	}
	return stats
}

// SetCurrentUser attributes the session to a user. An empty id is ignored;
// the user is never downgraded to unset while the session is open.
func (c *Client) SetCurrentUser(userID string) {
	if userID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.UserID = userID
	}
}

// ClearUserSession ends the session on logout.
func (c *Client) ClearUserSession(ctx context.Context) {
	c.EndSession(ctx)
}

// SetCurrentProject updates the current-project pointer and persists it.
// A change fires an immediate out-of-band heartbeat while online, so
// presence-by-project is low latency.
func (c *Client) SetCurrentProject(projectID string) {
	c.mu.Lock()
	if c.session == nil || c.state != stateActive {
		c.mu.Unlock()
		return
	}
	changed := c.session.CurrentProjectID != projectID
	c.session.CurrentProjectID = projectID
	record := c.session.record()
	online := c.online
	c.mu.Unlock()

	c.persist(record)
	if changed && online {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			c.sendHeartbeat(ctx)
		}()
	}
}

// SetCurrentPage updates the current-page pointer and persists it.
func (c *Client) SetCurrentPage(pageName string) {
	c.mu.Lock()
	if c.session == nil || c.state != stateActive {
		c.mu.Unlock()
		return
	}
	c.session.CurrentPage = pageName
	record := c.session.record()
	c.mu.Unlock()

	c.persist(record)
}

// SetMetadata sets a global metadata value attached to every outgoing event.
func (c *Client) SetMetadata(key string, value any) error {
	if key == "" {
		return errors.New("metadata key cannot be empty")
	}
	if len(key) > 255 {
		return errors.New("metadata key cannot exceed 255 characters")
	}
	c.metadata.Set(key, value)
	return nil
}

// FlushEvents drains the pending event queue, one attempt per event.
func (c *Client) FlushEvents(ctx context.Context) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	sessionID := c.session.SessionID
	c.mu.Unlock()

	c.dispatcher.FlushPending(ctx, sessionID)
}

// Close stops the heartbeat, closes the lifecycle adapter and waits for
// in-flight dispatches. The session, if any, is left persisted so a later
// Init can restore it.
func (c *Client) Close() error {
	c.heartbeat.Stop()
	if c.lifecycle != nil {
		if err := c.lifecycle.Close(); err != nil {
			c.logger.Warn("failed to close lifecycle adapter: %v", err)
		}
	}
	c.wg.Wait()
	return nil
}

// trackEvent is the core tracking path. Every Track* wrapper lands here.
// Events recorded before a session exists are dropped with a warning: the
// server needs a valid session to attribute them.
func (c *Client) trackEvent(eventType EventType, data map[string]any, mutate func(*Session)) {
	now := time.Now().UnixMilli()

	c.mu.Lock()
	if c.session == nil || c.state != stateActive {
		c.mu.Unlock()
		c.stats.dropped.Add(1)
		c.logger.Warn("event dropped, no active session: %s", eventType)
		return
	}

	sanitized, _ := c.sanitizer.SanitizeValue(data).(map[string]any)
	event := AnalyticsEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: now,
		EventData: sanitized,
		Metadata:  c.metadata.GetAll(),
	}
	if mutate != nil {
		mutate(c.session)
	}
	c.session.appendEvent(event, MaxSessionEvents)
	c.session.touch(now)
	sessionID := c.session.SessionID
	record := c.session.record()
	online := c.online
	c.mu.Unlock()

	c.stats.tracked.Add(1)
	c.persist(record)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		c.dispatcher.Dispatch(ctx, sessionID, event, online)
	}()
}

// heartbeatTick is the scheduler callback.
func (c *Client) heartbeatTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.sendHeartbeat(ctx)
}

// sendHeartbeat refreshes lastActivity, persists, and posts one heartbeat.
// A 401/403 response means the server invalidated the session; a transport
// failure is transient and left to the next tick.
func (c *Client) sendHeartbeat(ctx context.Context) {
	now := time.Now().UnixMilli()

	c.mu.Lock()
	if c.session == nil || c.state != stateActive {
		c.mu.Unlock()
		return
	}
	c.session.touch(now)
	payload := HeartbeatPayload{
		SessionID:        c.session.SessionID,
		LastActivity:     c.session.LastActivity,
		IsVisible:        c.visible,
		CurrentProjectID: c.session.CurrentProjectID,
		CurrentPage:      c.session.CurrentPage,
	}
	record := c.session.record()
	c.mu.Unlock()

	c.persist(record)

	resp, err := c.transport.Heartbeat(ctx, payload)
	if err != nil {
		c.logger.Debug("heartbeat failed, will retry on next tick: %v", err)
		return
	}
	if resp.Status == 401 || resp.Status == 403 {
		c.invalidateSession(payload.SessionID)
	}
}

// invalidateSession discards the session after a server-side rejection.
// No summary is sent and no further heartbeats go out. sessionID is the
// session the rejected heartbeat was sent for; a stale result arriving
// after that session was replaced is discarded.
func (c *Client) invalidateSession(sessionID string) {
	c.mu.Lock()
	if c.session == nil || c.session.SessionID != sessionID {
		c.mu.Unlock()
		return
	}
	id := c.session.SessionID
	c.session = nil
	c.state = stateNoSession
	c.mu.Unlock()

	c.heartbeat.Stop()
	c.dispatcher.ClearPending()
	if err := c.storage.Clear(context.Background()); err != nil {
		c.logger.Warn("failed to clear persisted session: %v", err)
	}
	c.logger.Warn("session %s invalidated by server", id)
}

func (c *Client) persist(record SessionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.storage.Save(ctx, record); err != nil {
		c.logger.Warn("failed to persist session record: %v", err)
	}
}

func offlineSessionID(now int64) string {
	return fmt.Sprintf("offline_%d_%s", now, uuid.NewString()[:8])
}
