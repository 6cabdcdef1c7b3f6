package beacon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minddeck/beacon-go/adapters"
)

// mockTransport records all outbound calls and returns configurable
// responses. Zero statuses mean 200.
type mockTransport struct {
	mu sync.Mutex

	startID  string
	startErr error

	heartbeatStatus int
	trackStatus     int
	trackErr        error

	startCalls     int
	endCalls       int
	heartbeatCalls int
	trackCalls     int

	heartbeats []HeartbeatPayload
	summaries  []SessionSummary
	tracked    []AnalyticsEvent
}

func (m *mockTransport) StartSession(ctx context.Context) (*HTTPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	if m.startErr != nil {
		return nil, m.startErr
	}
	id := m.startID
	if id == "" {
		id = "server-session"
	}
	return &HTTPResponse{OK: true, Status: 200, Data: map[string]any{"sessionId": id}}, nil
}

func (m *mockTransport) EndSession(ctx context.Context, summary SessionSummary) (*HTTPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endCalls++
	m.summaries = append(m.summaries, summary)
	return &HTTPResponse{OK: true, Status: 200}, nil
}

func (m *mockTransport) Heartbeat(ctx context.Context, payload HeartbeatPayload) (*HTTPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heartbeatCalls++
	m.heartbeats = append(m.heartbeats, payload)
	status := m.heartbeatStatus
	if status == 0 {
		status = 200
	}
	return &HTTPResponse{OK: status >= 200 && status < 300, Status: status}, nil
}

func (m *mockTransport) TrackEvent(ctx context.Context, sessionID string, event AnalyticsEvent) (*HTTPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackCalls++
	if m.trackErr != nil {
		return nil, m.trackErr
	}
	status := m.trackStatus
	if status == 0 {
		status = 200
	}
	if status >= 200 && status < 300 {
		m.tracked = append(m.tracked, event)
	}
	return &HTTPResponse{OK: status >= 200 && status < 300, Status: status}, nil
}

func (m *mockTransport) counts() (start, end, heartbeat, track int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalls, m.endCalls, m.heartbeatCalls, m.trackCalls
}

func createTestConfig(transport *mockTransport) ClientConfig {
	return ClientConfig{
		TransportAdapter:  transport,
		StorageAdapter:    adapters.NewMemoryStorageAdapter(),
		LoggerAdapter:     adapters.NewNoOpLoggerAdapter(),
		HeartbeatInterval: time.Hour, // ticks disabled unless a test opts in
		RetryBackoff:      time.Millisecond,
	}
}

func createTestClient(t *testing.T, transport *mockTransport) *Client {
	t.Helper()
	client, err := NewClient(createTestConfig(transport))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("failed to init client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestClient_ConfigValidation(t *testing.T) {
	t.Run("should return error if StorageAdapter is missing", func(t *testing.T) {
		_, err := NewClient(ClientConfig{Endpoint: "http://test.com"})
		if err == nil {
			t.Fatal("expected error for missing StorageAdapter")
		}
	})

	t.Run("should return error if both Endpoint and TransportAdapter are missing", func(t *testing.T) {
		_, err := NewClient(ClientConfig{StorageAdapter: adapters.NewMemoryStorageAdapter()})
		if err == nil {
			t.Fatal("expected error for missing transport")
		}
	})

	t.Run("should build default transport from Endpoint", func(t *testing.T) {
		client, err := NewClient(ClientConfig{
			Endpoint:       "http://test.com",
			StorageAdapter: adapters.NewMemoryStorageAdapter(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.transport == nil {
			t.Fatal("expected default transport")
		}
	})
}

func TestClient_TrackWithoutSession(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	client.TrackPageView("/notes")
	client.TrackAction("save", nil)

	if _, _, _, track := transport.counts(); track != 0 {
		t.Fatalf("expected no track calls without a session, got %d", track)
	}
	stats := client.GetAnalyticsStats()
	if stats.EventsDropped != 2 {
		t.Fatalf("expected 2 dropped events, got %d", stats.EventsDropped)
	}
}

func TestClient_StartSessionIdempotent(t *testing.T) {
	transport := &mockTransport{startID: "abc123"}
	client := createTestClient(t, transport)

	first := client.StartSession(context.Background())
	second := client.StartSession(context.Background())

	if first != "abc123" || second != "abc123" {
		t.Fatalf("expected abc123 for both calls, got %q and %q", first, second)
	}
	if start, _, _, _ := transport.counts(); start != 1 {
		t.Fatalf("expected 1 start call, got %d", start)
	}
}

func TestClient_StartSessionOfflineFallback(t *testing.T) {
	transport := &mockTransport{startErr: errors.New("network down")}
	client := createTestClient(t, transport)

	id := client.StartSession(context.Background())
	if !strings.HasPrefix(id, "offline_") {
		t.Fatalf("expected offline session id, got %q", id)
	}
	if !client.HasActiveSession() {
		t.Fatal("expected active session despite start failure")
	}
}

func TestClient_Restore(t *testing.T) {
	t.Run("fresh record restores the same session id", func(t *testing.T) {
		transport := &mockTransport{}
		storage := adapters.NewMemoryStorageAdapter()
		now := time.Now().UnixMilli()
		storage.Save(context.Background(), SessionRecord{
			SessionID:    "persisted-1",
			StartTime:    now - time.Minute.Milliseconds(),
			LastActivity: now - time.Minute.Milliseconds(),
		})

		config := createTestConfig(transport)
		config.StorageAdapter = storage
		client, err := NewClient(config)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		defer client.Close()
		if err := client.Init(context.Background()); err != nil {
			t.Fatalf("failed to init: %v", err)
		}

		if !client.HasActiveSession() {
			t.Fatal("expected session to be restored")
		}
		if info := client.GetSessionInfo(); info.SessionID != "persisted-1" {
			t.Fatalf("expected restored id persisted-1, got %q", info.SessionID)
		}
		if start, _, _, _ := transport.counts(); start != 0 {
			t.Fatal("restore must not contact the server")
		}
	})

	t.Run("stale record yields no session and clears storage", func(t *testing.T) {
		transport := &mockTransport{}
		storage := adapters.NewMemoryStorageAdapter()
		stale := time.Now().UnixMilli() - (16 * time.Minute).Milliseconds()
		storage.Save(context.Background(), SessionRecord{
			SessionID:    "persisted-2",
			StartTime:    stale,
			LastActivity: stale,
		})

		config := createTestConfig(transport)
		config.StorageAdapter = storage
		client, err := NewClient(config)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		defer client.Close()
		if err := client.Init(context.Background()); err != nil {
			t.Fatalf("failed to init: %v", err)
		}

		if client.HasActiveSession() {
			t.Fatal("expected stale session to be discarded")
		}
		record, _ := storage.Load(context.Background())
		if record != nil {
			t.Fatal("expected stale record to be cleared")
		}
	})
}

func TestClient_EndSessionTwice(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	client.StartSession(context.Background())
	client.EndSession(context.Background())
	client.EndSession(context.Background())

	if _, end, _, _ := transport.counts(); end != 1 {
		t.Fatalf("expected end work to run once, got %d end calls", end)
	}
	if client.HasActiveSession() {
		t.Fatal("expected no active session after end")
	}
}

func TestClient_EndToEnd(t *testing.T) {
	transport := &mockTransport{startID: "abc123"}
	client := createTestClient(t, transport)

	id := client.StartSession(context.Background())
	if id != "abc123" {
		t.Fatalf("expected session id abc123, got %q", id)
	}

	client.TrackPageView("/notes")
	waitFor(t, time.Second, func() bool {
		_, _, _, track := transport.counts()
		return track == 1
	})

	client.EndSession(context.Background())

	start, end, _, track := transport.counts()
	if start != 1 || track != 1 || end != 1 {
		t.Fatalf("expected 1 start / 1 track / 1 end, got %d/%d/%d", start, track, end)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	event := transport.tracked[0]
	if event.EventType != EventPageView {
		t.Fatalf("expected page_view event, got %s", event.EventType)
	}
	if event.EventData["pageName"] != "/notes" {
		t.Fatalf("expected pageName /notes, got %v", event.EventData["pageName"])
	}
	summary := transport.summaries[0]
	if len(summary.PageViews) != 1 || summary.PageViews[0] != "/notes" {
		t.Fatalf("expected pageViews [/notes], got %v", summary.PageViews)
	}
	if summary.SessionID != "abc123" {
		t.Fatalf("expected summary for abc123, got %q", summary.SessionID)
	}
}

func TestClient_HeartbeatAuthFailureInvalidates(t *testing.T) {
	transport := &mockTransport{heartbeatStatus: 401}
	config := createTestConfig(transport)
	config.HeartbeatInterval = 20 * time.Millisecond
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	client.StartSession(context.Background())

	// The immediate post-start heartbeat already hits the 401.
	waitFor(t, time.Second, func() bool { return !client.HasActiveSession() })

	_, _, before, _ := transport.counts()
	time.Sleep(100 * time.Millisecond)
	_, _, after, _ := transport.counts()
	if after != before {
		t.Fatalf("expected no heartbeats after invalidation, got %d more", after-before)
	}

	record, _ := config.StorageAdapter.Load(context.Background())
	if record != nil {
		t.Fatal("expected persisted record to be cleared on invalidation")
	}
}

func TestClient_VisibilityControlsHeartbeat(t *testing.T) {
	transport := &mockTransport{}
	signals := adapters.NewChannelSignals()
	config := createTestConfig(transport)
	config.LifecycleAdapter = signals
	config.HeartbeatInterval = 20 * time.Millisecond
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	client.StartSession(context.Background())

	signals.Emit(adapters.SignalTabHidden)
	waitFor(t, time.Second, func() bool { return !client.GetAnalyticsStats().Visible })
	time.Sleep(30 * time.Millisecond) // let any in-flight tick land
	_, _, hidden, _ := transport.counts()
	time.Sleep(100 * time.Millisecond)
	_, _, stillHidden, _ := transport.counts()
	if stillHidden != hidden {
		t.Fatalf("expected heartbeat paused while hidden, got %d more beats", stillHidden-hidden)
	}

	signals.Emit(adapters.SignalTabVisible)
	// Becoming visible fires one immediate beat and resumes ticking.
	waitFor(t, time.Second, func() bool {
		_, _, beats, _ := transport.counts()
		return beats > stillHidden
	})
}

func TestClient_StartWhileHiddenKeepsHeartbeatPaused(t *testing.T) {
	transport := &mockTransport{}
	signals := adapters.NewChannelSignals()
	config := createTestConfig(transport)
	config.LifecycleAdapter = signals
	config.HeartbeatInterval = 20 * time.Millisecond
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	// The tab goes hidden before any session exists.
	signals.Emit(adapters.SignalTabHidden)
	waitFor(t, time.Second, func() bool { return !client.GetAnalyticsStats().Visible })

	client.StartSession(context.Background())
	_, _, afterStart, _ := transport.counts() // includes the immediate post-start beat
	time.Sleep(100 * time.Millisecond)
	_, _, later, _ := transport.counts()
	if later != afterStart {
		t.Fatalf("expected no periodic heartbeats while hidden, got %d more", later-afterStart)
	}

	signals.Emit(adapters.SignalTabVisible)
	waitFor(t, time.Second, func() bool {
		_, _, beats, _ := transport.counts()
		return beats > later
	})
}

func TestClient_StaleHeartbeatRejectionIsDiscarded(t *testing.T) {
	transport := &mockTransport{startID: "fresh"}
	config := createTestConfig(transport)
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())
	client.StartSession(context.Background())

	// A rejection for a session that is no longer current must be discarded.
	client.invalidateSession("stale")

	if !client.HasActiveSession() {
		t.Fatal("expected the current session to survive a stale rejection")
	}
	record, _ := config.StorageAdapter.Load(context.Background())
	if record == nil || record.SessionID != "fresh" {
		t.Fatalf("expected persisted record intact, got %+v", record)
	}

	// A rejection for the current session still invalidates it.
	client.invalidateSession("fresh")
	if client.HasActiveSession() {
		t.Fatal("expected the current session invalidated")
	}
}

func TestClient_OfflineQueueAndReconnectFlush(t *testing.T) {
	transport := &mockTransport{}
	signals := adapters.NewChannelSignals()
	config := createTestConfig(transport)
	config.LifecycleAdapter = signals
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	client.StartSession(context.Background())
	signals.Emit(adapters.SignalOffline)
	waitFor(t, time.Second, func() bool { return !client.GetAnalyticsStats().Online })

	client.TrackAction("edit", nil)
	client.TrackAction("save", nil)
	waitFor(t, time.Second, func() bool { return client.GetAnalyticsStats().PendingEvents == 2 })

	if _, _, _, track := transport.counts(); track != 0 {
		t.Fatalf("expected no sends while offline, got %d", track)
	}

	signals.Emit(adapters.SignalOnline)
	waitFor(t, time.Second, func() bool {
		_, _, _, track := transport.counts()
		return track == 2 && client.GetAnalyticsStats().PendingEvents == 0
	})
}

func TestClient_SetCurrentProjectHeartbeat(t *testing.T) {
	transport := &mockTransport{}
	signals := adapters.NewChannelSignals()
	config := createTestConfig(transport)
	config.LifecycleAdapter = signals
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	client.StartSession(context.Background())
	_, _, beats, _ := transport.counts()

	client.SetCurrentProject("proj-1")
	waitFor(t, time.Second, func() bool {
		_, _, after, _ := transport.counts()
		return after == beats+1
	})

	transport.mu.Lock()
	last := transport.heartbeats[len(transport.heartbeats)-1]
	transport.mu.Unlock()
	if last.CurrentProjectID != "proj-1" {
		t.Fatalf("expected heartbeat with proj-1, got %q", last.CurrentProjectID)
	}

	// Same project again: pointer unchanged, no extra beat.
	client.SetCurrentProject("proj-1")
	time.Sleep(50 * time.Millisecond)
	if _, _, after, _ := transport.counts(); after != beats+1 {
		t.Fatal("expected no heartbeat for unchanged project")
	}

	// While offline, a project change must not fire a heartbeat.
	signals.Emit(adapters.SignalOffline)
	waitFor(t, time.Second, func() bool { return !client.GetAnalyticsStats().Online })
	client.SetCurrentProject("proj-2")
	time.Sleep(50 * time.Millisecond)
	if _, _, after, _ := transport.counts(); after != beats+1 {
		t.Fatal("expected no heartbeat while offline")
	}
}

func TestClient_UserAttribution(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	client.StartSession(context.Background())
	client.SetCurrentUser("user-9")
	client.SetCurrentUser("") // ignored, never downgraded

	info := client.GetSessionInfo()
	if info.UserID != "user-9" {
		t.Fatalf("expected user-9, got %q", info.UserID)
	}

	client.ClearUserSession(context.Background())
	if client.HasActiveSession() {
		t.Fatal("expected logout to end the session")
	}
}

func TestClient_ActivitySignalUpdatesLastActivity(t *testing.T) {
	transport := &mockTransport{}
	signals := adapters.NewChannelSignals()
	config := createTestConfig(transport)
	config.LifecycleAdapter = signals
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()
	client.Init(context.Background())

	client.StartSession(context.Background())
	before := client.GetSessionInfo().LastActivity
	_, _, _, trackBefore := transport.counts()

	time.Sleep(5 * time.Millisecond)
	signals.Emit(adapters.SignalActivity)
	waitFor(t, time.Second, func() bool {
		return client.GetSessionInfo().LastActivity > before
	})

	if _, _, _, track := transport.counts(); track != trackBefore {
		t.Fatal("activity must not contact the network")
	}
}

func TestClient_GetAnalyticsStats(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	stats := client.GetAnalyticsStats()
	if stats.HasSession || stats.State != "no_session" {
		t.Fatal("expected empty stats before start")
	}

	client.StartSession(context.Background())
	client.TrackAction("save", nil)
	waitFor(t, time.Second, func() bool {
		return client.GetAnalyticsStats().EventsSent == 1
	})

	stats = client.GetAnalyticsStats()
	if !stats.HasSession || stats.State != "active" || stats.EventsTracked != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestClient_SessionEventLogRetention(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	client.StartSession(context.Background())
	for i := 0; i < MaxSessionEvents+10; i++ {
		client.TrackAction("tick", nil)
	}

	waitFor(t, 5*time.Second, func() bool {
		return client.GetAnalyticsStats().EventsTracked == int64(MaxSessionEvents+10)
	})
	if got := client.GetSessionInfo().EventCount; got != MaxSessionEvents {
		t.Fatalf("expected event log capped at %d, got %d", MaxSessionEvents, got)
	}
}

func TestClient_SetMetadata(t *testing.T) {
	transport := &mockTransport{}
	client := createTestClient(t, transport)

	if err := client.SetMetadata("", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := client.SetMetadata(strings.Repeat("k", 256), "x"); err == nil {
		t.Fatal("expected error for oversized key")
	}
	if err := client.SetMetadata("appVersion", "1.4.2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.StartSession(context.Background())
	client.TrackAction("save", nil)
	waitFor(t, time.Second, func() bool {
		transport.mu.Lock()
		defer transport.mu.Unlock()
		return len(transport.tracked) == 1
	})

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if transport.tracked[0].Metadata["appVersion"] != "1.4.2" {
		t.Fatal("expected metadata stamped on event")
	}
}
