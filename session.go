package beacon

// sessionState tracks the session lifecycle. Transitions:
// noSession → starting → active → ending → noSession. A restore on Init
// goes noSession → active directly; a heartbeat 401/403 forces
// active → noSession without passing through ending.
type sessionState int

const (
	stateNoSession sessionState = iota
	stateStarting
	stateActive
	stateEnding
)

func (s sessionState) String() string {
	switch s {
	case stateStarting:
		return "starting"
	case stateActive:
		return "active"
	case stateEnding:
		return "ending"
	default:
		return "no_session"
	}
}

// Session is one user's continuous engagement. It is either fully populated
// or absent; callers never see a partially initialized session. All fields
// are guarded by the owning Client's mutex.
type Session struct {
	SessionID        string
	UserID           string
	StartTime        int64
	LastActivity     int64
	PageViews        []string
	ProjectsViewed   []string
	Events           []AnalyticsEvent
	CurrentProjectID string
	CurrentPage      string
	UserAgent        string
	Timezone         string

	pageSeen    map[string]struct{}
	projectSeen map[string]struct{}
}

func newSession(id string, now int64, userAgent, timezone string) *Session {
	return &Session{
		SessionID:    id,
		StartTime:    now,
		LastActivity: now,
		UserAgent:    userAgent,
		Timezone:     timezone,
		pageSeen:     make(map[string]struct{}),
		projectSeen:  make(map[string]struct{}),
	}
}

// restoredSession rebuilds a session from a persisted record. The page,
// project and event logs are not persisted and start empty.
func restoredSession(record SessionRecord, userAgent, timezone string) *Session {
	s := newSession(record.SessionID, record.StartTime, userAgent, timezone)
	s.LastActivity = record.LastActivity
	s.CurrentProjectID = record.CurrentProjectID
	s.CurrentPage = record.CurrentPage
	return s
}

// touch advances LastActivity. It never moves backwards.
func (s *Session) touch(now int64) {
	if now > s.LastActivity {
		s.LastActivity = now
	}
}

// addPageView records a distinct page identifier in insertion order.
func (s *Session) addPageView(page string) {
	if _, ok := s.pageSeen[page]; ok {
		return
	}
	s.pageSeen[page] = struct{}{}
	s.PageViews = append(s.PageViews, page)
}

// addProject records a distinct project identifier.
func (s *Session) addProject(projectID string) {
	if _, ok := s.projectSeen[projectID]; ok {
		return
	}
	s.projectSeen[projectID] = struct{}{}
	s.ProjectsViewed = append(s.ProjectsViewed, projectID)
}

// appendEvent appends to the local event log, keeping at most limit entries.
func (s *Session) appendEvent(event AnalyticsEvent, limit int) {
	s.Events = append(s.Events, event)
	if len(s.Events) > limit {
		s.Events = s.Events[len(s.Events)-limit:]
	}
}

// record produces the durable form of the session.
func (s *Session) record() SessionRecord {
	return SessionRecord{
		SessionID:        s.SessionID,
		StartTime:        s.StartTime,
		LastActivity:     s.LastActivity,
		CurrentProjectID: s.CurrentProjectID,
		CurrentPage:      s.CurrentPage,
	}
}

// summary produces the end-of-session report.
func (s *Session) summary(now int64) SessionSummary {
	return SessionSummary{
		SessionID:      s.SessionID,
		Duration:       now - s.StartTime,
		PageViews:      append([]string(nil), s.PageViews...),
		ProjectsViewed: append([]string(nil), s.ProjectsViewed...),
		Events:         len(s.Events),
	}
}

// SessionInfo is a read-only snapshot of the active session.
type SessionInfo struct {
	SessionID        string
	UserID           string
	StartTime        int64
	LastActivity     int64
	PageViews        []string
	ProjectsViewed   []string
	EventCount       int
	CurrentProjectID string
	CurrentPage      string
	UserAgent        string
	Timezone         string
}

func (s *Session) info() *SessionInfo {
	return &SessionInfo{
		SessionID:        s.SessionID,
		UserID:           s.UserID,
		StartTime:        s.StartTime,
		LastActivity:     s.LastActivity,
		PageViews:        append([]string(nil), s.PageViews...),
		ProjectsViewed:   append([]string(nil), s.ProjectsViewed...),
		EventCount:       len(s.Events),
		CurrentProjectID: s.CurrentProjectID,
		CurrentPage:      s.CurrentPage,
		UserAgent:        s.UserAgent,
		Timezone:         s.Timezone,
	}
}

// AnalyticsStats reports engine counters for local inspection.
type AnalyticsStats struct {
	HasSession    bool
	SessionID     string
	State         string
	Online        bool
	Visible       bool
	PendingEvents int
	EventsTracked int64
	EventsSent    int64
	EventsQueued  int64
	EventsDropped int64
}
