package main

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minddeck/beacon-go/adapters"
)

var (
	collectAddr string
	expireAfter int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a local analytics collector",
	Long: `collect serves the four analytics endpoints in memory and exposes
GET /stats for inspection. With --expire-after N, each session's
heartbeats are rejected with 401 after the Nth one, which exercises the
client's forced-invalidation path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)
		collector := newCollector(expireAfter)
		return collector.router().Run(collectAddr)
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectAddr, "addr", ":8080", "listen address")
	collectCmd.Flags().IntVar(&expireAfter, "expire-after", 0, "reject heartbeats with 401 after this many per session (0 = never)")
}

// collector is an in-memory implementation of the analytics endpoints,
// good enough to develop and demo the client against.
type collector struct {
	mu          sync.Mutex
	expireAfter int

	sessions   map[string]int // session id -> heartbeats seen
	started    int
	ended      int
	heartbeats int
	events     int
	byType     map[string]int
}

func newCollector(expireAfter int) *collector {
	return &collector{
		expireAfter: expireAfter,
		sessions:    make(map[string]int),
		byType:      make(map[string]int),
	}
}

func (s *collector) router() *gin.Engine {
	router := gin.Default()

	router.POST("/analytics/session/start", s.handleStart)
	router.POST("/analytics/session/end", s.handleEnd)
	router.POST("/analytics/heartbeat", s.handleHeartbeat)
	router.POST("/analytics/track", s.handleTrack)
	router.GET("/stats", s.handleStats)

	return router
}

func (s *collector) handleStart(c *gin.Context) {
	sessionID := uuid.NewString()

	s.mu.Lock()
	s.sessions[sessionID] = 0
	s.started++
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

func (s *collector) handleEnd(c *gin.Context) {
	var summary adapters.SessionSummary
	if err := c.ShouldBindJSON(&summary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	delete(s.sessions, summary.SessionID)
	s.ended++
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *collector) handleHeartbeat(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-ID"})
		return
	}

	s.mu.Lock()
	s.sessions[sessionID]++
	count := s.sessions[sessionID]
	s.heartbeats++
	expired := s.expireAfter > 0 && count > s.expireAfter
	s.mu.Unlock()

	if expired {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *collector) handleTrack(c *gin.Context) {
	var event adapters.AnalyticsEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.events++
	s.byType[string(event.EventType)]++
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *collector) handleStats(c *gin.Context) {
	s.mu.Lock()
	byType := make(map[string]int, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	stats := gin.H{
		"activeSessions":  len(s.sessions),
		"sessionsStarted": s.started,
		"sessionsEnded":   s.ended,
		"heartbeats":      s.heartbeats,
		"events":          s.events,
		"eventsByType":    byType,
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, stats)
}
