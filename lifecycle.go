package beacon

import (
	"context"
	"time"

	"github.com/minddeck/beacon-go/adapters"
)

// consumeSignals drains the lifecycle adapter until its channel closes.
func (c *Client) consumeSignals() {
	defer c.wg.Done()
	for signal := range c.lifecycle.Signals() {
		c.handleSignal(signal)
	}
}

// handleSignal applies one lifecycle transition.
//
// Activity refreshes lastActivity and persists, nothing more — there is no
// client-side auto-expiry; liveness is enforced server-side via heartbeat
// absence. Visibility pauses/resumes the heartbeat. Connectivity gates the
// dispatch path and triggers the reconnect flush.
func (c *Client) handleSignal(signal Signal) {
	switch signal {
	case adapters.SignalActivity:
		c.mu.Lock()
		if c.session == nil || c.state != stateActive {
			c.mu.Unlock()
			return
		}
		c.session.touch(time.Now().UnixMilli())
		record := c.session.record()
		c.mu.Unlock()
		c.persist(record)

	case adapters.SignalTabHidden:
		c.mu.Lock()
		c.visible = false
		c.mu.Unlock()
		c.heartbeat.Pause()

	case adapters.SignalTabVisible:
		c.mu.Lock()
		c.visible = true
		active := c.session != nil && c.state == stateActive
		c.mu.Unlock()
		c.heartbeat.Resume()
		if active {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			c.sendHeartbeat(ctx)
			cancel()
		}

	case adapters.SignalOffline:
		c.mu.Lock()
		c.online = false
		c.mu.Unlock()
		c.logger.Info("connectivity lost, events will be queued")

	case adapters.SignalOnline:
		c.mu.Lock()
		c.online = true
		var sessionID string
		if c.session != nil {
			sessionID = c.session.SessionID
		}
		c.mu.Unlock()
		c.logger.Info("connectivity regained, flushing pending events")
		if sessionID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			c.dispatcher.FlushPending(ctx, sessionID)
			cancel()
		}
	}
}
