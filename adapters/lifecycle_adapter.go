package adapters

import "sync"

// Signal is a host lifecycle or user-activity transition observed outside
// the engine: raw activity (click/keydown/scroll equivalents), tab
// visibility changes, and connectivity changes.
type Signal int

const (
	// SignalActivity reports raw user activity. Updates lastActivity only;
	// never touches the network.
	SignalActivity Signal = iota
	// SignalTabVisible reports the tab becoming visible again.
	SignalTabVisible
	// SignalTabHidden reports the tab being hidden.
	SignalTabHidden
	// SignalOnline reports connectivity being regained.
	SignalOnline
	// SignalOffline reports connectivity being lost.
	SignalOffline
)

// LifecycleAdapter is the engine's view of host lifecycle signals.
// Implement this interface to bridge browser events, OS notifications, or
// test drivers into the engine.
type LifecycleAdapter interface {
	// Signals returns the stream of observed signals. The channel is closed
	// by Close.
	Signals() <-chan Signal

	// Close stops signal delivery and closes the channel.
	Close() error
}

// ChannelSignals is a LifecycleAdapter driven by explicit Emit calls. Hosts
// wire their own event sources to Emit; tests drive it directly.
type ChannelSignals struct {
	mu     sync.Mutex
	ch     chan Signal
	closed bool
}

// Ensure ChannelSignals implements LifecycleAdapter interface
var _ LifecycleAdapter = (*ChannelSignals)(nil)

// NewChannelSignals creates a new manually driven lifecycle adapter.
func NewChannelSignals() *ChannelSignals {
	return &ChannelSignals{ch: make(chan Signal, 64)}
}

// Emit delivers a signal to the engine. Signals emitted after Close, or
// while the buffer is full, are dropped; lifecycle signals are advisory and
// must never block the host.
func (c *ChannelSignals) Emit(signal Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- signal:
	default:
	}
}

func (c *ChannelSignals) Signals() <-chan Signal {
	return c.ch
}

func (c *ChannelSignals) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}
