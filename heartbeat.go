package beacon

import (
	"sync"
	"time"
)

// HeartbeatScheduler fires the beat callback at a fixed interval. Ticks are
// skipped while paused (tab hidden). Heartbeats are never retried or queued;
// a missed tick is recovered by the next one.
type HeartbeatScheduler struct {
	interval time.Duration
	beat     func()

	mu       sync.Mutex
	paused   bool
	running  bool
	stopChan chan struct{}
}

func NewHeartbeatScheduler(interval time.Duration, beat func()) *HeartbeatScheduler {
	return &HeartbeatScheduler{interval: interval, beat: beat}
}

// Start begins periodic ticking. Idempotent. The paused flag is owned by
// Pause/Resume and survives a restart: a scheduler paused while stopped
// stays paused, so ticks never fire into a hidden tab.
func (h *HeartbeatScheduler) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.stopChan = make(chan struct{})
	go h.loop(h.stopChan)
}

func (h *HeartbeatScheduler) loop(stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !h.isPaused() {
				h.beat()
			}
		case <-stop:
			return
		}
	}
}

// Stop halts ticking. Idempotent, and safe to call from inside the beat
// callback (it does not wait for the loop goroutine).
func (h *HeartbeatScheduler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.stopChan)
}

// Pause suppresses ticks without stopping the scheduler.
func (h *HeartbeatScheduler) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
}

// Resume re-enables ticks after Pause.
func (h *HeartbeatScheduler) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
}

func (h *HeartbeatScheduler) isPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// Running reports whether the scheduler is started.
func (h *HeartbeatScheduler) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}
