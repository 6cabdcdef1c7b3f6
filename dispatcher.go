package beacon

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// counters are the engine's delivery statistics. All fields are atomic so
// dispatch goroutines can bump them without taking the session mutex.
type counters struct {
	tracked atomic.Int64
	sent    atomic.Int64
	queued  atomic.Int64
	dropped atomic.Int64
}

// Dispatcher owns event delivery: immediate sends with bounded retry while
// online, the bounded pending queue while offline or after a mid-send
// transport failure, and the sequential reconnect flush.
type Dispatcher struct {
	transport   TransportAdapter
	queue       *Queue
	logger      LoggerAdapter
	maxAttempts int
	backoff     time.Duration
	flushMutex  *Mutex
	stats       *counters
}

func NewDispatcher(transport TransportAdapter, logger LoggerAdapter, maxPending, maxAttempts int, backoff time.Duration, stats *counters) *Dispatcher {
	return &Dispatcher{
		transport:   transport,
		queue:       NewQueue(maxPending),
		logger:      logger,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		flushMutex:  NewMutex(),
		stats:       stats,
	}
}

// Dispatch delivers one event. Offline events go straight to the pending
// queue; online events are sent with bounded retry and linear backoff
// (attempt × backoff). An event that exhausts its attempts on server-side
// failures is dropped; one whose transport fails outright falls back to the
// pending queue. The queue's id dedupe guarantees at-most-once enqueue.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, event AnalyticsEvent, online bool) {
	if !online {
		d.enqueue(event, "offline")
		return
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		resp, err := d.transport.TrackEvent(ctx, sessionID, event)
		if err == nil && resp.OK {
			d.stats.sent.Add(1)
			d.logger.Debug("event sent: %s", event.EventType)
			return
		}
		if err == nil {
			lastErr = &HTTPError{Status: resp.Status}
			d.logger.Warn("event send rejected with status %d, attempt %d/%d", resp.Status, attempt, d.maxAttempts)
		} else {
			lastErr = err
			d.logger.Warn("event send failed, attempt %d/%d: %v", attempt, d.maxAttempts, err)
		}
		if attempt < d.maxAttempts {
			time.Sleep(time.Duration(attempt) * d.backoff)
		}
	}

	// The server saw and rejected an HTTP failure; retrying later cannot
	// change its answer, so the event is dropped. A transport-level failure
	// means the event may never have arrived: keep it for the reconnect flush.
	var httpErr *HTTPError
	if errors.As(lastErr, &httpErr) {
		d.stats.dropped.Add(1)
		d.logger.Error("event dropped after %d attempts (status %d): %s", d.maxAttempts, httpErr.Status, event.EventType)
		return
	}
	d.enqueue(event, "send failure")
}

func (d *Dispatcher) enqueue(event AnalyticsEvent, reason string) {
	if !d.queue.Offer(event) {
		return // already queued through the other path
	}
	d.stats.queued.Add(1)
	d.logger.Debug("event queued (%s): %s", reason, event.EventType)
}

// FlushPending drains the pending queue sequentially, one send per event,
// no per-event retry. Events that still fail are dropped.
func (d *Dispatcher) FlushPending(ctx context.Context, sessionID string) {
	d.flushMutex.RunAtomic(func() error {
		if d.queue.IsEmpty() {
			return nil
		}
		d.logger.Debug("flushing %d pending events", d.queue.Len())

		for {
			event, ok := d.queue.Dequeue()
			if !ok {
				return nil
			}
			resp, err := d.transport.TrackEvent(ctx, sessionID, event)
			if err != nil || !resp.OK {
				d.stats.dropped.Add(1)
				d.logger.Warn("flush send failed, dropping event: %s", event.EventType)
				continue
			}
			d.stats.sent.Add(1)
		}
	})
}

// PendingLen reports the number of events awaiting transmission.
func (d *Dispatcher) PendingLen() int {
	return d.queue.Len()
}

// ClearPending discards all pending events.
func (d *Dispatcher) ClearPending() {
	d.queue.Clear()
}
