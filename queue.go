package beacon

import (
	"container/list"
	"sync"
)

// Queue is a thread-safe bounded FIFO of pending events. When full, Offer
// evicts the oldest entry. Duplicate event ids are rejected so an event can
// reach the queue at most once through the offline and failure paths.
type Queue struct {
	mu       sync.Mutex
	list     *list.List
	seen     map[string]struct{}
	capacity int
}

// NewQueue creates an empty queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	return &Queue{
		list:     list.New(),
		seen:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// Offer adds an event to the end of the queue, evicting the oldest entry if
// the queue is full. It reports false if the event id is already queued.
func (q *Queue) Offer(event AnalyticsEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[event.EventID]; ok {
		return false
	}
	if q.list.Len() >= q.capacity {
		front := q.list.Front()
		q.list.Remove(front)
		delete(q.seen, front.Value.(AnalyticsEvent).EventID)
	}
	q.list.PushBack(event)
	q.seen[event.EventID] = struct{}{}
	return true
}

// Dequeue removes and returns the front event in the queue.
// It returns false if the queue is empty.
func (q *Queue) Dequeue() (AnalyticsEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.list.Len() == 0 {
		return AnalyticsEvent{}, false
	}
	front := q.list.Front()
	q.list.Remove(front)
	event := front.Value.(AnalyticsEvent)
	delete(q.seen, event.EventID)
	return event, true
}

// IsEmpty reports whether the queue has no elements.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len() == 0
}

// Len returns the number of events currently in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// Clear removes all events from the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.Init()
	q.seen = make(map[string]struct{})
}

// ToSlice returns all queued events as a slice, preserving order.
func (q *Queue) ToSlice() []AnalyticsEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]AnalyticsEvent, 0, q.list.Len())
	for e := q.list.Front(); e != nil; e = e.Next() {
		events = append(events, e.Value.(AnalyticsEvent))
	}
	return events
}
