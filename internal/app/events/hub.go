package events

import "sync"

// Hub is the multi-producer, single-consumer channel merging events from all
// background sources. Any goroutine may Post; only the run loop Drains.
//
// The queue is unbounded: a slow consumer never blocks producers, and no
// event is dropped. Per producer goroutine, events are drained in post
// order; interleaving between concurrent producers is unspecified.
type Hub struct {
	mu     sync.Mutex
	queue  []Event
	notify func()
}

// NewHub creates a hub. notify, if non-nil, is invoked after every Post to
// wake the UI driver out of a blocking step so the loop drains promptly.
func NewHub(notify func()) *Hub {
	return &Hub{notify: notify}
}

// Post appends an event to the queue. Callable from any goroutine and never
// blocks on the consumer.
func (h *Hub) Post(ev Event) {
	h.mu.Lock()
	h.queue = append(h.queue, ev)
	h.mu.Unlock()

	if h.notify != nil {
		h.notify()
	}
}

// Drain consumes and returns all events currently queued. It never blocks;
// an empty queue yields a nil slice. Only the run-loop goroutine may call
// Drain.
func (h *Hub) Drain() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	drained := h.queue
	h.queue = nil
	return drained
}

// Len reports the number of queued events, for observability.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}
