package screensink

import "sync"

// NotifyQueue is a cross-thread queue helper: it lets a NotifyFunc
// running on a worker goroutine hand paint-completion events to whatever
// thread the host's UI toolkit requires, without blocking the worker and
// without re-entering the cache.
//
// A host wires it up once:
//
//	q := screensink.NewNotifyQueue()
//	render, _ := screensink.NewSinkScreen(in, out, mask, 64, 64, 256, 0, q.Notify, nil)
//	// on the UI thread, periodically (or on an idle callback):
//	for _, ev := range q.Drain() {
//	    repaint(ev.Area)
//	}
type NotifyQueue struct {
	mu      sync.Mutex
	pending []NotifyEvent
}

// NotifyEvent records one paint-completion.
type NotifyEvent struct {
	Out  Output
	Area Rect
	A    any
}

// NewNotifyQueue creates an empty queue.
func NewNotifyQueue() *NotifyQueue {
	return &NotifyQueue{}
}

// Notify satisfies NotifyFunc. It never blocks: it only appends to an
// internal slice under a short-lived mutex, then returns.
func (q *NotifyQueue) Notify(out Output, area Rect, a any) {
	q.mu.Lock()
	q.pending = append(q.pending, NotifyEvent{Out: out, Area: area, A: a})
	q.mu.Unlock()
}

// Drain returns and clears all events queued since the last Drain. Call
// this from the consumer thread (the UI's main/idle loop).
func (q *NotifyQueue) Drain() []NotifyEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	events := q.pending
	q.pending = nil
	return events
}
