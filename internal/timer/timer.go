// Package timer pairs scheduler deadlines with the event payloads the
// station core attaches to them. The scheduler only knows ids; this layer
// remembers which event an id stands for and forgets it once the wait is
// resolved or superseded.
package timer

import (
	"time"

	"github.com/wavelayer/mlme/internal/core/ports"
)

// Timer schedules single-shot events of type E against a ports.Scheduler.
type Timer[E any] struct {
	sched  ports.Scheduler
	events map[ports.EventID]E
}

// New returns a Timer backed by the given scheduler.
func New[E any](sched ports.Scheduler) *Timer[E] {
	return &Timer[E]{
		sched:  sched,
		events: make(map[ports.EventID]E),
	}
}

// Now returns the scheduler's current time.
func (t *Timer[E]) Now() time.Time {
	return t.sched.Now()
}

// Schedule arms event to fire at deadline and returns the id the scheduler
// will report back.
func (t *Timer[E]) Schedule(event E, deadline time.Time) ports.EventID {
	id := t.sched.Schedule(deadline)
	t.events[id] = event
	return id
}

// Cancel disarms a pending event. Unknown ids are ignored.
func (t *Timer[E]) Cancel(id ports.EventID) {
	if _, ok := t.events[id]; !ok {
		return
	}
	delete(t.events, id)
	t.sched.Cancel(id)
}

// CancelAll disarms every pending event.
func (t *Timer[E]) CancelAll() {
	for id := range t.events {
		t.sched.Cancel(id)
	}
	clear(t.events)
}

// Triggered resolves a scheduler firing to its event. A firing whose wait
// was already canceled or superseded returns false; the caller treats that
// as a stale timeout and ignores it.
func (t *Timer[E]) Triggered(id ports.EventID) (E, bool) {
	event, ok := t.events[id]
	if !ok {
		var zero E
		return zero, false
	}
	delete(t.events, id)
	return event, true
}

// Pending returns the number of armed events.
func (t *Timer[E]) Pending() int {
	return len(t.events)
}
