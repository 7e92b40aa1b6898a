package ports

import "time"

// EventID identifies one scheduled timed event. IDs are never reused within
// a scheduler's lifetime.
type EventID uint64

// Scheduler is the platform timer the station core schedules against. The
// platform calls back into the core with the EventID when the deadline
// passes; whether a firing is still relevant is decided by the core, not
// the scheduler.
type Scheduler interface {
	// Schedule arms a single-shot deadline and returns its id.
	Schedule(deadline time.Time) EventID

	// Cancel disarms a pending deadline. Canceling an unknown or already
	// fired id is a no-op.
	Cancel(id EventID)

	// Now returns the scheduler's current time.
	Now() time.Time
}
