package timer

import (
	"sync"
	"time"

	"github.com/wavelayer/mlme/internal/core/ports"
)

// SystemScheduler implements ports.Scheduler against the wall clock.
// Firings are delivered on C; the owner forwards each id to the station's
// HandleTimedEvent on its own goroutine, preserving the single-threaded
// execution model. Every firing is delivered unless the scheduler is closed
// first; a lost timeout would leave the state machine waiting forever.
type SystemScheduler struct {
	C chan ports.EventID

	mu     sync.Mutex
	nextID ports.EventID
	timers map[ports.EventID]*time.Timer
	done   chan struct{}
}

// NewSystemScheduler returns a scheduler with a buffered firing channel.
func NewSystemScheduler() *SystemScheduler {
	return &SystemScheduler{
		C:      make(chan ports.EventID, 16),
		timers: make(map[ports.EventID]*time.Timer),
		done:   make(chan struct{}),
	}
}

func (s *SystemScheduler) Schedule(deadline time.Time) ports.EventID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.timers[id] = time.AfterFunc(time.Until(deadline), func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		select {
		case s.C <- id:
		case <-s.done:
		}
	})
	return id
}

func (s *SystemScheduler) Cancel(id ports.EventID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *SystemScheduler) Now() time.Time {
	return time.Now()
}

// Close stops all armed timers and releases any firing blocked on C.
func (s *SystemScheduler) Close() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	close(s.done)
}
