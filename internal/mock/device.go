// Package mock provides in-memory stand-ins for the lower-layer gateway and
// the platform scheduler, used by tests and by the simulator binary.
package mock

import (
	"time"

	"github.com/wavelayer/mlme/internal/core/domain"
	"github.com/wavelayer/mlme/internal/core/ports"
)

// SentFrame is one frame handed to the fake driver.
type SentFrame struct {
	Data  []byte
	Flags ports.TxFlags
}

// FakeDevice implements ports.Device with in-memory queues. Error fields
// inject failures for the corresponding operation.
type FakeDevice struct {
	WlanQueue []SentFrame
	EthQueue  [][]byte
	SMEQueue  []domain.Message

	GetBufferErr  error
	SendWlanErr   error
	DeliverEthErr error
	SMESendErr    error
}

// NewFakeDevice returns an empty FakeDevice.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

// GetBuffer returns a zeroed buffer of exactly minCapacity bytes.
func (d *FakeDevice) GetBuffer(minCapacity int) ([]byte, error) {
	if d.GetBufferErr != nil {
		return nil, d.GetBufferErr
	}
	return make([]byte, minCapacity), nil
}

// SendWlanFrame records the frame in WlanQueue.
func (d *FakeDevice) SendWlanFrame(frame []byte, flags ports.TxFlags) error {
	if d.SendWlanErr != nil {
		return d.SendWlanErr
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	d.WlanQueue = append(d.WlanQueue, SentFrame{Data: cp, Flags: flags})
	return nil
}

// DeliverEthFrame records the frame in EthQueue.
func (d *FakeDevice) DeliverEthFrame(frame []byte) error {
	if d.DeliverEthErr != nil {
		return d.DeliverEthErr
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	d.EthQueue = append(d.EthQueue, cp)
	return nil
}

// AccessSMESender runs fn against the device's SME queue.
func (d *FakeDevice) AccessSMESender(fn func(ports.Sender) error) error {
	return fn(fakeSender{d})
}

type fakeSender struct {
	d *FakeDevice
}

func (s fakeSender) Send(msg domain.Message) error {
	if s.d.SMESendErr != nil {
		return s.d.SMESendErr
	}
	s.d.SMEQueue = append(s.d.SMEQueue, msg)
	return nil
}

// NextWlanFrame pops the oldest transmitted frame.
func (d *FakeDevice) NextWlanFrame() (SentFrame, bool) {
	if len(d.WlanQueue) == 0 {
		return SentFrame{}, false
	}
	f := d.WlanQueue[0]
	d.WlanQueue = d.WlanQueue[1:]
	return f, true
}

// NextSMEMessage pops the oldest message delivered to the SME.
func (d *FakeDevice) NextSMEMessage() (domain.Message, bool) {
	if len(d.SMEQueue) == 0 {
		return nil, false
	}
	m := d.SMEQueue[0]
	d.SMEQueue = d.SMEQueue[1:]
	return m, true
}

// FakeScheduler implements ports.Scheduler with a manually advanced clock.
type FakeScheduler struct {
	now       time.Time
	nextID    ports.EventID
	deadlines map[ports.EventID]time.Time
}

// NewFakeScheduler returns a scheduler whose clock starts at a fixed epoch.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{
		now:       time.Unix(0, 0),
		deadlines: make(map[ports.EventID]time.Time),
	}
}

// Schedule arms a deadline and returns a fresh id.
func (s *FakeScheduler) Schedule(deadline time.Time) ports.EventID {
	s.nextID++
	s.deadlines[s.nextID] = deadline
	return s.nextID
}

// Cancel disarms a pending deadline.
func (s *FakeScheduler) Cancel(id ports.EventID) {
	delete(s.deadlines, id)
}

// Now returns the fake clock.
func (s *FakeScheduler) Now() time.Time {
	return s.now
}

// Pending returns the number of armed deadlines.
func (s *FakeScheduler) Pending() int {
	return len(s.deadlines)
}

// Advance moves the clock forward and returns the ids of every deadline
// that passed, in firing order. Fired deadlines are disarmed.
func (s *FakeScheduler) Advance(d time.Duration) []ports.EventID {
	s.now = s.now.Add(d)
	var fired []ports.EventID
	for id, deadline := range s.deadlines {
		if !deadline.After(s.now) {
			fired = append(fired, id)
		}
	}
	// Firing order follows the deadlines, ties broken by id.
	for i := 0; i < len(fired); i++ {
		for j := i + 1; j < len(fired); j++ {
			di, dj := s.deadlines[fired[i]], s.deadlines[fired[j]]
			if dj.Before(di) || (dj.Equal(di) && fired[j] < fired[i]) {
				fired[i], fired[j] = fired[j], fired[i]
			}
		}
	}
	for _, id := range fired {
		delete(s.deadlines, id)
	}
	return fired
}
