// Package sequence issues 802.11 sequence numbers. One independent counter
// exists per traffic class: a single non-QoS counter plus one per QoS TID.
package sequence

// Modulus is the sequence number space; numbers wrap at 4096.
const Modulus = 4096

const numTids = 16

// Manager holds the per-traffic-class counters. Counters start at zero and
// are not persisted; the zero value is ready to use.
type Manager struct {
	nonQos uint16
	qos    [numTids]uint16
}

// NewManager returns a Manager with all counters at zero.
func NewManager() *Manager {
	return &Manager{}
}

// NextNonQos advances the non-QoS counter and returns the new sequence
// number. The first call returns 1.
func (m *Manager) NextNonQos() uint16 {
	m.nonQos = (m.nonQos + 1) % Modulus
	return m.nonQos
}

// NextQos advances the counter for the given TID and returns the new
// sequence number. Only the low four TID bits are significant.
func (m *Manager) NextQos(tid uint8) uint16 {
	i := tid & 0x0f
	m.qos[i] = (m.qos[i] + 1) % Modulus
	return m.qos[i]
}
