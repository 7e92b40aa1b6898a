package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonQosWrapsAt4096(t *testing.T) {
	m := NewManager()
	seen := make(map[uint16]bool)
	for i := 0; i < Modulus; i++ {
		n := m.NextNonQos()
		assert.False(t, seen[n], "sequence number %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, Modulus)
	// The cycle starts over after a full revolution.
	assert.Equal(t, uint16(1), m.NextNonQos())
}

func TestFirstNumberIsOne(t *testing.T) {
	m := NewManager()
	assert.Equal(t, uint16(1), m.NextNonQos())
	assert.Equal(t, uint16(2), m.NextNonQos())
}

func TestQosCountersAreIndependent(t *testing.T) {
	m := NewManager()
	assert.Equal(t, uint16(1), m.NextQos(0))
	assert.Equal(t, uint16(2), m.NextQos(0))
	assert.Equal(t, uint16(1), m.NextQos(5))
	assert.Equal(t, uint16(3), m.NextQos(0))
	assert.Equal(t, uint16(1), m.NextNonQos())
}

func TestQosTidMasked(t *testing.T) {
	m := NewManager()
	assert.Equal(t, uint16(1), m.NextQos(0x13))
	assert.Equal(t, uint16(2), m.NextQos(3))
}
