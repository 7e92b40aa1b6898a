package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMasksAndShifts(t *testing.T) {
	v := uint64(0b1011_0100)
	assert.Equal(t, uint64(0b100), Get(v, 0, 2))
	assert.Equal(t, uint64(0b1010), Get(v, 1, 4))
	assert.Equal(t, uint64(1), Get(v, 7, 7))
	assert.Equal(t, uint64(0), Get(v, 8, 15))
}

func TestSetReplacesExactlyTheRange(t *testing.T) {
	v := uint64(0xffff)
	got, err := Set(v, 4, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xff0f), got)

	got, err = Set(uint64(0), 12, 13, 0b11)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3000), got)
}

func TestSetOfGetIsNoop(t *testing.T) {
	v := uint64(0xdeadbeefcafe)
	for _, r := range [][2]uint{{0, 3}, {5, 12}, {40, 47}, {0, 63}} {
		got, err := Set(v, r[0], r[1], Get(v, r[0], r[1]))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSetRejectsOversizedValue(t *testing.T) {
	v := uint64(0xabcd)
	got, err := Set(v, 0, 1, 4)
	assert.Error(t, err)
	assert.Equal(t, v, got)
}

func TestBitHelpers(t *testing.T) {
	assert.True(t, GetBit(0b100, 2))
	assert.False(t, GetBit(0b100, 1))
	assert.Equal(t, uint64(0b101), SetBit(0b100, 0, true))
	assert.Equal(t, uint64(0), SetBit(0b100, 2, false))
}

func TestOffByOneCounts(t *testing.T) {
	assert.Equal(t, uint8(1), ToHuman(0))
	assert.Equal(t, uint8(4), ToHuman(3))

	enc, err := FromHuman("number of antennas", 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), enc)

	enc, err = FromHuman("number of antennas", 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), enc)

	_, err = FromHuman("number of antennas", 0)
	assert.ErrorContains(t, err, "between 1 and 4")
	_, err = FromHuman("number of antennas", 5)
	assert.ErrorContains(t, err, "between 1 and 4")
}
