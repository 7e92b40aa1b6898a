package radio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRadioTapPrependsHeader(t *testing.T) {
	frame := []byte{0xb0, 0x00, 0x00, 0x00, 1, 2, 3, 4, 5, 6}
	pkt, err := wrapRadioTap(frame)
	require.NoError(t, err)

	// RadioTap: version 0, pad, then a little-endian header length that
	// points at the start of the MAC frame.
	require.Greater(t, len(pkt), len(frame))
	assert.Equal(t, byte(0), pkt[0])
	hdrLen := int(binary.LittleEndian.Uint16(pkt[2:4]))
	require.Equal(t, len(frame)+hdrLen, len(pkt))
	assert.Equal(t, frame, pkt[hdrLen:])
}

func TestGetBufferCapacity(t *testing.T) {
	d := &Device{}
	buf, err := d.GetBuffer(128)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cap(buf), 128)
}

func TestDeliverEthFrameWithoutUplink(t *testing.T) {
	d := &Device{}
	assert.NoError(t, d.DeliverEthFrame([]byte{1, 2, 3}))
}

func TestDeliverEthFrameForwardsToUplink(t *testing.T) {
	var got []byte
	d := &Device{ethOut: func(frame []byte) error {
		got = frame
		return nil
	}}
	require.NoError(t, d.DeliverEthFrame([]byte{9, 8, 7}))
	assert.Equal(t, []byte{9, 8, 7}, got)
}
