package ie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavelayer/mlme/internal/wire/buffer"
)

func TestReaderIteratesElements(t *testing.T) {
	data := []byte{
		0, 3, 'f', 'o', 'o',
		3, 1, 11,
		221, 0,
	}
	it := NewReader(data)

	el, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, IDSSID, el.ID)
	assert.Equal(t, []byte("foo"), el.Body)

	el, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, IDDsssParamSet, el.ID)
	assert.Equal(t, []byte{11}, el.Body)

	el, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, IDVendor, el.ID)
	assert.Empty(t, el.Body)

	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, it.BytesRemaining())
}

func TestReaderStopsAtTruncatedElement(t *testing.T) {
	data := []byte{
		0, 3, 'f', 'o', 'o',
		5, 9, 1, 2, // declares 9 body bytes, only 2 present
	}
	it := NewReader(data)

	_, ok := it.Next()
	require.True(t, ok)

	_, ok = it.Next()
	assert.False(t, ok)
	// The malformed element is left unconsumed.
	assert.Equal(t, 4, it.BytesRemaining())
}

func TestFind(t *testing.T) {
	data := []byte{
		1, 2, 0x82, 0x84,
		0, 3, 'f', 'o', 'o',
		0, 3, 'b', 'a', 'r',
	}
	assert.Equal(t, []byte("foo"), Find(data, IDSSID))
	assert.Nil(t, Find(data, IDTim))
}

func TestWriteSSID(t *testing.T) {
	var buf [40]byte
	w := buffer.NewWriter(buf[:])
	require.NoError(t, WriteSSID(w, []byte("ssid")))
	assert.Equal(t, []byte{0, 4, 's', 's', 'i', 'd'}, w.Bytes())

	long := make([]byte, 33)
	assert.Error(t, WriteSSID(buffer.NewWriter(buf[:]), long))
}

func TestWriteSupportedRatesShortSet(t *testing.T) {
	var buf [32]byte
	w := buffer.NewWriter(buf[:])
	rates := []byte{0x82, 0x84, 0x8b, 0x96}
	require.NoError(t, WriteSupportedRates(w, rates))
	assert.Equal(t, []byte{1, 4, 0x82, 0x84, 0x8b, 0x96}, w.Bytes())
	assert.Equal(t, len(w.Bytes()), SupportedRatesLen(rates))
}

func TestWriteSupportedRatesSplitsIntoExtended(t *testing.T) {
	var buf [32]byte
	w := buffer.NewWriter(buf[:])
	rates := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.NoError(t, WriteSupportedRates(w, rates))
	assert.Equal(t, []byte{
		1, 8, 1, 2, 3, 4, 5, 6, 7, 8,
		50, 2, 9, 10,
	}, w.Bytes())
	assert.Equal(t, len(w.Bytes()), SupportedRatesLen(rates))
}

func TestWriteSupportedRatesEmpty(t *testing.T) {
	var buf [8]byte
	assert.Error(t, WriteSupportedRates(buffer.NewWriter(buf[:]), nil))
}

func TestSupportedRate(t *testing.T) {
	r := SupportedRate(0x96) // 11 Mbps, basic
	assert.Equal(t, uint8(0x16), r.Rate())
	assert.True(t, r.Basic())
	assert.False(t, SupportedRate(0x16).Basic())
}

func TestParseTim(t *testing.T) {
	tim, ok := ParseTim([]byte{2, 3, 0x02, 0xff, 0x01})
	require.True(t, ok)
	assert.Equal(t, uint8(2), tim.DtimCount)
	assert.Equal(t, uint8(3), tim.DtimPeriod)
	assert.Equal(t, uint8(1), tim.BmpCtrl.Offset())
	assert.Equal(t, []byte{0xff, 0x01}, tim.Bitmap)

	_, ok = ParseTim([]byte{2, 3, 0})
	assert.False(t, ok)
}

func TestTimBufferedByAID(t *testing.T) {
	tim := Tim{Bitmap: []byte{0b0000_0010}}
	assert.True(t, tim.BufferedByAID(1))
	assert.False(t, tim.BufferedByAID(0))
	assert.False(t, tim.BufferedByAID(12))

	// Offset of 1 shifts the window up by two octets (AIDs 16..23).
	tim = Tim{BmpCtrl: BitmapControl(0x02), Bitmap: []byte{0b0000_0001}}
	assert.True(t, tim.BufferedByAID(16))
	assert.False(t, tim.BufferedByAID(0))
	assert.False(t, tim.BufferedByAID(24))
}

func TestParseVendorLegacyWpa(t *testing.T) {
	body := []byte{0x00, 0x50, 0xf2, 0x01, 0x01, 0x00, 0x00, 0x50, 0xf2, 0x02}
	v, ok := ParseVendor(body)
	require.True(t, ok)
	assert.Equal(t, [3]byte{0x00, 0x50, 0xf2}, v.OUI)
	assert.Equal(t, body[4:], v.LegacyWpa)
	assert.Nil(t, v.Body)
}

func TestParseVendorUnknown(t *testing.T) {
	body := []byte{0x00, 0x0c, 0x43, 0xaa, 0xbb}
	v, ok := ParseVendor(body)
	require.True(t, ok)
	assert.Nil(t, v.LegacyWpa)
	assert.Equal(t, []byte{0xaa, 0xbb}, v.Body)

	_, ok = ParseVendor([]byte{0x00, 0x50})
	assert.False(t, ok)
}

func TestHtCapabilityInfoAccessors(t *testing.T) {
	var ci HtCapabilityInfo
	require.NoError(t, ci.SetChanWidthSet(ChanWidth2040))
	require.NoError(t, ci.SetSmPowerSave(SmPowerSaveDisabled))
	require.NoError(t, ci.SetRxStbc(2))
	require.NoError(t, ci.SetMaxAmsduLen(MaxAmsduLen7935))
	assert.Equal(t, ChanWidth2040, ci.ChanWidthSet())
	assert.Equal(t, SmPowerSaveDisabled, ci.SmPowerSave())
	assert.Equal(t, uint8(2), ci.RxStbc())
	assert.Equal(t, MaxAmsduLen7935, ci.MaxAmsduLen())

	assert.Error(t, ci.SetRxStbc(4))
	assert.Equal(t, uint8(2), ci.RxStbc())
}

func TestAmpduParams(t *testing.T) {
	a := AmpduParams(0x17) // exponent 3, spacing 5
	assert.Equal(t, uint8(3), a.MaxAmpduExponent())
	assert.Equal(t, MpduSpacingFourUs, a.MinStartSpacing())
	assert.Equal(t, 65535, a.MaxAmpduLen())
	assert.Equal(t, 8191, AmpduParams(0).MaxAmpduLen())
}

func TestSupportedMcsSet(t *testing.T) {
	var s SupportedMcsSet
	s.Lo = 0xff // MCS 0..7
	assert.True(t, s.SupportsRxMcs(0))
	assert.True(t, s.SupportsRxMcs(7))
	assert.False(t, s.SupportsRxMcs(8))
	assert.False(t, s.SupportsRxMcs(77))

	s.Hi = 1 << 12 // MCS 76
	assert.True(t, s.SupportsRxMcs(76))

	require.NoError(t, s.SetTxMaxSpatialStreams(3))
	assert.Equal(t, uint8(3), s.TxMaxSpatialStreams())
	assert.Error(t, s.SetTxMaxSpatialStreams(5))
	assert.Equal(t, uint8(3), s.TxMaxSpatialStreams())
}

func TestHtCapabilitiesRoundTrip(t *testing.T) {
	h := HtCapabilities{
		CapInfo:     HtCapabilityInfo(0x016e),
		AmpduParams: AmpduParams(0x17),
		McsSet:      SupportedMcsSet{Lo: 0xff, Hi: 0x01000000_00000000},
		ExtCap:      HtExtCapabilities(0x0400),
		TxBfCap:     TxBfCapability(0x00181000),
		AselCap:     AselCapability(1),
	}
	var buf [PrefixLen + HtCapabilitiesLen]byte
	w := buffer.NewWriter(buf[:])
	require.NoError(t, WriteHtCapabilities(w, h))

	out := w.Bytes()
	require.Len(t, out, PrefixLen+HtCapabilitiesLen)
	assert.Equal(t, IDHtCapabilities, out[0])
	assert.Equal(t, uint8(HtCapabilitiesLen), out[1])

	parsed, ok := ParseHtCapabilities(out[PrefixLen:])
	require.True(t, ok)
	assert.Equal(t, h, parsed)

	_, ok = ParseHtCapabilities(out[PrefixLen : PrefixLen+HtCapabilitiesLen-1])
	assert.False(t, ok)
}

func TestHtOperationRoundTrip(t *testing.T) {
	h := HtOperation{
		PrimaryChan: 36,
		InfoHead:    HtOpInfoHead(0x05),
		InfoTail:    HtOpInfoTail(0x00000001),
		BasicMcsSet: SupportedMcsSet{Lo: 0xffff},
	}
	var buf [PrefixLen + HtOperationLen]byte
	w := buffer.NewWriter(buf[:])
	require.NoError(t, WriteHtOperation(w, h))

	parsed, ok := ParseHtOperation(w.Bytes()[PrefixLen:])
	require.True(t, ok)
	assert.Equal(t, h, parsed)
	assert.Equal(t, SecChanOffsetAbove, parsed.InfoHead.SecondaryChanOffset())
	assert.Equal(t, StaChanWidthAny, parsed.InfoHead.StaChanWidth())
	assert.Equal(t, HtProtectionNonMember, parsed.InfoTail.HtProtection())
}

func TestTxBfCsiAntennas(t *testing.T) {
	var bf TxBfCapability
	require.NoError(t, bf.SetCsiAntennas(4))
	assert.Equal(t, uint8(4), bf.CsiAntennas())
	assert.Error(t, bf.SetCsiAntennas(0))
	assert.Error(t, bf.SetCsiAntennas(5))
	assert.Equal(t, uint8(4), bf.CsiAntennas())
}

func TestVhtMcsNssMapAccessor(t *testing.T) {
	m := VhtMcsNssMap(0x00ff)

	v, err := m.Ss(1)
	require.NoError(t, err)
	assert.Equal(t, VhtMcsNone, v)
	v, err = m.Ss(5)
	require.NoError(t, err)
	assert.Equal(t, VhtMcsUpTo7, v)

	require.NoError(t, m.SetSs(1, VhtMcsUpTo9))
	require.NoError(t, m.SetSs(8, VhtMcsNone))
	v, err = m.Ss(1)
	require.NoError(t, err)
	assert.Equal(t, VhtMcsUpTo9, v)
	v, err = m.Ss(8)
	require.NoError(t, err)
	assert.Equal(t, VhtMcsNone, v)
	assert.Equal(t, VhtMcsNssMap(0xc0fe), m)
}

func TestVhtMcsNssMapAccessorErrors(t *testing.T) {
	var m VhtMcsNssMap

	_, err := m.Ss(0)
	assert.EqualError(t, err, "spatial stream number must be between 1 and 8, 0 is invalid")
	_, err = m.Ss(9)
	assert.EqualError(t, err, "spatial stream number must be between 1 and 8, 9 is invalid")

	assert.EqualError(t, m.SetSs(0, VhtMcsNone),
		"spatial stream number must be between 1 and 8, 0 is invalid")
	assert.EqualError(t, m.SetSs(9, VhtMcsNone),
		"spatial stream number must be between 1 and 8, 9 is invalid")
	assert.EqualError(t, m.SetSs(1, 4),
		"per-stream MCS field is only 2 bits wide, 4 is invalid")
	assert.Equal(t, VhtMcsNssMap(0), m)
}

func TestVhtCapabilitiesRoundTrip(t *testing.T) {
	var mcs VhtMcsNssSet
	rx := VhtMcsNssMap(0xfffe) // one stream, MCS 0..9
	require.NoError(t, rx.SetSs(1, VhtMcsUpTo9))
	mcs.SetRxMaxMcs(rx)
	mcs.SetTxMaxMcs(rx)

	v := VhtCapabilities{
		CapInfo: VhtCapabilitiesInfo(0x0f805032),
		McsNss:  mcs,
	}
	var buf [PrefixLen + VhtCapabilitiesLen]byte
	w := buffer.NewWriter(buf[:])
	require.NoError(t, WriteVhtCapabilities(w, v))

	out := w.Bytes()
	assert.Equal(t, IDVhtCapabilities, out[0])
	parsed, ok := ParseVhtCapabilities(out[PrefixLen:])
	require.True(t, ok)
	assert.Equal(t, v, parsed)
	assert.Equal(t, rx, parsed.McsNss.RxMaxMcs())
}

func TestVhtOperationRoundTrip(t *testing.T) {
	v := VhtOperation{
		Cbw:            VhtCbw8016080p80,
		CenterFreqSeg0: 42,
		BasicMcsNss:    VhtMcsNssMap(0xfffc),
	}
	var buf [PrefixLen + VhtOperationLen]byte
	w := buffer.NewWriter(buf[:])
	require.NoError(t, WriteVhtOperation(w, v))

	parsed, ok := ParseVhtOperation(w.Bytes()[PrefixLen:])
	require.True(t, ok)
	assert.Equal(t, v, parsed)
}
