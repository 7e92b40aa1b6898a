package ie

import (
	"fmt"

	"github.com/wavelayer/mlme/internal/wire/bits"
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Encoded lengths of the VHT element bodies.
const (
	VhtCapabilitiesLen = 12
	VhtOperationLen    = 5
)

// VhtCapabilitiesInfo is the leading 32-bit field of the VHT Capabilities
// element. IEEE Std 802.11-2016, 9.4.2.158.2.
type VhtCapabilitiesInfo uint32

func (v VhtCapabilitiesInfo) MaxMpduLen() uint8       { return uint8(bits.Get(uint64(v), 0, 1)) }
func (v VhtCapabilitiesInfo) SupportedCbwSet() uint8  { return uint8(bits.Get(uint64(v), 2, 3)) }
func (v VhtCapabilitiesInfo) RxLdpc() bool            { return bits.GetBit(uint64(v), 4) }
func (v VhtCapabilitiesInfo) SgiCbw80() bool          { return bits.GetBit(uint64(v), 5) }
func (v VhtCapabilitiesInfo) SgiCbw160() bool         { return bits.GetBit(uint64(v), 6) }
func (v VhtCapabilitiesInfo) TxStbc() bool            { return bits.GetBit(uint64(v), 7) }
func (v VhtCapabilitiesInfo) RxStbc() uint8           { return uint8(bits.Get(uint64(v), 8, 10)) }
func (v VhtCapabilitiesInfo) SuBfer() bool            { return bits.GetBit(uint64(v), 11) }
func (v VhtCapabilitiesInfo) SuBfee() bool            { return bits.GetBit(uint64(v), 12) }
func (v VhtCapabilitiesInfo) BfeeSts() uint8          { return uint8(bits.Get(uint64(v), 13, 15)) }
func (v VhtCapabilitiesInfo) NumSounding() uint8      { return uint8(bits.Get(uint64(v), 16, 18)) }
func (v VhtCapabilitiesInfo) MuBfer() bool            { return bits.GetBit(uint64(v), 19) }
func (v VhtCapabilitiesInfo) MuBfee() bool            { return bits.GetBit(uint64(v), 20) }
func (v VhtCapabilitiesInfo) TxopPs() bool            { return bits.GetBit(uint64(v), 21) }
func (v VhtCapabilitiesInfo) HtcVht() bool            { return bits.GetBit(uint64(v), 22) }
func (v VhtCapabilitiesInfo) MaxAmpduExponent() uint8 { return uint8(bits.Get(uint64(v), 23, 25)) }
func (v VhtCapabilitiesInfo) LinkAdapt() uint8        { return uint8(bits.Get(uint64(v), 26, 27)) }
func (v VhtCapabilitiesInfo) ExtNssBw() uint8         { return uint8(bits.Get(uint64(v), 30, 31)) }

// Maximum MPDU length values, Table 9-249.
const (
	VhtMaxMpdu3895  uint8 = 0
	VhtMaxMpdu7991  uint8 = 1
	VhtMaxMpdu11454 uint8 = 2
)

// VHT link adaptation values, Table 9-249.
const (
	VhtLinkAdaptNoFeedback  uint8 = 0
	VhtLinkAdaptUnsolicited uint8 = 2
	VhtLinkAdaptBoth        uint8 = 3
)

// VhtMcsNssMap packs the maximum MCS per spatial stream, two bits per
// stream for streams 1 through 8. IEEE Std 802.11-2016, Figure 9-562.
type VhtMcsNssMap uint16

const vhtMcsBitWidth = 2

// Per-stream maximum MCS values.
const (
	VhtMcsUpTo7 uint8 = 0
	VhtMcsUpTo8 uint8 = 1
	VhtMcsUpTo9 uint8 = 2
	VhtMcsNone  uint8 = 3
)

// Ss returns the maximum MCS value for spatial stream num in [1, 8].
func (m VhtMcsNssMap) Ss(num uint8) (uint8, error) {
	if num < 1 || num > 8 {
		return 0, fmt.Errorf("spatial stream number must be between 1 and 8, %d is invalid", num)
	}
	lo := uint(num-1) * vhtMcsBitWidth
	return uint8(bits.Get(uint64(m), lo, lo+vhtMcsBitWidth-1)), nil
}

// SetSs sets the maximum MCS value for spatial stream num in [1, 8]. The
// map is unchanged on any failure.
func (m *VhtMcsNssMap) SetSs(num uint8, val uint8) error {
	if num < 1 || num > 8 {
		return fmt.Errorf("spatial stream number must be between 1 and 8, %d is invalid", num)
	}
	lo := uint(num-1) * vhtMcsBitWidth
	out, err := bits.Set(uint64(*m), lo, lo+vhtMcsBitWidth-1, uint64(val))
	if err != nil {
		return fmt.Errorf("per-stream MCS field is only %d bits wide, %d is invalid", vhtMcsBitWidth, val)
	}
	*m = VhtMcsNssMap(out)
	return nil
}

// VhtMcsNssSet is the 64-bit Supported VHT-MCS and NSS Set field.
// IEEE Std 802.11-2016, 9.4.2.158.3.
type VhtMcsNssSet uint64

func (s VhtMcsNssSet) RxMaxMcs() VhtMcsNssMap  { return VhtMcsNssMap(bits.Get(uint64(s), 0, 15)) }
func (s VhtMcsNssSet) RxMaxDataRate() uint16   { return uint16(bits.Get(uint64(s), 16, 28)) }
func (s VhtMcsNssSet) MaxNsts() uint8          { return uint8(bits.Get(uint64(s), 29, 31)) }
func (s VhtMcsNssSet) TxMaxMcs() VhtMcsNssMap  { return VhtMcsNssMap(bits.Get(uint64(s), 32, 47)) }
func (s VhtMcsNssSet) TxMaxDataRate() uint16   { return uint16(bits.Get(uint64(s), 48, 60)) }
func (s VhtMcsNssSet) ExtNssBwCapable() bool   { return bits.GetBit(uint64(s), 61) }

// SetRxMaxMcs replaces the RX per-stream MCS map.
func (s *VhtMcsNssSet) SetRxMaxMcs(m VhtMcsNssMap) {
	out, _ := bits.Set(uint64(*s), 0, 15, uint64(m))
	*s = VhtMcsNssSet(out)
}

// SetTxMaxMcs replaces the TX per-stream MCS map.
func (s *VhtMcsNssSet) SetTxMaxMcs(m VhtMcsNssMap) {
	out, _ := bits.Set(uint64(*s), 32, 47, uint64(m))
	*s = VhtMcsNssSet(out)
}

// VhtCapabilities is the decoded VHT Capabilities element body.
// IEEE Std 802.11-2016, 9.4.2.158.
type VhtCapabilities struct {
	CapInfo VhtCapabilitiesInfo
	McsNss  VhtMcsNssSet
}

// ParseVhtCapabilities decodes a 12-byte VHT Capabilities element body.
func ParseVhtCapabilities(body []byte) (VhtCapabilities, bool) {
	if len(body) != VhtCapabilitiesLen {
		return VhtCapabilities{}, false
	}
	r := buffer.NewReader(body)
	ci, _ := r.ReadUint32()
	mn, _ := r.ReadUint64()
	return VhtCapabilities{
		CapInfo: VhtCapabilitiesInfo(ci),
		McsNss:  VhtMcsNssSet(mn),
	}, true
}

// WriteVhtCapabilities appends a VHT Capabilities element.
func WriteVhtCapabilities(w *buffer.Writer, v VhtCapabilities) error {
	var body [VhtCapabilitiesLen]byte
	bw := buffer.NewWriter(body[:])
	bw.AppendUint32(uint32(v.CapInfo))
	bw.AppendUint64(uint64(v.McsNss))
	return Write(w, IDVhtCapabilities, bw.Bytes())
}

// VHT channel bandwidth values, Table 9-252.
const (
	VhtCbw2040       uint8 = 0
	VhtCbw8016080p80 uint8 = 1
)

// VhtOperation is the decoded VHT Operation element body.
// IEEE Std 802.11-2016, 9.4.2.159.
type VhtOperation struct {
	Cbw            uint8
	CenterFreqSeg0 uint8
	CenterFreqSeg1 uint8
	BasicMcsNss    VhtMcsNssMap
}

// ParseVhtOperation decodes a 5-byte VHT Operation element body.
func ParseVhtOperation(body []byte) (VhtOperation, bool) {
	if len(body) != VhtOperationLen {
		return VhtOperation{}, false
	}
	r := buffer.NewReader(body)
	var v VhtOperation
	v.Cbw, _ = r.ReadByte()
	v.CenterFreqSeg0, _ = r.ReadByte()
	v.CenterFreqSeg1, _ = r.ReadByte()
	mn, _ := r.ReadUint16()
	v.BasicMcsNss = VhtMcsNssMap(mn)
	return v, true
}

// WriteVhtOperation appends a VHT Operation element.
func WriteVhtOperation(w *buffer.Writer, v VhtOperation) error {
	var body [VhtOperationLen]byte
	bw := buffer.NewWriter(body[:])
	bw.AppendByte(v.Cbw)
	bw.AppendByte(v.CenterFreqSeg0)
	bw.AppendByte(v.CenterFreqSeg1)
	bw.AppendUint16(uint16(v.BasicMcsNss))
	return Write(w, IDVhtOperation, bw.Bytes())
}
