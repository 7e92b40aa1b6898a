package ie

import (
	"github.com/wavelayer/mlme/internal/wire/bits"
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Encoded lengths of the HT element bodies.
const (
	HtCapabilitiesLen = 26
	HtOperationLen    = 22
)

// HtCapabilityInfo is the leading 16-bit field of the HT Capabilities
// element. IEEE Std 802.11-2016, 9.4.2.56.2.
type HtCapabilityInfo uint16

func (h HtCapabilityInfo) LdpcCodingCap() bool    { return bits.GetBit(uint64(h), 0) }
func (h HtCapabilityInfo) ChanWidthSet() uint8    { return uint8(bits.Get(uint64(h), 1, 1)) }
func (h HtCapabilityInfo) SmPowerSave() uint8     { return uint8(bits.Get(uint64(h), 2, 3)) }
func (h HtCapabilityInfo) Greenfield() bool       { return bits.GetBit(uint64(h), 4) }
func (h HtCapabilityInfo) ShortGi20() bool        { return bits.GetBit(uint64(h), 5) }
func (h HtCapabilityInfo) ShortGi40() bool        { return bits.GetBit(uint64(h), 6) }
func (h HtCapabilityInfo) TxStbc() bool           { return bits.GetBit(uint64(h), 7) }
func (h HtCapabilityInfo) RxStbc() uint8          { return uint8(bits.Get(uint64(h), 8, 9)) }
func (h HtCapabilityInfo) DelayedBlockAck() bool  { return bits.GetBit(uint64(h), 10) }
func (h HtCapabilityInfo) MaxAmsduLen() uint8     { return uint8(bits.Get(uint64(h), 11, 11)) }
func (h HtCapabilityInfo) DsssIn40() bool         { return bits.GetBit(uint64(h), 12) }
func (h HtCapabilityInfo) Intolerant40() bool     { return bits.GetBit(uint64(h), 14) }
func (h HtCapabilityInfo) LsigTxopProtect() bool  { return bits.GetBit(uint64(h), 15) }

func (h *HtCapabilityInfo) SetChanWidthSet(v uint8) error { return set16((*uint16)(h), 1, 1, v) }
func (h *HtCapabilityInfo) SetSmPowerSave(v uint8) error  { return set16((*uint16)(h), 2, 3, v) }
func (h *HtCapabilityInfo) SetRxStbc(v uint8) error       { return set16((*uint16)(h), 8, 9, v) }
func (h *HtCapabilityInfo) SetMaxAmsduLen(v uint8) error  { return set16((*uint16)(h), 11, 11, v) }

// Supported Channel Width Set values.
const (
	ChanWidth20Only uint8 = 0
	ChanWidth2040   uint8 = 1
)

// Spatial Multiplexing Power Save values.
const (
	SmPowerSaveStatic   uint8 = 0
	SmPowerSaveDynamic  uint8 = 1
	SmPowerSaveDisabled uint8 = 3
)

// Maximum A-MSDU length values.
const (
	MaxAmsduLen3839 uint8 = 0
	MaxAmsduLen7935 uint8 = 1
)

// AmpduParams is the A-MPDU Parameters field.
// IEEE Std 802.11-2016, 9.4.2.56.3.
type AmpduParams uint8

func (a AmpduParams) MaxAmpduExponent() uint8 { return uint8(bits.Get(uint64(a), 0, 1)) }
func (a AmpduParams) MinStartSpacing() uint8  { return uint8(bits.Get(uint64(a), 2, 4)) }

// MaxAmpduLen converts the exponent to the A-MPDU length bound it encodes.
func (a AmpduParams) MaxAmpduLen() int {
	return (1 << (13 + a.MaxAmpduExponent())) - 1
}

// Minimum MPDU start spacing values.
const (
	MpduSpacingNoRestrict uint8 = 0
	MpduSpacingQuarterUs  uint8 = 1
	MpduSpacingHalfUs     uint8 = 2
	MpduSpacingOneUs      uint8 = 3
	MpduSpacingTwoUs      uint8 = 4
	MpduSpacingFourUs     uint8 = 5
	MpduSpacingEightUs    uint8 = 6
	MpduSpacingSixteenUs  uint8 = 7
)

// SupportedMcsSet is the 128-bit Supported MCS Set field, kept as two
// little-endian halves (Lo holds bits 0..63, Hi bits 64..127).
// IEEE Std 802.11-2016, 9.4.2.56.4.
type SupportedMcsSet struct {
	Lo uint64
	Hi uint64
}

// SupportsRxMcs reports whether the given MCS index (0..76) is in the RX
// bitmask.
func (s SupportedMcsSet) SupportsRxMcs(index uint8) bool {
	if index > 76 {
		return false
	}
	if index < 64 {
		return bits.GetBit(s.Lo, uint(index))
	}
	return bits.GetBit(s.Hi, uint(index-64))
}

// RxHighestRate returns the RX highest supported rate in Mbps
// (bits 80..89).
func (s SupportedMcsSet) RxHighestRate() uint16 {
	return uint16(bits.Get(s.Hi, 16, 25))
}

func (s SupportedMcsSet) TxSetDefined() bool { return bits.GetBit(s.Hi, 32) }
func (s SupportedMcsSet) TxRxDiff() bool     { return bits.GetBit(s.Hi, 33) }
func (s SupportedMcsSet) TxUeqm() bool       { return bits.GetBit(s.Hi, 36) }

// TxMaxSpatialStreams returns the human-readable TX spatial stream count
// (the wire field at bits 98..99 is off-by-one encoded).
func (s SupportedMcsSet) TxMaxSpatialStreams() uint8 {
	return bits.ToHuman(uint8(bits.Get(s.Hi, 34, 35)))
}

// SetTxMaxSpatialStreams sets the TX spatial stream count from its human
// value in [1, 4].
func (s *SupportedMcsSet) SetTxMaxSpatialStreams(n uint8) error {
	enc, err := bits.FromHuman("number of spatial streams", n)
	if err != nil {
		return err
	}
	hi, err := bits.Set(s.Hi, 34, 35, uint64(enc))
	if err != nil {
		return err
	}
	s.Hi = hi
	return nil
}

func (s SupportedMcsSet) writeTo(w *buffer.Writer) error {
	if err := w.AppendUint64(s.Lo); err != nil {
		return err
	}
	return w.AppendUint64(s.Hi)
}

func readMcsSet(r *buffer.Reader) (SupportedMcsSet, bool) {
	lo, ok := r.ReadUint64()
	if !ok {
		return SupportedMcsSet{}, false
	}
	hi, ok := r.ReadUint64()
	if !ok {
		return SupportedMcsSet{}, false
	}
	return SupportedMcsSet{Lo: lo, Hi: hi}, true
}

// HtExtCapabilities is the HT Extended Capabilities field.
// IEEE Std 802.11-2016, 9.4.2.56.5.
type HtExtCapabilities uint16

func (h HtExtCapabilities) Pco() bool            { return bits.GetBit(uint64(h), 0) }
func (h HtExtCapabilities) PcoTransition() uint8 { return uint8(bits.Get(uint64(h), 1, 2)) }
func (h HtExtCapabilities) McsFeedback() uint8   { return uint8(bits.Get(uint64(h), 8, 9)) }
func (h HtExtCapabilities) HtcHtSupport() bool   { return bits.GetBit(uint64(h), 10) }
func (h HtExtCapabilities) RdResponder() bool    { return bits.GetBit(uint64(h), 11) }

// TxBfCapability is the Transmit Beamforming Capabilities field.
// IEEE Std 802.11-2016, 9.4.2.56.6.
type TxBfCapability uint32

func (t TxBfCapability) ImplicitRx() bool      { return bits.GetBit(uint64(t), 0) }
func (t TxBfCapability) Calibration() uint8    { return uint8(bits.Get(uint64(t), 6, 7)) }
func (t TxBfCapability) Csi() bool             { return bits.GetBit(uint64(t), 8) }
func (t TxBfCapability) CsiFeedback() uint8    { return uint8(bits.Get(uint64(t), 11, 12)) }
func (t TxBfCapability) MinGrouping() uint8    { return uint8(bits.Get(uint64(t), 17, 18)) }
func (t TxBfCapability) ChanEstimation() uint8 { return uint8(bits.Get(uint64(t), 27, 28)) }

// CsiAntennas returns the human-readable CSI antenna count (bits 19..20,
// off-by-one encoded).
func (t TxBfCapability) CsiAntennas() uint8 {
	return bits.ToHuman(uint8(bits.Get(uint64(t), 19, 20)))
}

// SetCsiAntennas sets the CSI antenna count from its human value in [1, 4].
func (t *TxBfCapability) SetCsiAntennas(n uint8) error {
	enc, err := bits.FromHuman("number of antennas", n)
	if err != nil {
		return err
	}
	v, err := bits.Set(uint64(*t), 19, 20, uint64(enc))
	if err != nil {
		return err
	}
	*t = TxBfCapability(v)
	return nil
}

// AselCapability is the Antenna Selection Capability field.
// IEEE Std 802.11-2016, 9.4.2.56.7.
type AselCapability uint8

func (a AselCapability) Asel() bool { return bits.GetBit(uint64(a), 0) }

// HtCapabilities is the decoded HT Capabilities element body.
// IEEE Std 802.11-2016, 9.4.2.56.
type HtCapabilities struct {
	CapInfo     HtCapabilityInfo
	AmpduParams AmpduParams
	McsSet      SupportedMcsSet
	ExtCap      HtExtCapabilities
	TxBfCap     TxBfCapability
	AselCap     AselCapability
}

// ParseHtCapabilities decodes a 26-byte HT Capabilities element body.
func ParseHtCapabilities(body []byte) (HtCapabilities, bool) {
	if len(body) != HtCapabilitiesLen {
		return HtCapabilities{}, false
	}
	r := buffer.NewReader(body)
	var h HtCapabilities
	ci, _ := r.ReadUint16()
	h.CapInfo = HtCapabilityInfo(ci)
	ap, _ := r.ReadByte()
	h.AmpduParams = AmpduParams(ap)
	h.McsSet, _ = readMcsSet(r)
	ec, _ := r.ReadUint16()
	h.ExtCap = HtExtCapabilities(ec)
	tb, _ := r.ReadUint32()
	h.TxBfCap = TxBfCapability(tb)
	ac, _ := r.ReadByte()
	h.AselCap = AselCapability(ac)
	return h, true
}

// WriteHtCapabilities appends an HT Capabilities element.
func WriteHtCapabilities(w *buffer.Writer, h HtCapabilities) error {
	var body [HtCapabilitiesLen]byte
	bw := buffer.NewWriter(body[:])
	bw.AppendUint16(uint16(h.CapInfo))
	bw.AppendByte(uint8(h.AmpduParams))
	h.McsSet.writeTo(bw)
	bw.AppendUint16(uint16(h.ExtCap))
	bw.AppendUint32(uint32(h.TxBfCap))
	bw.AppendByte(uint8(h.AselCap))
	return Write(w, IDHtCapabilities, bw.Bytes())
}

// HtOpInfoHead is the first byte of the 40-bit HT Operation Information
// field. IEEE Std 802.11-2016, Figure 9-339.
type HtOpInfoHead uint8

func (h HtOpInfoHead) SecondaryChanOffset() uint8 { return uint8(bits.Get(uint64(h), 0, 1)) }
func (h HtOpInfoHead) StaChanWidth() uint8        { return uint8(bits.Get(uint64(h), 2, 2)) }
func (h HtOpInfoHead) RifsModePermitted() bool    { return bits.GetBit(uint64(h), 3) }

// Secondary channel offset values.
const (
	SecChanOffsetNone  uint8 = 0
	SecChanOffsetAbove uint8 = 1
	SecChanOffsetBelow uint8 = 3
)

// STA channel width values.
const (
	StaChanWidth20  uint8 = 0
	StaChanWidthAny uint8 = 1
)

// HtOpInfoTail is the remaining 32 bits of the HT Operation Information
// field. IEEE Std 802.11-2016, Figure 9-339 (continued).
type HtOpInfoTail uint32

func (h HtOpInfoTail) HtProtection() uint8         { return uint8(bits.Get(uint64(h), 0, 1)) }
func (h HtOpInfoTail) NongreenfieldPresent() bool  { return bits.GetBit(uint64(h), 2) }
func (h HtOpInfoTail) ObssNonHtStasPresent() bool  { return bits.GetBit(uint64(h), 4) }
func (h HtOpInfoTail) CenterFreqSeg2() uint8       { return uint8(bits.Get(uint64(h), 5, 12)) }
func (h HtOpInfoTail) DualBeacon() bool            { return bits.GetBit(uint64(h), 22) }
func (h HtOpInfoTail) DualCtsProtection() bool     { return bits.GetBit(uint64(h), 23) }
func (h HtOpInfoTail) StbcBeacon() bool            { return bits.GetBit(uint64(h), 24) }
func (h HtOpInfoTail) LsigTxopProtection() bool    { return bits.GetBit(uint64(h), 25) }
func (h HtOpInfoTail) PcoActive() bool             { return bits.GetBit(uint64(h), 26) }
func (h HtOpInfoTail) PcoPhase() uint8             { return uint8(bits.Get(uint64(h), 27, 27)) }

// HT protection mode values.
const (
	HtProtectionNone       uint8 = 0
	HtProtectionNonMember  uint8 = 1
	HtProtection20Mhz      uint8 = 2
	HtProtectionNonHtMixed uint8 = 3
)

// HtOperation is the decoded HT Operation element body.
// IEEE Std 802.11-2016, 9.4.2.57.
type HtOperation struct {
	PrimaryChan uint8
	InfoHead    HtOpInfoHead
	InfoTail    HtOpInfoTail
	BasicMcsSet SupportedMcsSet
}

// ParseHtOperation decodes a 22-byte HT Operation element body.
func ParseHtOperation(body []byte) (HtOperation, bool) {
	if len(body) != HtOperationLen {
		return HtOperation{}, false
	}
	r := buffer.NewReader(body)
	var h HtOperation
	h.PrimaryChan, _ = r.ReadByte()
	head, _ := r.ReadByte()
	h.InfoHead = HtOpInfoHead(head)
	tail, _ := r.ReadUint32()
	h.InfoTail = HtOpInfoTail(tail)
	h.BasicMcsSet, _ = readMcsSet(r)
	return h, true
}

// WriteHtOperation appends an HT Operation element.
func WriteHtOperation(w *buffer.Writer, h HtOperation) error {
	var body [HtOperationLen]byte
	bw := buffer.NewWriter(body[:])
	bw.AppendByte(h.PrimaryChan)
	bw.AppendByte(uint8(h.InfoHead))
	bw.AppendUint32(uint32(h.InfoTail))
	h.BasicMcsSet.writeTo(bw)
	return Write(w, IDHtOperation, bw.Bytes())
}

func set16(dst *uint16, lo, hi uint, v uint8) error {
	out, err := bits.Set(uint64(*dst), lo, hi, uint64(v))
	if err != nil {
		return err
	}
	*dst = uint16(out)
	return nil
}
