package mac

import (
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

const (
	// FixedDataHdrLen is the length of a data header without the optional
	// Addr4, QoS control and HT control fields.
	FixedDataHdrLen = 24
	Addr4Len        = 6
	QoSCtrlLen      = 2
	HtCtrlLen       = 4

	LlcHdrLen           = 8
	AmsduSubframeHdrLen = 14
)

// DataHdr is a parsed data frame header. The optional fields are present or
// absent based on the frame-control flags and QoS subtype bit; presence is
// never stored redundantly.
type DataHdr struct {
	FrameCtrl FrameControl
	Duration  uint16
	Addr1     MAC
	Addr2     MAC
	Addr3     MAC
	SeqCtrl   SequenceControl
	Addr4     *MAC
	QoSCtrl   *QoSControl
	HtCtrl    *uint32
}

// DataHdrLen returns the header length implied by the given optional-field
// presence, used to size transmit buffers exactly.
func DataHdrLen(hasAddr4, hasQoS, hasHtCtrl bool) int {
	n := FixedDataHdrLen
	if hasAddr4 {
		n += Addr4Len
	}
	if hasQoS {
		n += QoSCtrlLen
	}
	if hasHtCtrl {
		n += HtCtrlLen
	}
	return n
}

// ReadDataHdr consumes a data frame header including whichever optional
// fields the frame-control flags call for.
func ReadDataHdr(r *buffer.Reader) (DataHdr, bool) {
	var h DataHdr
	if r.BytesRemaining() < FixedDataHdrLen {
		return h, false
	}
	fc, _ := r.ReadUint16()
	h.FrameCtrl = FrameControl(fc)
	h.Duration, _ = r.ReadUint16()
	h.Addr1, _ = r.ReadMAC()
	h.Addr2, _ = r.ReadMAC()
	h.Addr3, _ = r.ReadMAC()
	sc, _ := r.ReadUint16()
	h.SeqCtrl = SequenceControl(sc)

	if h.FrameCtrl.ToDS() && h.FrameCtrl.FromDS() {
		a4, ok := r.ReadMAC()
		if !ok {
			return h, false
		}
		addr4 := MAC(a4)
		h.Addr4 = &addr4
	}
	if h.FrameCtrl.FrameSubtype()&DataSubtypeQosBit != 0 {
		qc, ok := r.ReadUint16()
		if !ok {
			return h, false
		}
		q := QoSControl(qc)
		h.QoSCtrl = &q
	}
	if h.FrameCtrl.HtcOrder() {
		htc, ok := r.ReadUint32()
		if !ok {
			return h, false
		}
		h.HtCtrl = &htc
	}
	return h, true
}

// WriteTo appends the fixed header fields. Outbound frames built by this
// station never carry Addr4, QoS control or HT control, so only the fixed
// 24 bytes are written.
func (h DataHdr) WriteTo(w *buffer.Writer) error {
	if err := w.AppendUint16(uint16(h.FrameCtrl)); err != nil {
		return err
	}
	if err := w.AppendUint16(h.Duration); err != nil {
		return err
	}
	if err := w.AppendMAC(h.Addr1); err != nil {
		return err
	}
	if err := w.AppendMAC(h.Addr2); err != nil {
		return err
	}
	if err := w.AppendMAC(h.Addr3); err != nil {
		return err
	}
	return w.AppendUint16(uint16(h.SeqCtrl))
}

// DstAddr returns the destination address implied by the DS bits.
// IEEE Std 802.11-2016, Table 9-26.
func (h *DataHdr) DstAddr() MAC {
	if h.FrameCtrl.ToDS() {
		return h.Addr3
	}
	return h.Addr1
}

// SrcAddr returns the source address implied by the DS bits.
func (h *DataHdr) SrcAddr() MAC {
	switch {
	case !h.FrameCtrl.FromDS():
		return h.Addr2
	case h.Addr4 != nil:
		return *h.Addr4
	default:
		return h.Addr3
	}
}

// IsNull reports whether the frame carries no data (keep-alive probes).
func (h *DataHdr) IsNull() bool {
	return h.FrameCtrl.FrameSubtype()&DataSubtypeNullBit != 0
}

// IsAmsdu reports whether the body is an aggregate of MSDU subframes.
func (h *DataHdr) IsAmsdu() bool {
	return h.QoSCtrl != nil && h.QoSCtrl.AmsduPresent()
}

// LlcHdr is the LLC/SNAP encapsulation header preceding each MSDU payload.
// IEEE Std 802.2; the protocol id is network byte order.
type LlcHdr struct {
	DSAP       uint8
	SSAP       uint8
	Control    uint8
	OUI        [3]byte
	ProtocolID uint16
}

// LLC constants for SNAP encapsulation of Ethernet payloads.
const (
	LlcSnapDSAP    = 0xaa
	LlcSnapSSAP    = 0xaa
	LlcSnapControl = 0x03
)

func ReadLlcHdr(r *buffer.Reader) (LlcHdr, bool) {
	var h LlcHdr
	if r.BytesRemaining() < LlcHdrLen {
		return h, false
	}
	h.DSAP, _ = r.ReadByte()
	h.SSAP, _ = r.ReadByte()
	h.Control, _ = r.ReadByte()
	oui, _ := r.ReadBytes(3)
	copy(h.OUI[:], oui)
	h.ProtocolID, _ = r.ReadUint16BE()
	return h, true
}

// WriteLlcHdr appends a SNAP header carrying etherType.
func WriteLlcHdr(w *buffer.Writer, etherType uint16) error {
	if err := w.AppendByte(LlcSnapDSAP); err != nil {
		return err
	}
	if err := w.AppendByte(LlcSnapSSAP); err != nil {
		return err
	}
	if err := w.AppendByte(LlcSnapControl); err != nil {
		return err
	}
	if err := w.AppendZeros(3); err != nil { // OUI
		return err
	}
	return w.AppendUint16BE(etherType)
}
