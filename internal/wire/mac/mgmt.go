package mac

import (
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Fixed layout sizes in bytes. Declared explicitly so frame buffers can be
// sized before allocation; none of these structs is ever overlaid on memory.
const (
	MgmtHdrLen      = 24
	AuthHdrLen      = 6
	AssocReqHdrLen  = 4
	AssocRespHdrLen = 6
	DeauthHdrLen    = 2
	DisassocHdrLen  = 2
	PsPollLen       = 16
)

// MgmtHdr is the fixed management frame header.
// IEEE Std 802.11-2016, 9.3.3.2.
type MgmtHdr struct {
	FrameCtrl FrameControl
	Duration  uint16
	Addr1     MAC
	Addr2     MAC
	Addr3     MAC
	SeqCtrl   SequenceControl
}

// ReadMgmtHdr consumes a management header from r. It returns false without
// consuming anything if fewer than MgmtHdrLen bytes remain.
func ReadMgmtHdr(r *buffer.Reader) (MgmtHdr, bool) {
	var h MgmtHdr
	if r.BytesRemaining() < MgmtHdrLen {
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
	return h, true
}

// WriteMgmtHdr appends a management header to w.
func (h MgmtHdr) WriteTo(w *buffer.Writer) error {
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

// AuthHdr is the fixed body of an authentication frame.
// IEEE Std 802.11-2016, 9.3.3.12.
type AuthHdr struct {
	Algorithm  AuthAlgorithm
	TxnSeqNum  uint16
	StatusCode StatusCode
}

func ReadAuthHdr(r *buffer.Reader) (AuthHdr, bool) {
	var h AuthHdr
	if r.BytesRemaining() < AuthHdrLen {
		return h, false
	}
	alg, _ := r.ReadUint16()
	h.Algorithm = AuthAlgorithm(alg)
	h.TxnSeqNum, _ = r.ReadUint16()
	st, _ := r.ReadUint16()
	h.StatusCode = StatusCode(st)
	return h, true
}

func (h AuthHdr) WriteTo(w *buffer.Writer) error {
	if err := w.AppendUint16(uint16(h.Algorithm)); err != nil {
		return err
	}
	if err := w.AppendUint16(h.TxnSeqNum); err != nil {
		return err
	}
	return w.AppendUint16(uint16(h.StatusCode))
}

// AssocReqHdr is the fixed body of an association request; the information
// elements follow it. IEEE Std 802.11-2016, 9.3.3.6.
type AssocReqHdr struct {
	Capabilities   CapabilityInfo
	ListenInterval uint16
}

func (h AssocReqHdr) WriteTo(w *buffer.Writer) error {
	if err := w.AppendUint16(uint16(h.Capabilities)); err != nil {
		return err
	}
	return w.AppendUint16(h.ListenInterval)
}

// AssocRespHdr is the fixed body of an association response.
// IEEE Std 802.11-2016, 9.3.3.7.
type AssocRespHdr struct {
	Capabilities CapabilityInfo
	StatusCode   StatusCode
	AID          AID
}

func ReadAssocRespHdr(r *buffer.Reader) (AssocRespHdr, bool) {
	var h AssocRespHdr
	if r.BytesRemaining() < AssocRespHdrLen {
		return h, false
	}
	cap, _ := r.ReadUint16()
	h.Capabilities = CapabilityInfo(cap)
	st, _ := r.ReadUint16()
	h.StatusCode = StatusCode(st)
	aid, _ := r.ReadUint16()
	// The two topmost AID bits are always set on the wire.
	h.AID = AID(aid & 0x3fff)
	return h, true
}

// DeauthHdr is the body of a deauthentication frame.
// IEEE Std 802.11-2016, 9.3.3.13.
type DeauthHdr struct {
	ReasonCode ReasonCode
}

func ReadDeauthHdr(r *buffer.Reader) (DeauthHdr, bool) {
	rc, ok := r.ReadUint16()
	if !ok {
		return DeauthHdr{}, false
	}
	return DeauthHdr{ReasonCode: ReasonCode(rc)}, true
}

func (h DeauthHdr) WriteTo(w *buffer.Writer) error {
	return w.AppendUint16(uint16(h.ReasonCode))
}

// DisassocHdr is the body of a disassociation frame.
// IEEE Std 802.11-2016, 9.3.3.5.
type DisassocHdr struct {
	ReasonCode ReasonCode
}

func ReadDisassocHdr(r *buffer.Reader) (DisassocHdr, bool) {
	rc, ok := r.ReadUint16()
	if !ok {
		return DisassocHdr{}, false
	}
	return DisassocHdr{ReasonCode: ReasonCode(rc)}, true
}

// PsPoll is the PS-Poll control frame. The duration field carries the AID
// with the two topmost bits set. IEEE Std 802.11-2016, 9.3.1.5.
type PsPoll struct {
	AID   AID
	BSSID BSSID
	TA    MAC
}

func (p PsPoll) WriteTo(w *buffer.Writer) error {
	fc := NewFrameControl(FrameTypeCtrl, CtrlSubtypePsPoll)
	if err := w.AppendUint16(uint16(fc)); err != nil {
		return err
	}
	if err := w.AppendUint16(uint16(p.AID) | 0xc000); err != nil {
		return err
	}
	if err := w.AppendMAC(p.BSSID.MAC()); err != nil {
		return err
	}
	return w.AppendMAC(p.TA)
}
