package ie

import (
	"github.com/wavelayer/mlme/internal/wire/bits"
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Mesh path-selection elements (HWMP). Only structural decode is provided;
// path selection policy lives elsewhere.

// MAC is the address type used inside mesh elements.
type MAC = [6]byte

// Mesh Peering Management protocol identifiers.
// IEEE Std 802.11-2016, 9.4.2.102, Table 9-222.
const (
	MpmProtocolMpm            uint16 = 0
	MpmProtocolAmpe           uint16 = 1
	MpmProtocolVendorSpecific uint16 = 255
)

// MpmHeader is the fixed part of the Mesh Peering Management element.
type MpmHeader struct {
	Protocol    uint16
	LocalLinkID uint16
}

// MpmPmkLen is the length of the optional PMK field.
const MpmPmkLen = 16

// MpmOpen is the MPM element of a mesh peering open frame.
type MpmOpen struct {
	Header MpmHeader
	Pmk    []byte // nil or MpmPmkLen bytes
}

// MpmConfirm is the MPM element of a mesh peering confirm frame.
type MpmConfirm struct {
	Header     MpmHeader
	PeerLinkID uint16
	Pmk        []byte
}

// MpmClose is the MPM element of a mesh peering close frame. The peer link
// id is optional; its presence is inferred from the element length.
type MpmClose struct {
	Header     MpmHeader
	PeerLinkID *uint16
	ReasonCode uint16
	Pmk        []byte
}

func readMpmHeader(r *buffer.Reader) (MpmHeader, bool) {
	proto, ok := r.ReadUint16()
	if !ok {
		return MpmHeader{}, false
	}
	link, ok := r.ReadUint16()
	if !ok {
		return MpmHeader{}, false
	}
	return MpmHeader{Protocol: proto, LocalLinkID: link}, true
}

func readOptionalPmk(r *buffer.Reader) ([]byte, bool) {
	switch r.BytesRemaining() {
	case 0:
		return nil, true
	case MpmPmkLen:
		pmk, _ := r.ReadBytes(MpmPmkLen)
		return pmk, true
	default:
		return nil, false
	}
}

// ParseMpmOpen decodes the MPM element body of a peering open frame.
func ParseMpmOpen(body []byte) (MpmOpen, bool) {
	r := buffer.NewReader(body)
	hdr, ok := readMpmHeader(r)
	if !ok {
		return MpmOpen{}, false
	}
	pmk, ok := readOptionalPmk(r)
	if !ok {
		return MpmOpen{}, false
	}
	return MpmOpen{Header: hdr, Pmk: pmk}, true
}

// ParseMpmConfirm decodes the MPM element body of a peering confirm frame.
func ParseMpmConfirm(body []byte) (MpmConfirm, bool) {
	r := buffer.NewReader(body)
	hdr, ok := readMpmHeader(r)
	if !ok {
		return MpmConfirm{}, false
	}
	peer, ok := r.ReadUint16()
	if !ok {
		return MpmConfirm{}, false
	}
	pmk, ok := readOptionalPmk(r)
	if !ok {
		return MpmConfirm{}, false
	}
	return MpmConfirm{Header: hdr, PeerLinkID: peer, Pmk: pmk}, true
}

// ParseMpmClose decodes the MPM element body of a peering close frame.
func ParseMpmClose(body []byte) (MpmClose, bool) {
	r := buffer.NewReader(body)
	hdr, ok := readMpmHeader(r)
	if !ok {
		return MpmClose{}, false
	}
	var c MpmClose
	c.Header = hdr
	// Remaining: reason [2], optionally preceded by peer link id [2],
	// optionally followed by PMK [16].
	switch r.BytesRemaining() {
	case 2, 2 + MpmPmkLen:
	case 4, 4 + MpmPmkLen:
		peer, _ := r.ReadUint16()
		c.PeerLinkID = &peer
	default:
		return MpmClose{}, false
	}
	c.ReasonCode, _ = r.ReadUint16()
	pmk, ok := readOptionalPmk(r)
	if !ok {
		return MpmClose{}, false
	}
	c.Pmk = pmk
	return c, true
}

// PreqFlags is the flags byte of a PREQ element.
// IEEE Std 802.11-2016, 9.4.2.113, Figure 9-478.
type PreqFlags uint8

func (f PreqFlags) GateAnnouncement() bool { return bits.GetBit(uint64(f), 0) }
func (f PreqFlags) AddressingMode() bool   { return bits.GetBit(uint64(f), 1) }
func (f PreqFlags) Proactive() bool        { return bits.GetBit(uint64(f), 2) }
func (f PreqFlags) AddrExt() bool          { return bits.GetBit(uint64(f), 6) }

// PreqHeader holds the fixed PREQ fields preceding the optional originator
// external address. IEEE Std 802.11-2016, 9.4.2.113, Figure 9-477.
type PreqHeader struct {
	Flags               PreqFlags
	HopCount            uint8
	ElementTTL          uint8
	PathDiscoveryID     uint32
	OriginatorAddr      MAC
	OriginatorHwmpSeqno uint32
}

// PreqMiddle holds the fixed PREQ fields between the optional external
// address and the per-target records.
type PreqMiddle struct {
	Lifetime    uint32
	Metric      uint32
	TargetCount uint8
}

// PreqPerTargetFlags is the flags byte of one PREQ target record.
// IEEE Std 802.11-2016, Figure 9-479.
type PreqPerTargetFlags uint8

func (f PreqPerTargetFlags) TargetOnly() bool { return bits.GetBit(uint64(f), 0) }
func (f PreqPerTargetFlags) Usn() bool        { return bits.GetBit(uint64(f), 2) }

// PreqPerTarget is one entry of the PREQ target list.
type PreqPerTarget struct {
	Flags           PreqPerTargetFlags
	TargetAddr      MAC
	TargetHwmpSeqno uint32
}

const preqPerTargetLen = 11

// Preq is a decoded PREQ (path request) element.
type Preq struct {
	Header                 PreqHeader
	OriginatorExternalAddr *MAC
	Middle                 PreqMiddle
	Targets                []PreqPerTarget
}

// ParsePreq decodes a PREQ element body. The target list length must match
// the declared target count exactly.
func ParsePreq(body []byte) (Preq, bool) {
	r := buffer.NewReader(body)
	var p Preq
	flags, ok := r.ReadByte()
	if !ok {
		return Preq{}, false
	}
	p.Header.Flags = PreqFlags(flags)
	if p.Header.HopCount, ok = r.ReadByte(); !ok {
		return Preq{}, false
	}
	if p.Header.ElementTTL, ok = r.ReadByte(); !ok {
		return Preq{}, false
	}
	if p.Header.PathDiscoveryID, ok = r.ReadUint32(); !ok {
		return Preq{}, false
	}
	if p.Header.OriginatorAddr, ok = r.ReadMAC(); !ok {
		return Preq{}, false
	}
	if p.Header.OriginatorHwmpSeqno, ok = r.ReadUint32(); !ok {
		return Preq{}, false
	}
	if p.Header.Flags.AddrExt() {
		ext, ok := r.ReadMAC()
		if !ok {
			return Preq{}, false
		}
		p.OriginatorExternalAddr = &ext
	}
	if p.Middle.Lifetime, ok = r.ReadUint32(); !ok {
		return Preq{}, false
	}
	if p.Middle.Metric, ok = r.ReadUint32(); !ok {
		return Preq{}, false
	}
	if p.Middle.TargetCount, ok = r.ReadByte(); !ok {
		return Preq{}, false
	}
	if r.BytesRemaining() != int(p.Middle.TargetCount)*preqPerTargetLen {
		return Preq{}, false
	}
	for i := 0; i < int(p.Middle.TargetCount); i++ {
		var t PreqPerTarget
		tf, _ := r.ReadByte()
		t.Flags = PreqPerTargetFlags(tf)
		t.TargetAddr, _ = r.ReadMAC()
		t.TargetHwmpSeqno, _ = r.ReadUint32()
		p.Targets = append(p.Targets, t)
	}
	return p, true
}

// PrepFlags is the flags byte of a PREP element.
// IEEE Std 802.11-2016, 9.4.2.114, Figure 9-481.
type PrepFlags uint8

func (f PrepFlags) AddrExt() bool { return bits.GetBit(uint64(f), 6) }

// Prep is a decoded PREP (path reply) element.
// IEEE Std 802.11-2016, 9.4.2.114, Figure 9-480.
type Prep struct {
	Flags              PrepFlags
	HopCount           uint8
	ElementTTL         uint8
	TargetAddr         MAC
	TargetHwmpSeqno    uint32
	TargetExternalAddr *MAC
	Lifetime           uint32
	Metric             uint32
	OriginatorAddr     MAC
	OriginatorHwmpSeqno uint32
}

// ParsePrep decodes a PREP element body.
func ParsePrep(body []byte) (Prep, bool) {
	r := buffer.NewReader(body)
	var p Prep
	flags, ok := r.ReadByte()
	if !ok {
		return Prep{}, false
	}
	p.Flags = PrepFlags(flags)
	if p.HopCount, ok = r.ReadByte(); !ok {
		return Prep{}, false
	}
	if p.ElementTTL, ok = r.ReadByte(); !ok {
		return Prep{}, false
	}
	if p.TargetAddr, ok = r.ReadMAC(); !ok {
		return Prep{}, false
	}
	if p.TargetHwmpSeqno, ok = r.ReadUint32(); !ok {
		return Prep{}, false
	}
	if p.Flags.AddrExt() {
		ext, ok := r.ReadMAC()
		if !ok {
			return Prep{}, false
		}
		p.TargetExternalAddr = &ext
	}
	if p.Lifetime, ok = r.ReadUint32(); !ok {
		return Prep{}, false
	}
	if p.Metric, ok = r.ReadUint32(); !ok {
		return Prep{}, false
	}
	if p.OriginatorAddr, ok = r.ReadMAC(); !ok {
		return Prep{}, false
	}
	if p.OriginatorHwmpSeqno, ok = r.ReadUint32(); !ok {
		return Prep{}, false
	}
	if r.BytesRemaining() != 0 {
		return Prep{}, false
	}
	return p, true
}

// PerrHeader holds the fixed PERR fields preceding the per-destination
// records. IEEE Std 802.11-2016, 9.4.2.115.
type PerrHeader struct {
	ElementTTL      uint8
	NumDestinations uint8
}

// PerrDestinationFlags is the flags byte of one PERR destination record.
// IEEE Std 802.11-2016, Figure 9-483.
type PerrDestinationFlags uint8

func (f PerrDestinationFlags) AddrExt() bool { return bits.GetBit(uint64(f), 6) }

// PerrDestination is one record of a PERR destination list.
type PerrDestination struct {
	Flags      PerrDestinationFlags
	DestAddr   MAC
	HwmpSeqno  uint32
	ExtAddr    *MAC
	ReasonCode uint16
}

const perrDestFixedLen = 11 // flags + dest addr + HWMP seqno

// Perr is a decoded PERR element header plus its destination list, iterated
// lazily via Destinations.
type Perr struct {
	Header       PerrHeader
	Destinations PerrDestinationReader
}

// ParsePerr decodes the PERR header and positions a destination reader over
// the rest of the body.
func ParsePerr(body []byte) (Perr, bool) {
	if len(body) < 2 {
		return Perr{}, false
	}
	return Perr{
		Header:       PerrHeader{ElementTTL: body[0], NumDestinations: body[1]},
		Destinations: NewPerrDestinationReader(body[2:]),
	}, true
}

// PerrDestinationReader walks the per-destination records of a PERR
// element. Each step peeks the flags byte to learn whether the optional
// external address is present, computes the exact record length, and only
// consumes a record if that many bytes remain. A truncated trailing record
// is never partially consumed: iteration ends and BytesRemaining reports
// the full unconsumed length.
type PerrDestinationReader struct {
	r *buffer.Reader
}

// NewPerrDestinationReader returns a reader over a destination list.
func NewPerrDestinationReader(data []byte) PerrDestinationReader {
	return PerrDestinationReader{r: buffer.NewReader(data)}
}

// BytesRemaining returns the unconsumed byte count.
func (it *PerrDestinationReader) BytesRemaining() int {
	return it.r.BytesRemaining()
}

// Next returns the next destination record, or false at the end of the
// list or when the remaining bytes do not hold a complete record.
func (it *PerrDestinationReader) Next() (PerrDestination, bool) {
	flagByte, ok := it.r.PeekByte()
	if !ok {
		return PerrDestination{}, false
	}
	flags := PerrDestinationFlags(flagByte)
	recordLen := perrDestFixedLen + 2 // + reason code
	if flags.AddrExt() {
		recordLen += 6
	}
	if it.r.BytesRemaining() < recordLen {
		return PerrDestination{}, false
	}
	var d PerrDestination
	fb, _ := it.r.ReadByte()
	d.Flags = PerrDestinationFlags(fb)
	d.DestAddr, _ = it.r.ReadMAC()
	d.HwmpSeqno, _ = it.r.ReadUint32()
	if flags.AddrExt() {
		ext, _ := it.r.ReadMAC()
		d.ExtAddr = &ext
	}
	d.ReasonCode, _ = it.r.ReadUint16()
	return d, true
}
