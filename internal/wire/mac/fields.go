// Package mac defines the structural layout of IEEE 802.11 management, data
// and control frames: fixed headers, frame-control bit ranges, LLC/SNAP
// encapsulation and MSDU extraction. Byte order and bit numbering follow the
// standard (bit 0 least significant, multi-byte fields little-endian except
// the ethertype, which is network order).
package mac

import (
	"fmt"

	"github.com/wavelayer/mlme/internal/wire/bits"
)

// MAC is a 6-byte IEEE 802 hardware address.
type MAC [6]byte

// BroadcastMAC is the all-ones broadcast address.
var BroadcastMAC = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// BSSID identifies a basic service set. It is constant for the lifetime of an
// association attempt.
type BSSID MAC

func (b BSSID) MAC() MAC { return MAC(b) }

func (b BSSID) String() string { return MAC(b).String() }

// Frame types, IEEE Std 802.11-2016, 9.2.4.1.3.
const (
	FrameTypeMgmt uint8 = 0
	FrameTypeCtrl uint8 = 1
	FrameTypeData uint8 = 2
)

// Management frame subtypes.
const (
	MgmtSubtypeAssocReq   uint8 = 0x00
	MgmtSubtypeAssocResp  uint8 = 0x01
	MgmtSubtypeReassocReq uint8 = 0x02
	MgmtSubtypeProbeReq   uint8 = 0x04
	MgmtSubtypeProbeResp  uint8 = 0x05
	MgmtSubtypeBeacon     uint8 = 0x08
	MgmtSubtypeDisassoc   uint8 = 0x0a
	MgmtSubtypeAuth       uint8 = 0x0b
	MgmtSubtypeDeauth     uint8 = 0x0c
	MgmtSubtypeAction     uint8 = 0x0d
)

// Control frame subtypes (only the one this station sends).
const (
	CtrlSubtypePsPoll uint8 = 0x0a
)

// Data frame subtypes. Bit 2 of the subtype marks NULL variants, bit 3 QoS
// variants.
const (
	DataSubtypeData    uint8 = 0x00
	DataSubtypeNull    uint8 = 0x04
	DataSubtypeQosData uint8 = 0x08
	DataSubtypeQosNull uint8 = 0x0c
	DataSubtypeNullBit uint8 = 0x04
	DataSubtypeQosBit  uint8 = 0x08
)

// EtherTypeEapol is the 802.1X ethertype carried by EAPOL frames.
const EtherTypeEapol uint16 = 0x888e

// FrameControl is the leading 16-bit field of every 802.11 frame.
// IEEE Std 802.11-2016, 9.2.4.1.1.
type FrameControl uint16

const (
	fcProtectedBit = 14
	fcHtcOrderBit  = 15
)

func (fc FrameControl) ProtocolVersion() uint8 { return uint8(bits.Get(uint64(fc), 0, 1)) }
func (fc FrameControl) FrameType() uint8       { return uint8(bits.Get(uint64(fc), 2, 3)) }
func (fc FrameControl) FrameSubtype() uint8    { return uint8(bits.Get(uint64(fc), 4, 7)) }
func (fc FrameControl) ToDS() bool             { return bits.GetBit(uint64(fc), 8) }
func (fc FrameControl) FromDS() bool           { return bits.GetBit(uint64(fc), 9) }
func (fc FrameControl) MoreFragments() bool    { return bits.GetBit(uint64(fc), 10) }
func (fc FrameControl) Retry() bool            { return bits.GetBit(uint64(fc), 11) }
func (fc FrameControl) PowerManagement() bool  { return bits.GetBit(uint64(fc), 12) }
func (fc FrameControl) MoreData() bool         { return bits.GetBit(uint64(fc), 13) }
func (fc FrameControl) Protected() bool        { return bits.GetBit(uint64(fc), fcProtectedBit) }
func (fc FrameControl) HtcOrder() bool         { return bits.GetBit(uint64(fc), fcHtcOrderBit) }

// NewFrameControl builds a frame-control field for the given type and subtype
// with all flags cleared.
func NewFrameControl(frameType, subtype uint8) FrameControl {
	return FrameControl(uint16(frameType)<<2 | uint16(subtype)<<4)
}

// WithToDS returns fc with the To DS flag set.
func (fc FrameControl) WithToDS() FrameControl { return fc | 1<<8 }

// WithFromDS returns fc with the From DS flag set.
func (fc FrameControl) WithFromDS() FrameControl { return fc | 1<<9 }

// WithProtected returns fc with the Protected Frame flag set.
func (fc FrameControl) WithProtected() FrameControl { return fc | 1<<fcProtectedBit }

// SequenceControl packs the fragment and sequence numbers.
// IEEE Std 802.11-2016, 9.2.4.4.
type SequenceControl uint16

func (sc SequenceControl) FragmentNumber() uint8 { return uint8(bits.Get(uint64(sc), 0, 3)) }
func (sc SequenceControl) SequenceNumber() uint16 {
	return uint16(bits.Get(uint64(sc), 4, 15))
}

// NewSequenceControl builds a sequence-control field with fragment number 0.
func NewSequenceControl(seqNum uint16) SequenceControl {
	return SequenceControl(seqNum << 4)
}

// CapabilityInfo is the 16-bit capability field in association and beacon
// frames. IEEE Std 802.11-2016, 9.4.1.4.
type CapabilityInfo uint16

func (c CapabilityInfo) ESS() bool       { return bits.GetBit(uint64(c), 0) }
func (c CapabilityInfo) IBSS() bool      { return bits.GetBit(uint64(c), 1) }
func (c CapabilityInfo) Privacy() bool   { return bits.GetBit(uint64(c), 4) }
func (c CapabilityInfo) ShortSlot() bool { return bits.GetBit(uint64(c), 10) }
func (c CapabilityInfo) RadioMeas() bool { return bits.GetBit(uint64(c), 12) }

// QoSControl carries per-frame QoS state, including the A-MSDU present flag.
// IEEE Std 802.11-2016, 9.2.4.5.
type QoSControl uint16

func (q QoSControl) TID() uint8         { return uint8(bits.Get(uint64(q), 0, 3)) }
func (q QoSControl) AmsduPresent() bool { return bits.GetBit(uint64(q), 7) }

// ReasonCode explains deauthentication and disassociation.
// IEEE Std 802.11-2016, 9.4.1.7, Table 9-45.
type ReasonCode uint16

const (
	ReasonUnspecified            ReasonCode = 1
	ReasonInvalidAuth            ReasonCode = 2
	ReasonLeavingNetworkDeauth   ReasonCode = 3
	ReasonInactivity             ReasonCode = 4
	ReasonNoMoreStas             ReasonCode = 5
	ReasonLeavingNetworkDisassoc ReasonCode = 8
	ReasonApInitiated            ReasonCode = 47
)

// StatusCode reports the outcome of authentication and association.
// IEEE Std 802.11-2016, 9.4.1.9, Table 9-46.
type StatusCode uint16

const (
	StatusSuccess                 StatusCode = 0
	StatusRefusedUnspecified      StatusCode = 1
	StatusRefusedCapabilities     StatusCode = 10
	StatusDeniedNoAssoc           StatusCode = 12
	StatusUnsupportedAuthAlg      StatusCode = 13
	StatusTransactionSeqError     StatusCode = 14
	StatusRejectedSequenceTimeout StatusCode = 16
	StatusRefusedTemporarily      StatusCode = 30
)

// AuthAlgorithm identifies the authentication algorithm in use.
// IEEE Std 802.11-2016, 9.4.1.1.
type AuthAlgorithm uint16

const (
	AuthAlgOpenSystem AuthAlgorithm = 0
	AuthAlgSharedKey  AuthAlgorithm = 1
	AuthAlgFastBss    AuthAlgorithm = 2
	AuthAlgSae        AuthAlgorithm = 3
)

// AID is an association identifier assigned by the AP.
type AID uint16
