// Package ie parses and builds 802.11 information elements: the tagged,
// length-prefixed optional records carried in management frames. Decoding is
// structural only; unknown tags round-trip as opaque byte spans.
package ie

import (
	"fmt"

	"github.com/wavelayer/mlme/internal/wire/bits"
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Element IDs, IEEE Std 802.11-2016, 9.4.2.1, Table 9-77.
const (
	IDSSID            uint8 = 0
	IDSupportedRates  uint8 = 1
	IDDsssParamSet    uint8 = 3
	IDTim             uint8 = 5
	IDHtCapabilities  uint8 = 45
	IDRsne            uint8 = 48
	IDExtSuppRates    uint8 = 50
	IDHtOperation     uint8 = 61
	IDMeshPeeringMgmt uint8 = 117
	IDPreq            uint8 = 130
	IDPrep            uint8 = 131
	IDPerr            uint8 = 132
	IDVhtCapabilities uint8 = 191
	IDVhtOperation    uint8 = 192
	IDVendor          uint8 = 221
)

// PrefixLen is the length of the id/length prefix of every element.
const PrefixLen = 2

// MaxBodyLen is the largest body a single element can declare.
const MaxBodyLen = 255

// Element is one raw information element. Body aliases the source buffer.
type Element struct {
	ID   uint8
	Body []byte
}

// Reader iterates the elements of a management frame body. Iteration stops
// at the first element whose declared length exceeds the remaining buffer;
// the malformed element is not consumed.
type Reader struct {
	r *buffer.Reader
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{r: buffer.NewReader(data)}
}

// BytesRemaining returns the unconsumed byte count.
func (it *Reader) BytesRemaining() int {
	return it.r.BytesRemaining()
}

// Next returns the next element, or false when the buffer is exhausted or
// truncated mid-element.
func (it *Reader) Next() (Element, bool) {
	prefix, ok := it.r.PeekBytes(PrefixLen)
	if !ok {
		return Element{}, false
	}
	bodyLen := int(prefix[1])
	if it.r.BytesRemaining() < PrefixLen+bodyLen {
		return Element{}, false
	}
	it.r.Skip(PrefixLen)
	body, _ := it.r.ReadBytes(bodyLen)
	return Element{ID: prefix[0], Body: body}, true
}

// Iterate calls fn for each well-formed element in data, stopping at the
// first malformed one.
func Iterate(data []byte, fn func(id uint8, body []byte)) {
	it := NewReader(data)
	for {
		el, ok := it.Next()
		if !ok {
			return
		}
		fn(el.ID, el.Body)
	}
}

// Find returns the body of the first element with the given id, or nil.
func Find(data []byte, id uint8) []byte {
	var found []byte
	Iterate(data, func(elID uint8, body []byte) {
		if found == nil && elID == id {
			found = body
		}
	})
	return found
}

// Write appends an element with the given id and body. The body must fit the
// one-byte length field.
func Write(w *buffer.Writer, id uint8, body []byte) error {
	if len(body) > MaxBodyLen {
		return fmt.Errorf("element %d body too long: %d bytes", id, len(body))
	}
	if err := w.AppendByte(id); err != nil {
		return err
	}
	if err := w.AppendByte(byte(len(body))); err != nil {
		return err
	}
	return w.Append(body)
}

// WriteSSID appends an SSID element.
func WriteSSID(w *buffer.Writer, ssid []byte) error {
	if len(ssid) > 32 {
		return fmt.Errorf("SSID too long: %d bytes", len(ssid))
	}
	return Write(w, IDSSID, ssid)
}

// maxSuppRates is the capacity of the Supported Rates element; additional
// rates spill into Extended Supported Rates.
const maxSuppRates = 8

// WriteSupportedRates appends the rate set, splitting it across the
// Supported Rates and Extended Supported Rates elements as required.
func WriteSupportedRates(w *buffer.Writer, rates []byte) error {
	if len(rates) == 0 {
		return fmt.Errorf("rate set must not be empty")
	}
	head := rates
	if len(head) > maxSuppRates {
		head = rates[:maxSuppRates]
	}
	if err := Write(w, IDSupportedRates, head); err != nil {
		return err
	}
	if len(rates) > maxSuppRates {
		return Write(w, IDExtSuppRates, rates[maxSuppRates:])
	}
	return nil
}

// SupportedRatesLen returns the total encoded length of the rate set
// including element prefixes, for sizing transmit buffers.
func SupportedRatesLen(rates []byte) int {
	n := PrefixLen + len(rates)
	if len(rates) > maxSuppRates {
		n += PrefixLen
	}
	return n
}

// SupportedRate is a single entry of the rate set.
// IEEE Std 802.11-2016, 9.4.2.3.
type SupportedRate uint8

func (r SupportedRate) Rate() uint8 { return uint8(bits.Get(uint64(r), 0, 6)) }
func (r SupportedRate) Basic() bool { return bits.GetBit(uint64(r), 7) }

// DsssParamSet carries the current channel.
// IEEE Std 802.11-2016, 9.4.2.4.
type DsssParamSet struct {
	CurrentChan uint8
}

// ParseDsssParamSet decodes a DSSS Parameter Set element body.
func ParseDsssParamSet(body []byte) (DsssParamSet, bool) {
	if len(body) != 1 {
		return DsssParamSet{}, false
	}
	return DsssParamSet{CurrentChan: body[0]}, true
}

// BitmapControl is the third byte of a TIM element.
// IEEE Std 802.11-2016, 9.2.4.6.
type BitmapControl uint8

func (b BitmapControl) GroupTraffic() bool { return bits.GetBit(uint64(b), 0) }
func (b BitmapControl) Offset() uint8      { return uint8(bits.Get(uint64(b), 1, 7)) }

// Tim is a decoded Traffic Indication Map element. Bitmap aliases the
// element body and is always at least one byte.
// IEEE Std 802.11-2016, 9.4.2.6.
type Tim struct {
	DtimCount  uint8
	DtimPeriod uint8
	BmpCtrl    BitmapControl
	Bitmap     []byte
}

// ParseTim decodes a TIM element body.
func ParseTim(body []byte) (Tim, bool) {
	if len(body) < 4 {
		return Tim{}, false
	}
	return Tim{
		DtimCount:  body[0],
		DtimPeriod: body[1],
		BmpCtrl:    BitmapControl(body[2]),
		Bitmap:     body[3:],
	}, true
}

// BufferedByAID reports whether the TIM marks traffic for the given AID.
func (t Tim) BufferedByAID(aid uint16) bool {
	octet := int(aid / 8)
	offset := int(t.BmpCtrl.Offset()) * 2
	if octet < offset || octet >= offset+len(t.Bitmap) {
		return false
	}
	return t.Bitmap[octet-offset]&(1<<(aid%8)) != 0
}

// Vendor-specific element classification. Only the Microsoft legacy WPA
// element is recognized; every other vendor element stays opaque.
// IEEE Std 802.11-2016, 9.4.2.26.

var ouiMsft = [3]byte{0x00, 0x50, 0xf2}

const msftTypeLegacyWpa = 1

// VendorIE is a classified vendor-specific element.
type VendorIE struct {
	OUI [3]byte
	// LegacyWpa holds the WPA descriptor body (without the leading type
	// byte) when the element is the Microsoft legacy WPA IE; otherwise nil.
	LegacyWpa []byte
	// Body is the full body after the OUI for unrecognized elements.
	Body []byte
}

// ParseVendor classifies a vendor-specific element body.
func ParseVendor(body []byte) (VendorIE, bool) {
	if len(body) < 3 {
		return VendorIE{}, false
	}
	var v VendorIE
	copy(v.OUI[:], body[:3])
	rest := body[3:]
	if v.OUI == ouiMsft && len(rest) >= 1 && rest[0] == msftTypeLegacyWpa {
		v.LegacyWpa = rest[1:]
		return v, true
	}
	v.Body = rest
	return v, true
}
