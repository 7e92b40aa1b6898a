package mac

import (
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// Msdu is one logical payload extracted from a data frame, together with the
// addresses it travels between. Payload aliases the frame buffer.
type Msdu struct {
	Dst     MAC
	Src     MAC
	LLC     LlcHdr
	Payload []byte
}

// DataFrame is a parsed data frame whose MSDUs are extracted lazily via Next.
// A frame truncated mid-record ends iteration early; MSDUs already returned
// stay valid. A short trailing A-MSDU subframe is dropped rather than
// returned partially.
type DataFrame struct {
	Hdr    DataHdr
	reader *buffer.Reader
	amsdu  bool
	done   bool
}

// ParseDataFrame reads the data header of frame and prepares MSDU
// extraction. When bodyPadded is set, the body is aligned to a 4-byte
// boundary from the start of the frame (some drivers deliver frames that
// way). Returns false if the header cannot be parsed.
func ParseDataFrame(frame []byte, bodyPadded bool) (*DataFrame, bool) {
	r := buffer.NewReader(frame)
	hdr, ok := ReadDataHdr(r)
	if !ok {
		return nil, false
	}
	if bodyPadded {
		if pad := padTo4(r.BytesRead()); pad > 0 && !r.Skip(pad) {
			return nil, false
		}
	}
	return &DataFrame{
		Hdr:    hdr,
		reader: r,
		amsdu:  hdr.IsAmsdu(),
		done:   hdr.IsNull(),
	}, true
}

// IsNull reports whether the frame is a NULL-data (keep-alive) frame.
func (f *DataFrame) IsNull() bool {
	return f.Hdr.IsNull()
}

// BytesRemaining returns the unconsumed body length.
func (f *DataFrame) BytesRemaining() int {
	return f.reader.BytesRemaining()
}

// Next extracts the next MSDU. It returns false when the body is exhausted,
// the frame is a NULL frame, or the remaining bytes do not hold a complete
// record.
func (f *DataFrame) Next() (Msdu, bool) {
	if f.done {
		return Msdu{}, false
	}
	if f.amsdu {
		return f.nextSubframe()
	}
	// Non-aggregated: the entire body is a single LLC frame.
	f.done = true
	llc, ok := ReadLlcHdr(f.reader)
	if !ok {
		return Msdu{}, false
	}
	return Msdu{
		Dst:     f.Hdr.DstAddr(),
		Src:     f.Hdr.SrcAddr(),
		LLC:     llc,
		Payload: f.reader.Remaining(),
	}, true
}

func (f *DataFrame) nextSubframe() (Msdu, bool) {
	if f.reader.BytesRemaining() < AmsduSubframeHdrLen {
		f.done = true
		return Msdu{}, false
	}
	da, _ := f.reader.ReadMAC()
	sa, _ := f.reader.ReadMAC()
	msduLen, _ := f.reader.ReadUint16BE()

	sub, ok := f.reader.ReadBytes(int(msduLen))
	if !ok {
		f.done = true
		return Msdu{}, false
	}
	subReader := buffer.NewReader(sub)
	llc, ok := ReadLlcHdr(subReader)
	if !ok {
		f.done = true
		return Msdu{}, false
	}
	msdu := Msdu{Dst: da, Src: sa, LLC: llc, Payload: subReader.Remaining()}

	// Subframes other than the last are padded so the whole subframe, header
	// included, lands on a 4-byte boundary (IEEE Std 802.11-2016, 9.3.2.2.2).
	// Padding that claims more bytes than remain ends the iteration after
	// this item.
	if pad := padTo4(AmsduSubframeHdrLen + int(msduLen)); pad > 0 && f.reader.BytesRemaining() > 0 {
		if !f.reader.Skip(pad) {
			f.done = true
		}
	}
	return msdu, true
}

func padTo4(n int) int {
	return (4 - n%4) % 4
}
