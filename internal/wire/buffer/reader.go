// Package buffer provides bounds-checked cursor access over raw frame bytes.
//
// All multi-byte integers are read little-endian, matching IEEE 802.11 field
// encoding. A failed read never consumes bytes: callers can rely on
// BytesRemaining being unchanged after any read that reported !ok.
package buffer

import "encoding/binary"

// MACLen is the length of an IEEE 802 MAC address in bytes.
const MACLen = 6

// Reader walks a byte slice front to back without copying. The zero value is
// an empty reader.
type Reader struct {
	buf    []byte
	offset int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// BytesRemaining returns the number of unconsumed bytes.
func (r *Reader) BytesRemaining() int {
	return len(r.buf) - r.offset
}

// BytesRead returns the number of consumed bytes.
func (r *Reader) BytesRead() int {
	return r.offset
}

// Remaining returns the unconsumed tail of the buffer without advancing.
func (r *Reader) Remaining() []byte {
	return r.buf[r.offset:]
}

// ReadBytes consumes and returns exactly n bytes, or (nil, false) if fewer
// than n remain. The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || r.BytesRemaining() < n {
		return nil, false
	}
	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b, true
}

// PeekBytes returns the next n bytes without advancing the cursor.
func (r *Reader) PeekBytes(n int) ([]byte, bool) {
	if n < 0 || r.BytesRemaining() < n {
		return nil, false
	}
	return r.buf[r.offset : r.offset+n], true
}

// ReadByte consumes a single byte.
func (r *Reader) ReadByte() (byte, bool) {
	if r.BytesRemaining() < 1 {
		return 0, false
	}
	b := r.buf[r.offset]
	r.offset++
	return b, true
}

// PeekByte returns the next byte without advancing the cursor.
func (r *Reader) PeekByte() (byte, bool) {
	if r.BytesRemaining() < 1 {
		return 0, false
	}
	return r.buf[r.offset], true
}

// ReadUint16 consumes a little-endian uint16. No alignment is assumed.
func (r *Reader) ReadUint16() (uint16, bool) {
	b, ok := r.ReadBytes(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

// ReadUint16BE consumes a big-endian uint16. Used only for the ethertype
// carried in LLC/SNAP and Ethernet II headers, which is network byte order.
func (r *Reader) ReadUint16BE() (uint16, bool) {
	b, ok := r.ReadBytes(2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

// ReadUint32 consumes a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, bool) {
	b, ok := r.ReadBytes(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// ReadUint64 consumes a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, bool) {
	b, ok := r.ReadBytes(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// ReadMAC consumes a 6-byte MAC address.
func (r *Reader) ReadMAC() ([MACLen]byte, bool) {
	var mac [MACLen]byte
	b, ok := r.ReadBytes(MACLen)
	if !ok {
		return mac, false
	}
	copy(mac[:], b)
	return mac, true
}

// Skip consumes n bytes and discards them.
func (r *Reader) Skip(n int) bool {
	_, ok := r.ReadBytes(n)
	return ok
}
