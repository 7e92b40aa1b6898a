package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrBufferTooSmall reports that the destination buffer cannot hold the bytes
// being appended. Nothing is written when this is returned.
var ErrBufferTooSmall = errors.New("destination buffer too small")

// Writer appends fields into a caller-owned byte slice. It never allocates;
// exceeding the slice capacity fails the write and leaves the buffer
// untouched.
type Writer struct {
	buf    []byte
	offset int
}

// NewWriter returns a Writer appending at the start of buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// BytesWritten returns the number of bytes appended so far.
func (w *Writer) BytesWritten() int {
	return w.offset
}

// Bytes returns the written prefix of the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.offset]
}

// Append copies b into the buffer.
func (w *Writer) Append(b []byte) error {
	if len(w.buf)-w.offset < len(b) {
		return ErrBufferTooSmall
	}
	copy(w.buf[w.offset:], b)
	w.offset += len(b)
	return nil
}

// AppendByte writes a single byte.
func (w *Writer) AppendByte(b byte) error {
	if len(w.buf)-w.offset < 1 {
		return ErrBufferTooSmall
	}
	w.buf[w.offset] = b
	w.offset++
	return nil
}

// AppendUint16 writes v little-endian.
func (w *Writer) AppendUint16(v uint16) error {
	if len(w.buf)-w.offset < 2 {
		return ErrBufferTooSmall
	}
	binary.LittleEndian.PutUint16(w.buf[w.offset:], v)
	w.offset += 2
	return nil
}

// AppendUint16BE writes v big-endian. See Reader.ReadUint16BE.
func (w *Writer) AppendUint16BE(v uint16) error {
	if len(w.buf)-w.offset < 2 {
		return ErrBufferTooSmall
	}
	binary.BigEndian.PutUint16(w.buf[w.offset:], v)
	w.offset += 2
	return nil
}

// AppendUint32 writes v little-endian.
func (w *Writer) AppendUint32(v uint32) error {
	if len(w.buf)-w.offset < 4 {
		return ErrBufferTooSmall
	}
	binary.LittleEndian.PutUint32(w.buf[w.offset:], v)
	w.offset += 4
	return nil
}

// AppendUint64 writes v little-endian.
func (w *Writer) AppendUint64(v uint64) error {
	if len(w.buf)-w.offset < 8 {
		return ErrBufferTooSmall
	}
	binary.LittleEndian.PutUint64(w.buf[w.offset:], v)
	w.offset += 8
	return nil
}

// AppendMAC writes a 6-byte MAC address.
func (w *Writer) AppendMAC(mac [MACLen]byte) error {
	return w.Append(mac[:])
}

// AppendZeros writes n zero bytes (padding).
func (w *Writer) AppendZeros(n int) error {
	if len(w.buf)-w.offset < n {
		return ErrBufferTooSmall
	}
	for i := 0; i < n; i++ {
		w.buf[w.offset+i] = 0
	}
	w.offset += n
	return nil
}
