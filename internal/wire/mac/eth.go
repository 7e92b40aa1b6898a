package mac

import (
	"github.com/wavelayer/mlme/internal/wire/buffer"
)

// EthHdrLen is the length of an Ethernet II header.
const EthHdrLen = 14

// WriteEthFrame appends a complete Ethernet II frame: destination, source,
// ethertype (network order) and payload. Fails with
// buffer.ErrBufferTooSmall if the destination cannot hold header plus
// payload.
func WriteEthFrame(w *buffer.Writer, dst, src MAC, etherType uint16, payload []byte) error {
	if err := w.AppendMAC(dst); err != nil {
		return err
	}
	if err := w.AppendMAC(src); err != nil {
		return err
	}
	if err := w.AppendUint16BE(etherType); err != nil {
		return err
	}
	return w.Append(payload)
}
