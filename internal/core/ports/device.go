package ports

import (
	"github.com/wavelayer/mlme/internal/core/domain"
)

// TxFlags carries delivery hints for one outbound WLAN frame.
type TxFlags uint32

const (
	// TxFlagFavorReliability asks the lower layer to prefer a robust rate
	// over throughput. Set for EAPOL frames.
	TxFlagFavorReliability TxFlags = 1 << 0
)

// Sender delivers MLME messages to the SME.
type Sender interface {
	Send(msg domain.Message) error
}

// Device is the lower-layer gateway the station core drives. Buffers
// obtained from GetBuffer are owned by the requesting operation and are
// either handed to SendWlanFrame or dropped before that operation returns.
type Device interface {
	// GetBuffer returns scratch memory with capacity of at least minCapacity.
	GetBuffer(minCapacity int) ([]byte, error)

	// SendWlanFrame hands a completed frame to the driver for transmission.
	SendWlanFrame(frame []byte, flags TxFlags) error

	// DeliverEthFrame hands a reconstructed Ethernet II frame to the local
	// network stack.
	DeliverEthFrame(frame []byte) error

	// AccessSMESender grants scoped access to the SME message channel.
	AccessSMESender(fn func(Sender) error) error
}
