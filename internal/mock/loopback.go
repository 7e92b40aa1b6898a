package mock

import (
	"log"

	"github.com/wavelayer/mlme/internal/core/ports"
)

// LoopbackDevice is a ports.Device that short-circuits the air: frames the
// station transmits are answered by a scripted AccessPoint and the replies
// are fed back through the rx channel.
type LoopbackDevice struct {
	ap  *AccessPoint
	rx  chan<- []byte
	sme ports.Sender
}

func NewLoopbackDevice(ap *AccessPoint, rx chan<- []byte, sme ports.Sender) *LoopbackDevice {
	return &LoopbackDevice{ap: ap, rx: rx, sme: sme}
}

func (d *LoopbackDevice) GetBuffer(minCapacity int) ([]byte, error) {
	return make([]byte, minCapacity), nil
}

func (d *LoopbackDevice) SendWlanFrame(frame []byte, flags ports.TxFlags) error {
	if reply, ok := d.ap.Respond(frame); ok {
		d.rx <- reply
	}
	return nil
}

func (d *LoopbackDevice) DeliverEthFrame(frame []byte) error {
	log.Printf("[MOCK] delivered %d byte ethernet frame", len(frame))
	return nil
}

func (d *LoopbackDevice) AccessSMESender(fn func(ports.Sender) error) error {
	return fn(d.sme)
}
