// Package radio implements ports.Device on top of a monitor-mode wireless
// interface. Outbound MAC frames are prepended with a minimal RadioTap
// header and injected through libpcap; inbound packets have their RadioTap
// header stripped before being handed to the station.
package radio

import (
	"context"
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/wavelayer/mlme/internal/core/ports"
)

const (
	snapshotLen = 4096

	// injectionRate is the RadioTap rate field in 500 Kbps units. 5 selects
	// a basic rate every receiver must decode.
	injectionRate = 5
)

// Device is a pcap-backed implementation of ports.Device.
type Device struct {
	handle *pcap.Handle
	iface  string
	sme    ports.Sender
	ethOut func([]byte) error
}

// New opens iface for capture and injection. ethOut receives reconstructed
// Ethernet frames; a nil ethOut drops them with a log line.
func New(iface string, sme ports.Sender, ethOut func([]byte) error) (*Device, error) {
	handle, err := pcap.OpenLive(iface, snapshotLen, false, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", iface, err)
	}
	return &Device{handle: handle, iface: iface, sme: sme, ethOut: ethOut}, nil
}

// GetBuffer returns scratch memory with capacity of at least minCapacity.
func (d *Device) GetBuffer(minCapacity int) ([]byte, error) {
	return make([]byte, minCapacity), nil
}

// SendWlanFrame wraps the MAC frame in RadioTap and injects it.
func (d *Device) SendWlanFrame(frame []byte, flags ports.TxFlags) error {
	pkt, err := wrapRadioTap(frame)
	if err != nil {
		return fmt.Errorf("serializing radiotap frame: %w", err)
	}
	if err := d.handle.WritePacketData(pkt); err != nil {
		return fmt.Errorf("injecting frame on %s: %w", d.iface, err)
	}
	return nil
}

// DeliverEthFrame hands a reconstructed Ethernet II frame to the uplink.
func (d *Device) DeliverEthFrame(frame []byte) error {
	if d.ethOut == nil {
		log.Printf("[RADIO] dropping %d byte ethernet frame: no uplink configured", len(frame))
		return nil
	}
	return d.ethOut(frame)
}

// AccessSMESender grants scoped access to the SME message channel.
func (d *Device) AccessSMESender(fn func(ports.Sender) error) error {
	return fn(d.sme)
}

// Run pumps received MAC frames into onFrame until ctx is done or the
// capture source closes.
func (d *Device) Run(ctx context.Context, onFrame func(frame []byte)) error {
	source := gopacket.NewPacketSource(d.handle, d.handle.LinkType())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case packet, ok := <-source.Packets():
			if !ok {
				return nil
			}
			rt := packet.Layer(layers.LayerTypeRadioTap)
			if rt == nil {
				continue
			}
			onFrame(rt.LayerPayload())
		}
	}
}

// Close releases the pcap handle.
func (d *Device) Close() {
	d.handle.Close()
}

func wrapRadioTap(frame []byte) ([]byte, error) {
	radiotap := &layers.RadioTap{
		Present: layers.RadioTapPresentRate,
		Rate:    injectionRate,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, radiotap, gopacket.Payload(frame)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
