// Package station implements the 802.11 client STA: the authentication and
// association lifecycle against one BSS, data-frame admission with
// controlled-port gating, and EAPOL bridging between the air and the SME.
//
// A Client is single-threaded: every operation (command, received frame,
// timer firing) runs to completion before the next is admitted, and buffers
// obtained from the device never outlive the operation that requested them.
package station

import (
	"fmt"
	"log"

	"github.com/wavelayer/mlme/internal/core/domain"
	"github.com/wavelayer/mlme/internal/core/ports"
	"github.com/wavelayer/mlme/internal/sequence"
	"github.com/wavelayer/mlme/internal/telemetry"
	"github.com/wavelayer/mlme/internal/timer"
	"github.com/wavelayer/mlme/internal/wire/buffer"
	"github.com/wavelayer/mlme/internal/wire/ie"
	"github.com/wavelayer/mlme/internal/wire/mac"
)

// MaxEapolFrameLen caps the EAPOL PDU size bridged to the SME. Larger
// payloads are rejected to bound buffering of control traffic.
const MaxEapolFrameLen = 255

// maxEthFrameLen sizes the scratch buffer for re-encapsulated MSDUs.
const maxEthFrameLen = mac.EthHdrLen + 2304

// TimedEvent identifies which wait a scheduled deadline belongs to.
type TimedEvent uint8

const (
	eventAuthTimeout TimedEvent = iota
	eventAssocTimeout
)

type eventID = ports.EventID

// AssocRequest carries the parameters of an associate command. RSNE, HtCap
// and VhtCap are element bodies without the id/length prefix; empty slices
// omit the element.
type AssocRequest struct {
	Capabilities    mac.CapabilityInfo
	ListenInterval  uint16
	SSID            []byte
	Rates           []byte
	RSNE            []byte
	HtCap           []byte
	VhtCap          []byte
	TimeoutBcnCount uint8
}

// Client is a STA running in client mode against a single BSS.
type Client struct {
	device   ports.Device
	timer    *timer.Timer[TimedEvent]
	seq      *sequence.Manager
	bssid    mac.BSSID
	ifaceMAC mac.MAC
	state    state
}

// New returns a Client in the deauthenticated state.
func New(device ports.Device, sched ports.Scheduler, bssid mac.BSSID, ifaceMAC mac.MAC) *Client {
	telemetry.InitMetrics()
	return &Client{
		device:   device,
		timer:    timer.New[TimedEvent](sched),
		seq:      sequence.NewManager(),
		bssid:    bssid,
		ifaceMAC: ifaceMAC,
		state:    deauthenticated{},
	}
}

// StateName returns the current lifecycle state, for diagnostics.
func (c *Client) StateName() string {
	return c.state.name()
}

// Authenticate starts Open System authentication with the BSS. The timeout
// is expressed in beacon intervals.
func (c *Client) Authenticate(timeoutBcnCount uint8) {
	c.state = c.state.authenticate(c, timeoutBcnCount)
}

// Associate sends an association request built from req.
func (c *Client) Associate(req AssocRequest) {
	c.state = c.state.associate(c, req)
}

// Deauthenticate tears the link down with the given reason code.
func (c *Client) Deauthenticate(reason mac.ReasonCode) {
	c.state = c.state.deauthenticate(c, reason)
}

// HandleTimedEvent resolves a scheduler firing. Firings whose wait has been
// superseded by a state transition are ignored.
func (c *Client) HandleTimedEvent(id ports.EventID) {
	event, ok := c.timer.Triggered(id)
	if !ok {
		return
	}
	c.state = c.state.onTimedEvent(c, event)
}

// OnMacFrame dispatches a frame received over the air. Only management
// frames drive the state machine; data frames enter through HandleDataFrame
// because their admission depends on the caller-owned controlled port.
func (c *Client) OnMacFrame(frame []byte, bodyAligned bool) {
	r := buffer.NewReader(frame)
	fcRaw, ok := r.PeekBytes(2)
	if !ok {
		telemetry.FramesDropped.WithLabelValues("truncated").Inc()
		return
	}
	fc := mac.FrameControl(uint16(fcRaw[0]) | uint16(fcRaw[1])<<8)
	switch fc.FrameType() {
	case mac.FrameTypeMgmt:
		telemetry.FramesReceived.WithLabelValues("mgmt").Inc()
		hdr, ok := mac.ReadMgmtHdr(r)
		if !ok {
			telemetry.FramesDropped.WithLabelValues("truncated").Inc()
			return
		}
		// The management header is 24 bytes; a 4-byte aligned body needs no
		// extra padding, so bodyAligned is moot here.
		_ = bodyAligned
		if hdr.Addr3 != c.bssid.MAC() {
			telemetry.FramesDropped.WithLabelValues("other_bss").Inc()
			return
		}
		c.state = c.state.onMgmtFrame(c, hdr, r.Remaining())
	case mac.FrameTypeData:
		telemetry.FramesReceived.WithLabelValues("data").Inc()
	default:
		telemetry.FramesReceived.WithLabelValues("ctrl").Inc()
	}
}

// HandleDataFrame extracts MSDUs from a data frame and admits them:
// NULL-data frames are answered with a keep-alive response, EAPOL MSDUs are
// forwarded to the SME regardless of the controlled port, everything else is
// translated to Ethernet II and delivered only while the port is open.
// The port status is owned by the caller, not by this core.
func (c *Client) HandleDataFrame(frame []byte, hasPadding, isControlledPortOpen bool) {
	df, ok := mac.ParseDataFrame(frame, hasPadding)
	if !ok {
		telemetry.FramesDropped.WithLabelValues("malformed").Inc()
		return
	}
	if df.IsNull() {
		// Keep-alive probes are answered regardless of the port status.
		if err := c.sendKeepAliveRespFrame(); err != nil {
			log.Printf("[STATION] error sending keep alive frame: %v", err)
		}
		return
	}
	for {
		msdu, ok := df.Next()
		if !ok {
			return
		}
		switch {
		case msdu.LLC.ProtocolID == mac.EtherTypeEapol:
			if err := c.sendEapolIndication(msdu.Src, msdu.Dst, msdu.Payload); err != nil {
				log.Printf("[STATION] error sending EAPOL indication: %v", err)
			}
		case isControlledPortOpen:
			if err := c.deliverMsdu(msdu); err != nil {
				log.Printf("[STATION] error delivering MSDU: %v", err)
			}
		default:
			// Expected while 802.1X has not completed.
			telemetry.FramesDropped.WithLabelValues("port_closed").Inc()
		}
	}
}

// deliverMsdu re-encapsulates one MSDU as an Ethernet II frame and hands it
// to the network stack.
func (c *Client) deliverMsdu(msdu mac.Msdu) error {
	var buf [maxEthFrameLen]byte
	w := buffer.NewWriter(buf[:])
	if err := mac.WriteEthFrame(w, msdu.Dst, msdu.Src, msdu.LLC.ProtocolID, msdu.Payload); err != nil {
		return err
	}
	if err := c.device.DeliverEthFrame(w.Bytes()); err != nil {
		return fmt.Errorf("delivering Ethernet II frame: %w", err)
	}
	telemetry.MsdusDelivered.Inc()
	return nil
}

// sendOpenAuthFrame transmits an Open System authentication frame.
func (c *Client) sendOpenAuthFrame() error {
	buf, err := c.device.GetBuffer(mac.MgmtHdrLen + mac.AuthHdrLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)
	hdr := mac.MgmtHdr{
		FrameCtrl: mac.NewFrameControl(mac.FrameTypeMgmt, mac.MgmtSubtypeAuth),
		Addr1:     c.bssid.MAC(),
		Addr2:     c.ifaceMAC,
		Addr3:     c.bssid.MAC(),
		SeqCtrl:   mac.NewSequenceControl(c.seq.NextNonQos()),
	}
	if err := hdr.WriteTo(w); err != nil {
		return err
	}
	auth := mac.AuthHdr{
		Algorithm:  mac.AuthAlgOpenSystem,
		TxnSeqNum:  1,
		StatusCode: mac.StatusSuccess,
	}
	if err := auth.WriteTo(w); err != nil {
		return err
	}
	if err := c.device.SendWlanFrame(w.Bytes(), 0); err != nil {
		return fmt.Errorf("sending open auth frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("auth").Inc()
	return nil
}

// sendAssocReqFrame transmits an association request. The IE lengths are
// computed up front so the buffer is sized exactly.
func (c *Client) sendAssocReqFrame(req AssocRequest) error {
	frameLen := mac.MgmtHdrLen + mac.AssocReqHdrLen
	frameLen += ie.PrefixLen + len(req.SSID)
	frameLen += ie.SupportedRatesLen(req.Rates)
	if len(req.RSNE) > 0 {
		frameLen += ie.PrefixLen + len(req.RSNE)
	}
	if len(req.HtCap) > 0 {
		frameLen += ie.PrefixLen + len(req.HtCap)
	}
	if len(req.VhtCap) > 0 {
		frameLen += ie.PrefixLen + len(req.VhtCap)
	}
	buf, err := c.device.GetBuffer(frameLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)
	hdr := mac.MgmtHdr{
		FrameCtrl: mac.NewFrameControl(mac.FrameTypeMgmt, mac.MgmtSubtypeAssocReq),
		Addr1:     c.bssid.MAC(),
		Addr2:     c.ifaceMAC,
		Addr3:     c.bssid.MAC(),
		SeqCtrl:   mac.NewSequenceControl(c.seq.NextNonQos()),
	}
	if err := hdr.WriteTo(w); err != nil {
		return err
	}
	fixed := mac.AssocReqHdr{
		Capabilities:   req.Capabilities,
		ListenInterval: req.ListenInterval,
	}
	if err := fixed.WriteTo(w); err != nil {
		return err
	}
	if err := ie.WriteSSID(w, req.SSID); err != nil {
		return err
	}
	if err := ie.WriteSupportedRates(w, req.Rates); err != nil {
		return err
	}
	if len(req.RSNE) > 0 {
		if err := ie.Write(w, ie.IDRsne, req.RSNE); err != nil {
			return err
		}
	}
	if len(req.HtCap) > 0 {
		if len(req.HtCap) != ie.HtCapabilitiesLen {
			return fmt.Errorf("HT capabilities must be %d bytes, got %d", ie.HtCapabilitiesLen, len(req.HtCap))
		}
		if err := ie.Write(w, ie.IDHtCapabilities, req.HtCap); err != nil {
			return err
		}
	}
	if len(req.VhtCap) > 0 {
		if len(req.VhtCap) != ie.VhtCapabilitiesLen {
			return fmt.Errorf("VHT capabilities must be %d bytes, got %d", ie.VhtCapabilitiesLen, len(req.VhtCap))
		}
		if err := ie.Write(w, ie.IDVhtCapabilities, req.VhtCap); err != nil {
			return err
		}
	}
	if err := c.device.SendWlanFrame(w.Bytes(), 0); err != nil {
		return fmt.Errorf("sending assoc req frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("assoc_req").Inc()
	return nil
}

// sendKeepAliveRespFrame answers a keep-alive probe with a NULL data frame.
func (c *Client) sendKeepAliveRespFrame() error {
	buf, err := c.device.GetBuffer(mac.FixedDataHdrLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)
	hdr := mac.DataHdr{
		FrameCtrl: mac.NewFrameControl(mac.FrameTypeData, mac.DataSubtypeNull).WithToDS(),
		Addr1:     c.bssid.MAC(),
		Addr2:     c.ifaceMAC,
		Addr3:     c.bssid.MAC(),
		SeqCtrl:   mac.NewSequenceControl(c.seq.NextNonQos()),
	}
	if err := hdr.WriteTo(w); err != nil {
		return err
	}
	if err := c.device.SendWlanFrame(w.Bytes(), 0); err != nil {
		return fmt.Errorf("sending keep alive frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("keep_alive").Inc()
	return nil
}

// sendDeauthFrame notifies the BSS of a local deauthentication.
func (c *Client) sendDeauthFrame(reason mac.ReasonCode) error {
	buf, err := c.device.GetBuffer(mac.MgmtHdrLen + mac.DeauthHdrLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)
	hdr := mac.MgmtHdr{
		FrameCtrl: mac.NewFrameControl(mac.FrameTypeMgmt, mac.MgmtSubtypeDeauth),
		Addr1:     c.bssid.MAC(),
		Addr2:     c.ifaceMAC,
		Addr3:     c.bssid.MAC(),
		SeqCtrl:   mac.NewSequenceControl(c.seq.NextNonQos()),
	}
	if err := hdr.WriteTo(w); err != nil {
		return err
	}
	if err := (mac.DeauthHdr{ReasonCode: reason}).WriteTo(w); err != nil {
		return err
	}
	if err := c.device.SendWlanFrame(w.Bytes(), 0); err != nil {
		return fmt.Errorf("sending deauth frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("deauth").Inc()
	return nil
}

// SendDataFrame transmits payload in a data frame towards the BSS.
func (c *Client) SendDataFrame(src, dst mac.MAC, isProtected, isQos bool, etherType uint16, payload []byte) error {
	frameLen := mac.DataHdrLen(false, isQos, false) + mac.LlcHdrLen + len(payload)
	buf, err := c.device.GetBuffer(frameLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)

	subtype := mac.DataSubtypeData
	var seq uint16
	if isQos {
		subtype = mac.DataSubtypeQosData
		seq = c.seq.NextQos(0)
	} else {
		seq = c.seq.NextNonQos()
	}
	fc := mac.NewFrameControl(mac.FrameTypeData, subtype).WithToDS()
	if isProtected {
		fc = fc.WithProtected()
	}
	hdr := mac.DataHdr{
		FrameCtrl: fc,
		Addr1:     c.bssid.MAC(),
		Addr2:     src,
		Addr3:     dst,
		SeqCtrl:   mac.NewSequenceControl(seq),
	}
	if err := hdr.WriteTo(w); err != nil {
		return err
	}
	if isQos {
		if err := w.AppendUint16(0); err != nil { // QoS control, TID 0
			return err
		}
	}
	if err := mac.WriteLlcHdr(w, etherType); err != nil {
		return err
	}
	if err := w.Append(payload); err != nil {
		return err
	}

	flags := ports.TxFlags(0)
	if etherType == mac.EtherTypeEapol {
		flags = ports.TxFlagFavorReliability
	}
	if err := c.device.SendWlanFrame(w.Bytes(), flags); err != nil {
		return fmt.Errorf("sending data frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("data").Inc()
	return nil
}

// SendPsPollFrame requests delivery of frames the AP buffered for this STA.
func (c *Client) SendPsPollFrame(aid mac.AID) error {
	buf, err := c.device.GetBuffer(mac.PsPollLen)
	if err != nil {
		return fmt.Errorf("getting buffer: %w", err)
	}
	w := buffer.NewWriter(buf)
	poll := mac.PsPoll{AID: aid, BSSID: c.bssid, TA: c.ifaceMAC}
	if err := poll.WriteTo(w); err != nil {
		return err
	}
	if err := c.device.SendWlanFrame(w.Bytes(), 0); err != nil {
		return fmt.Errorf("sending PS-Poll frame: %w", err)
	}
	telemetry.FramesSent.WithLabelValues("ps_poll").Inc()
	return nil
}

// SendEapolFrame transmits an EAPOL PDU in a non-QoS data frame with a
// reliability hint and reports the outcome to the SME exactly once.
func (c *Client) SendEapolFrame(src, dst mac.MAC, isProtected bool, eapolFrame []byte) {
	result := domain.EapolSuccess
	if err := c.SendDataFrame(src, dst, isProtected, false, mac.EtherTypeEapol, eapolFrame); err != nil {
		log.Printf("[STATION] error sending EAPOL frame: %v", err)
		result = domain.EapolTransmissionFailure
	}
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.EapolConfirm{Result: result})
	})
	if err != nil {
		log.Printf("[STATION] error sending EAPOL confirm: %v", err)
	}
}

// sendEapolIndication bridges one received EAPOL PDU to the SME. Payloads
// above MaxEapolFrameLen are rejected.
func (c *Client) sendEapolIndication(src, dst mac.MAC, eapolFrame []byte) error {
	if len(eapolFrame) > MaxEapolFrameLen {
		return fmt.Errorf("EAPOL frame too large: %d", len(eapolFrame))
	}
	data := make([]byte, len(eapolFrame))
	copy(data, eapolFrame)
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.EapolIndication{SrcAddr: src, DstAddr: dst, Data: data})
	})
	if err != nil {
		return err
	}
	telemetry.EapolIndications.Inc()
	return nil
}

// abortJoin sends a deauthentication frame and confirms the teardown.
func (c *Client) abortJoin(reason mac.ReasonCode) {
	if err := c.sendDeauthFrame(reason); err != nil {
		log.Printf("[STATION] error sending deauth frame: %v", err)
	}
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.DeauthenticateConfirm{PeerStaAddress: c.bssid.MAC()})
	})
	if err != nil {
		log.Printf("[STATION] error sending deauthenticate confirm: %v", err)
	}
}

func (c *Client) sendAuthenticateConf(result domain.AuthResult) {
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.AuthenticateConfirm{
			PeerStaAddress: c.bssid.MAC(),
			Result:         result,
		})
	})
	if err != nil {
		log.Printf("[STATION] error sending authenticate confirm: %v", err)
	}
}

func (c *Client) sendAssociateConf(result domain.AssocResult, aid mac.AID) {
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.AssociateConfirm{Result: result, AID: aid})
	})
	if err != nil {
		log.Printf("[STATION] error sending associate confirm: %v", err)
	}
}

func (c *Client) sendDeauthenticateInd(reason mac.ReasonCode, locallyInitiated bool) {
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.DeauthenticateIndication{
			PeerStaAddress:   c.bssid.MAC(),
			ReasonCode:       reason,
			LocallyInitiated: locallyInitiated,
		})
	})
	if err != nil {
		log.Printf("[STATION] error sending deauthenticate indication: %v", err)
	}
}

func (c *Client) sendDisassociateInd(reason mac.ReasonCode) {
	err := c.device.AccessSMESender(func(sender ports.Sender) error {
		return sender.Send(domain.DisassociateIndication{
			PeerStaAddress: c.bssid.MAC(),
			ReasonCode:     reason,
		})
	})
	if err != nil {
		log.Printf("[STATION] error sending disassociate indication: %v", err)
	}
}
