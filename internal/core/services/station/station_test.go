package station

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavelayer/mlme/internal/core/domain"
	"github.com/wavelayer/mlme/internal/core/ports"
	"github.com/wavelayer/mlme/internal/mock"
	"github.com/wavelayer/mlme/internal/wire/mac"
)

var (
	testBssid    = mac.BSSID{6, 6, 6, 6, 6, 6}
	testIfaceMAC = mac.MAC{7, 7, 7, 7, 7, 7}
)

func makeClient() (*Client, *mock.FakeDevice, *mock.FakeScheduler) {
	dev := mock.NewFakeDevice()
	sched := mock.NewFakeScheduler()
	return New(dev, sched, testBssid, testIfaceMAC), dev, sched
}

func TestSendOpenAuthFrame(t *testing.T) {
	c, dev, _ := makeClient()
	require.NoError(t, c.sendOpenAuthFrame())
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		// Mgmt header:
		0xb0, 0x00, // FC
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		7, 7, 7, 7, 7, 7, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
		// Auth header:
		0, 0, // auth algorithm
		1, 0, // auth txn seq num
		0, 0, // status code
	}, dev.WlanQueue[0].Data)
	assert.Equal(t, ports.TxFlags(0), dev.WlanQueue[0].Flags)
}

func TestSendAssocReqFrame(t *testing.T) {
	c, dev, _ := makeClient()
	htCap := make([]byte, 26)
	for i := range htCap {
		htCap[i] = byte(i)
	}
	vhtCap := make([]byte, 12)
	for i := range vhtCap {
		vhtCap[i] = byte(100 + i)
	}
	err := c.sendAssocReqFrame(AssocRequest{
		Capabilities: mac.CapabilityInfo(0x1234),
		SSID:         []byte{11, 22, 33, 44},
		Rates:        []byte{8, 7, 6, 5, 4, 3, 2, 1, 0},
		RSNE:         []byte{77, 88},
		HtCap:        htCap,
		VhtCap:       vhtCap,
	})
	require.NoError(t, err)
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		// Mgmt header:
		0, 0, // FC
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		7, 7, 7, 7, 7, 7, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
		// Association request header:
		0x34, 0x12, // capability info
		0, 0, // listen interval
		// IEs:
		0, 4, // SSID id and length
		11, 22, 33, 44, // SSID
		1, 8, // supported rates id and length
		8, 7, 6, 5, 4, 3, 2, 1, // supported rates
		50, 1, // extended supported rates id and length
		0, // extended supported rates
		48, 2, // RSNE id and length
		77, 88, // RSNE
		45, 26, // HT capabilities id and length
		0, 1, 2, 3, 4, 5, 6, 7,
		8, 9, 10, 11, 12, 13, 14, 15,
		16, 17, 18, 19, 20, 21, 22, 23,
		24, 25,
		191, 12, // VHT capabilities id and length
		100, 101, 102, 103, 104, 105, 106, 107,
		108, 109, 110, 111,
	}, dev.WlanQueue[0].Data)
}

func TestSendAssocReqFrameRejectsBadCapLengths(t *testing.T) {
	c, dev, _ := makeClient()
	err := c.sendAssocReqFrame(AssocRequest{
		SSID:  []byte("x"),
		Rates: []byte{1},
		HtCap: []byte{1, 2, 3},
	})
	assert.Error(t, err)
	assert.Empty(t, dev.WlanQueue)
}

func TestSendKeepAliveRespFrame(t *testing.T) {
	c, dev, _ := makeClient()
	require.NoError(t, c.sendKeepAliveRespFrame())
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		0x48, 0x01, // FC: NULL data, ToDS
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		7, 7, 7, 7, 7, 7, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
	}, dev.WlanQueue[0].Data)
}

func TestSendDataFrame(t *testing.T) {
	c, dev, _ := makeClient()
	err := c.SendDataFrame(
		mac.MAC{2, 2, 2, 2, 2, 2}, mac.MAC{3, 3, 3, 3, 3, 3},
		false, false, 0x1234, []byte{5, 5, 5, 5, 5, 5, 5, 5})
	require.NoError(t, err)
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		0x08, 0x01, // FC: data, ToDS
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		2, 2, 2, 2, 2, 2, // addr2
		3, 3, 3, 3, 3, 3, // addr3
		0x10, 0, // sequence control
		// LLC header:
		0xaa, 0xaa, 0x03, // DSAP, SSAP, control
		0, 0, 0, // OUI
		0x12, 0x34, // protocol id
		// Payload:
		5, 5, 5, 5, 5, 5, 5, 5,
	}, dev.WlanQueue[0].Data)
}

func TestSendDeauthFrame(t *testing.T) {
	c, dev, _ := makeClient()
	require.NoError(t, c.sendDeauthFrame(mac.ReasonApInitiated))
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		0xc0, 0x00, // FC
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		7, 7, 7, 7, 7, 7, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
		47, 0, // reason code
	}, dev.WlanQueue[0].Data)
}

func TestSendPsPollFrame(t *testing.T) {
	c, dev, _ := makeClient()
	require.NoError(t, c.SendPsPollFrame(0xabcd))
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		0xa4, 0x00, // FC: PS-Poll
		0xcd, 0xeb, // AID with the two topmost bits set
		6, 6, 6, 6, 6, 6, // BSSID
		7, 7, 7, 7, 7, 7, // TA
	}, dev.WlanQueue[0].Data)
}

func TestRespondToKeepAliveRequest(t *testing.T) {
	keepAlive := []byte{
		0x48, 0x02, // FC: NULL data, FromDS
		0, 0, // duration
		7, 7, 7, 7, 7, 7, // addr1
		6, 6, 6, 6, 6, 6, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
	}
	c, dev, _ := makeClient()
	c.HandleDataFrame(keepAlive, false, false)
	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, []byte{
		0x48, 0x01, // FC: NULL data, ToDS
		0, 0,
		6, 6, 6, 6, 6, 6,
		7, 7, 7, 7, 7, 7,
		6, 6, 6, 6, 6, 6,
		0x10, 0,
	}, dev.WlanQueue[0].Data)
}

func makeSingleLlcFrame(etherType uint16, payload []byte) []byte {
	frame := []byte{
		0x08, 0x02, // FC: data, FromDS
		0, 0, // duration
		3, 3, 3, 3, 3, 3, // addr1 = dst
		6, 6, 6, 6, 6, 6, // addr2 = BSSID
		4, 4, 4, 4, 4, 4, // addr3 = src
		0x10, 0, // sequence control
		0xaa, 0xaa, 0x03,
		0, 0, 0,
		byte(etherType >> 8), byte(etherType),
	}
	return append(frame, payload...)
}

// amsduSubframe builds one A-MSDU subframe. padded pads the whole subframe,
// header included, to a 4-byte boundary, as every non-final subframe is on
// the air.
func amsduSubframe(da, sa mac.MAC, etherType uint16, payload []byte, padded bool) []byte {
	llcAndPayload := append([]byte{
		0xaa, 0xaa, 0x03,
		0, 0, 0,
		byte(etherType >> 8), byte(etherType),
	}, payload...)
	sub := append(append(append([]byte{}, da[:]...), sa[:]...),
		byte(len(llcAndPayload)>>8), byte(len(llcAndPayload)))
	sub = append(sub, llcAndPayload...)
	if padded {
		for len(sub)%4 != 0 {
			sub = append(sub, 0)
		}
	}
	return sub
}

func makeAmsduFrame(subframes ...[]byte) []byte {
	frame := []byte{
		0x88, 0x02, // FC: QoS data, FromDS
		0, 0, // duration
		3, 3, 3, 3, 3, 3, // addr1
		6, 6, 6, 6, 6, 6, // addr2
		4, 4, 4, 4, 4, 4, // addr3
		0x10, 0, // sequence control
		0x80, 0x00, // QoS control: A-MSDU present
	}
	for _, s := range subframes {
		frame = append(frame, s...)
	}
	return frame
}

func TestDataFrameToEthernetSingleLlc(t *testing.T) {
	c, dev, _ := makeClient()
	c.HandleDataFrame(makeSingleLlcFrame(0x090a, []byte{11, 11, 11}), false, true)
	require.Len(t, dev.EthQueue, 1)
	assert.Equal(t, []byte{
		3, 3, 3, 3, 3, 3, // dst addr
		4, 4, 4, 4, 4, 4, // src addr
		9, 10, // ethertype
		11, 11, 11, // payload
	}, dev.EthQueue[0])
}

func TestDataFrameToEthernetAmsdu(t *testing.T) {
	da1 := mac.MAC{0x78, 0x8a, 0x20, 0x0d, 0x67, 0x03}
	sa1 := mac.MAC{0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xab}
	da2 := mac.MAC{0x78, 0x8a, 0x20, 0x0d, 0x67, 0x04}
	sa2 := mac.MAC{0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xac}
	p1 := []byte{1, 2, 3, 4, 5}
	p2 := []byte{9, 8, 7}
	frame := makeAmsduFrame(
		amsduSubframe(da1, sa1, 0x0800, p1, true),
		amsduSubframe(da2, sa2, 0x0801, p2, false),
	)

	c, dev, _ := makeClient()
	c.HandleDataFrame(frame, false, true)
	require.Len(t, dev.EthQueue, 2)
	assert.Equal(t, append([]byte{
		0x78, 0x8a, 0x20, 0x0d, 0x67, 0x03,
		0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xab,
		0x08, 0x00,
	}, p1...), dev.EthQueue[0])
	assert.Equal(t, append([]byte{
		0x78, 0x8a, 0x20, 0x0d, 0x67, 0x04,
		0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xac,
		0x08, 0x01,
	}, p2...), dev.EthQueue[1])
}

func TestDataFrameAmsduPaddingTooShort(t *testing.T) {
	da1 := mac.MAC{0x78, 0x8a, 0x20, 0x0d, 0x67, 0x03}
	sa1 := mac.MAC{0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xab}
	p1 := []byte{1, 2, 3, 4, 5, 6, 7}
	// The 29-byte subframe calls for three pad octets but only one byte
	// remains: iteration ends after the first MSDU, which stays delivered.
	frame := makeAmsduFrame(amsduSubframe(da1, sa1, 0x0800, p1, false))
	frame = append(frame, 0x00)

	c, dev, _ := makeClient()
	c.HandleDataFrame(frame, false, true)
	require.Len(t, dev.EthQueue, 1)
	assert.Equal(t, append([]byte{
		0x78, 0x8a, 0x20, 0x0d, 0x67, 0x03,
		0xb4, 0xf7, 0xa1, 0xbe, 0xb9, 0xab,
		0x08, 0x00,
	}, p1...), dev.EthQueue[0])
}

func TestDataFrameControlledPortClosed(t *testing.T) {
	c, dev, _ := makeClient()
	c.HandleDataFrame(makeSingleLlcFrame(0x090a, []byte{11, 11, 11}), false, false)
	assert.Empty(t, dev.EthQueue)
	assert.Empty(t, dev.SMEQueue)
}

func TestEapolFrameBypassesClosedPort(t *testing.T) {
	pdu := []byte{0x01, 0x02, 0x03}
	c, dev, _ := makeClient()
	c.HandleDataFrame(makeSingleLlcFrame(mac.EtherTypeEapol, pdu), false, false)

	assert.Empty(t, dev.EthQueue)
	msg, ok := dev.NextSMEMessage()
	require.True(t, ok)
	ind, ok := msg.(domain.EapolIndication)
	require.True(t, ok)
	assert.Equal(t, mac.MAC{4, 4, 4, 4, 4, 4}, ind.SrcAddr)
	assert.Equal(t, mac.MAC{3, 3, 3, 3, 3, 3}, ind.DstAddr)
	assert.Equal(t, pdu, ind.Data)
}

func TestEapolFrameIndicatedWithPortOpen(t *testing.T) {
	pdu := []byte{0x01, 0x02, 0x03}
	c, dev, _ := makeClient()
	c.HandleDataFrame(makeSingleLlcFrame(mac.EtherTypeEapol, pdu), false, true)

	// EAPOL goes to the SME, never to the network stack.
	assert.Empty(t, dev.EthQueue)
	require.Len(t, dev.SMEQueue, 1)
}

func TestSendEapolIndTooLarge(t *testing.T) {
	c, dev, _ := makeClient()
	err := c.sendEapolIndication(mac.MAC{1, 1, 1, 1, 1, 1}, mac.MAC{2, 2, 2, 2, 2, 2}, make([]byte, 256))
	assert.Error(t, err)
	assert.Empty(t, dev.SMEQueue)
}

func TestSendEapolIndSuccess(t *testing.T) {
	c, dev, _ := makeClient()
	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = 5
	}
	err := c.sendEapolIndication(mac.MAC{1, 1, 1, 1, 1, 1}, mac.MAC{2, 2, 2, 2, 2, 2}, payload)
	require.NoError(t, err)

	msg, ok := dev.NextSMEMessage()
	require.True(t, ok)
	ind, ok := msg.(domain.EapolIndication)
	require.True(t, ok)
	assert.Equal(t, mac.MAC{1, 1, 1, 1, 1, 1}, ind.SrcAddr)
	assert.Equal(t, mac.MAC{2, 2, 2, 2, 2, 2}, ind.DstAddr)
	assert.Equal(t, payload, ind.Data)
}

func TestSendEapolFrameSuccess(t *testing.T) {
	c, dev, _ := makeClient()
	c.SendEapolFrame(testIfaceMAC, testBssid.MAC(), false, []byte{5, 5, 5, 5, 5, 5, 5, 5})

	msg, ok := dev.NextSMEMessage()
	require.True(t, ok)
	assert.Equal(t, domain.EapolConfirm{Result: domain.EapolSuccess}, msg)

	require.Len(t, dev.WlanQueue, 1)
	assert.Equal(t, ports.TxFlagFavorReliability, dev.WlanQueue[0].Flags)
	assert.Equal(t, []byte{
		0x08, 0x01, // FC: data, ToDS
		0, 0, // duration
		6, 6, 6, 6, 6, 6, // addr1
		7, 7, 7, 7, 7, 7, // addr2
		6, 6, 6, 6, 6, 6, // addr3
		0x10, 0, // sequence control
		// LLC header:
		0xaa, 0xaa, 0x03,
		0x00, 0x00, 0x00,
		0x88, 0x8e, // protocol id (EAPOL)
		// EAPOL PDU:
		5, 5, 5, 5, 5, 5, 5, 5,
	}, dev.WlanQueue[0].Data)
}

func TestSendEapolFrameFailure(t *testing.T) {
	c, dev, _ := makeClient()
	dev.SendWlanErr = errors.New("radio unavailable")
	c.SendEapolFrame(mac.MAC{1, 1, 1, 1, 1, 1}, mac.MAC{2, 2, 2, 2, 2, 2}, false, make([]byte, 200))

	msg, ok := dev.NextSMEMessage()
	require.True(t, ok)
	assert.Equal(t, domain.EapolConfirm{Result: domain.EapolTransmissionFailure}, msg)
	assert.Empty(t, dev.WlanQueue)
}

func TestSendEapolFrameBufferExhaustionStillConfirms(t *testing.T) {
	c, dev, _ := makeClient()
	dev.GetBufferErr = errors.New("out of buffers")
	c.SendEapolFrame(mac.MAC{1, 1, 1, 1, 1, 1}, mac.MAC{2, 2, 2, 2, 2, 2}, false, []byte{1})

	msg, ok := dev.NextSMEMessage()
	require.True(t, ok)
	assert.Equal(t, domain.EapolConfirm{Result: domain.EapolTransmissionFailure}, msg)
}
