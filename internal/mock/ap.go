package mock

import (
	"github.com/wavelayer/mlme/internal/wire/buffer"
	"github.com/wavelayer/mlme/internal/wire/mac"
)

// AccessPoint is a scripted responder for mock mode. It answers the
// station's authentication and association requests the way a permissive
// open AP would, so the full join flow can run without a radio.
type AccessPoint struct {
	BSSID   mac.BSSID
	StaAddr mac.MAC
	AID     mac.AID

	seq uint16
}

// Respond produces the AP's reply to one station frame, or ok=false when
// the frame needs no reply.
func (ap *AccessPoint) Respond(frame []byte) (reply []byte, ok bool) {
	r := buffer.NewReader(frame)
	hdr, parsed := mac.ReadMgmtHdr(r)
	if !parsed || hdr.FrameCtrl.FrameType() != mac.FrameTypeMgmt {
		return nil, false
	}

	switch hdr.FrameCtrl.FrameSubtype() {
	case mac.MgmtSubtypeAuth:
		return ap.authResp(), true
	case mac.MgmtSubtypeAssocReq:
		return ap.assocResp(), true
	}
	return nil, false
}

func (ap *AccessPoint) authResp() []byte {
	buf := make([]byte, mac.MgmtHdrLen+mac.AuthHdrLen)
	w := buffer.NewWriter(buf)
	ap.writeMgmtHdr(w, mac.MgmtSubtypeAuth)
	hdr := mac.AuthHdr{
		Algorithm:  mac.AuthAlgOpenSystem,
		TxnSeqNum:  2,
		StatusCode: mac.StatusSuccess,
	}
	hdr.WriteTo(w)
	return w.Bytes()
}

func (ap *AccessPoint) assocResp() []byte {
	buf := make([]byte, mac.MgmtHdrLen+mac.AssocRespHdrLen)
	w := buffer.NewWriter(buf)
	ap.writeMgmtHdr(w, mac.MgmtSubtypeAssocResp)
	w.AppendUint16(0x0001) // ESS capability
	w.AppendUint16(uint16(mac.StatusSuccess))
	w.AppendUint16(uint16(ap.AID) | 0xc000)
	return w.Bytes()
}

func (ap *AccessPoint) writeMgmtHdr(w *buffer.Writer, subtype uint8) {
	ap.seq++
	hdr := mac.MgmtHdr{
		FrameCtrl: mac.NewFrameControl(mac.FrameTypeMgmt, subtype),
		Addr1:     ap.StaAddr,
		Addr2:     ap.BSSID.MAC(),
		Addr3:     ap.BSSID.MAC(),
		SeqCtrl:   mac.NewSequenceControl(ap.seq),
	}
	hdr.WriteTo(w)
}
