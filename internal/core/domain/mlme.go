// Package domain holds the messages exchanged between the station core and
// the SME, the upper-layer policy component that commands the station and
// consumes its indications and confirmations.
package domain

import (
	"github.com/wavelayer/mlme/internal/wire/mac"
)

// AuthResult is the outcome reported by an authenticate confirm.
type AuthResult string

const (
	AuthSuccess        AuthResult = "success"
	AuthRefused        AuthResult = "refused"
	AuthFailureTimeout AuthResult = "failure_timeout"
)

// AssocResult is the outcome reported by an associate confirm.
type AssocResult string

const (
	AssocSuccess                  AssocResult = "success"
	AssocRefusedReasonUnspecified AssocResult = "refused_reason_unspecified"
	AssocRefusedTemporarily       AssocResult = "refused_temporarily"
	AssocFailureTimeout           AssocResult = "failure_timeout"
)

// EapolResult is the outcome reported by an EAPOL confirm.
type EapolResult string

const (
	EapolSuccess             EapolResult = "success"
	EapolTransmissionFailure EapolResult = "transmission_failure"
)

// Message is implemented by every MLME message delivered to the SME.
type Message interface {
	MlmeMessage() string
}

// AuthenticateConfirm reports the outcome of an authenticate command.
type AuthenticateConfirm struct {
	PeerStaAddress mac.MAC    `json:"peer_sta_address"`
	Result         AuthResult `json:"result"`
}

func (AuthenticateConfirm) MlmeMessage() string { return "authenticate_confirm" }

// AssociateConfirm reports the outcome of an associate command. AID is only
// meaningful on success.
type AssociateConfirm struct {
	Result AssocResult `json:"result"`
	AID    mac.AID     `json:"aid"`
}

func (AssociateConfirm) MlmeMessage() string { return "associate_confirm" }

// DeauthenticateConfirm reports completion of a local deauthenticate command.
type DeauthenticateConfirm struct {
	PeerStaAddress mac.MAC `json:"peer_sta_address"`
}

func (DeauthenticateConfirm) MlmeMessage() string { return "deauthenticate_confirm" }

// DeauthenticateIndication reports a deauthentication initiated by the peer
// or by the lower layers.
type DeauthenticateIndication struct {
	PeerStaAddress   mac.MAC        `json:"peer_sta_address"`
	ReasonCode       mac.ReasonCode `json:"reason_code"`
	LocallyInitiated bool           `json:"locally_initiated"`
}

func (DeauthenticateIndication) MlmeMessage() string { return "deauthenticate_indication" }

// DisassociateIndication reports a disassociation received from the peer.
type DisassociateIndication struct {
	PeerStaAddress mac.MAC        `json:"peer_sta_address"`
	ReasonCode     mac.ReasonCode `json:"reason_code"`
}

func (DisassociateIndication) MlmeMessage() string { return "disassociate_indication" }

// EapolIndication carries one received EAPOL PDU upward, bypassing the
// controlled port.
type EapolIndication struct {
	SrcAddr mac.MAC `json:"src_addr"`
	DstAddr mac.MAC `json:"dst_addr"`
	Data    []byte  `json:"data"`
}

func (EapolIndication) MlmeMessage() string { return "eapol_indication" }

// EapolConfirm reports the outcome of one outbound EAPOL transmission.
// Exactly one confirm is produced per send, regardless of outcome.
type EapolConfirm struct {
	Result EapolResult `json:"result"`
}

func (EapolConfirm) MlmeMessage() string { return "eapol_confirm" }
