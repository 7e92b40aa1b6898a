package station

import (
	"log"
	"time"

	"github.com/wavelayer/mlme/internal/core/domain"
	"github.com/wavelayer/mlme/internal/wire/buffer"
	"github.com/wavelayer/mlme/internal/wire/mac"
)

// state is the STA lifecycle sum type. Exactly one state value exists per
// Client at any time; every transition method consumes the current value and
// returns its replacement. Irrelevant inputs return the receiver unchanged.
type state interface {
	name() string
	authenticate(c *Client, timeoutBcnCount uint8) state
	associate(c *Client, req AssocRequest) state
	deauthenticate(c *Client, reason mac.ReasonCode) state
	onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state
	onTimedEvent(c *Client, event TimedEvent) state
}

// beaconPeriod is the nominal beacon interval of 100 time units; timeouts
// expressed in beacon counts are converted against it.
const beaconPeriod = 100 * 1024 * time.Microsecond

// deauthenticated is the initial state: no link to the BSS exists.
type deauthenticated struct{}

func (deauthenticated) name() string { return "deauthenticated" }

func (s deauthenticated) authenticate(c *Client, timeoutBcnCount uint8) state {
	if err := c.sendOpenAuthFrame(); err != nil {
		log.Printf("[STATION] error sending open auth frame: %v", err)
		c.sendAuthenticateConf(domain.AuthRefused)
		return s
	}
	deadline := c.timer.Now().Add(time.Duration(timeoutBcnCount) * beaconPeriod)
	return authenticating{timeout: c.timer.Schedule(eventAuthTimeout, deadline)}
}

func (s deauthenticated) associate(c *Client, req AssocRequest) state {
	log.Printf("[STATION] associate request ignored: not authenticated")
	c.sendAssociateConf(domain.AssocRefusedReasonUnspecified, 0)
	return s
}

func (s deauthenticated) deauthenticate(c *Client, reason mac.ReasonCode) state {
	return s
}

func (s deauthenticated) onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state {
	return s
}

func (s deauthenticated) onTimedEvent(c *Client, event TimedEvent) state {
	return s
}

// authenticating waits for the AP's authentication response.
type authenticating struct {
	timeout eventID
}

func (authenticating) name() string { return "authenticating" }

func (s authenticating) authenticate(c *Client, timeoutBcnCount uint8) state {
	// An attempt is already in flight.
	return s
}

func (s authenticating) associate(c *Client, req AssocRequest) state {
	c.sendAssociateConf(domain.AssocRefusedReasonUnspecified, 0)
	return s
}

func (s authenticating) deauthenticate(c *Client, reason mac.ReasonCode) state {
	c.timer.Cancel(s.timeout)
	c.abortJoin(reason)
	return deauthenticated{}
}

func (s authenticating) onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state {
	switch hdr.FrameCtrl.FrameSubtype() {
	case mac.MgmtSubtypeAuth:
		auth, ok := mac.ReadAuthHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		c.timer.Cancel(s.timeout)
		if auth.Algorithm != mac.AuthAlgOpenSystem || auth.StatusCode != mac.StatusSuccess {
			log.Printf("[STATION] authentication rejected by %s: alg=%d status=%d",
				c.bssid, auth.Algorithm, auth.StatusCode)
			c.sendAuthenticateConf(domain.AuthRefused)
			return deauthenticated{}
		}
		c.sendAuthenticateConf(domain.AuthSuccess)
		return authenticated{}
	case mac.MgmtSubtypeDeauth:
		deauth, ok := mac.ReadDeauthHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		log.Printf("[STATION] deauthenticated by %s while authenticating: reason=%d",
			c.bssid, deauth.ReasonCode)
		c.timer.Cancel(s.timeout)
		c.sendAuthenticateConf(domain.AuthRefused)
		return deauthenticated{}
	}
	return s
}

func (s authenticating) onTimedEvent(c *Client, event TimedEvent) state {
	if event != eventAuthTimeout {
		return s
	}
	log.Printf("[STATION] authentication with %s timed out", c.bssid)
	c.sendAuthenticateConf(domain.AuthFailureTimeout)
	return deauthenticated{}
}

// authenticated holds an authenticated but unassociated link.
type authenticated struct{}

func (authenticated) name() string { return "authenticated" }

func (s authenticated) authenticate(c *Client, timeoutBcnCount uint8) state {
	c.sendAuthenticateConf(domain.AuthSuccess)
	return s
}

func (s authenticated) associate(c *Client, req AssocRequest) state {
	if err := c.sendAssocReqFrame(req); err != nil {
		log.Printf("[STATION] error sending assoc req frame: %v", err)
		c.sendAssociateConf(domain.AssocRefusedReasonUnspecified, 0)
		return s
	}
	deadline := c.timer.Now().Add(time.Duration(req.TimeoutBcnCount) * beaconPeriod)
	return associating{timeout: c.timer.Schedule(eventAssocTimeout, deadline)}
}

func (s authenticated) deauthenticate(c *Client, reason mac.ReasonCode) state {
	c.abortJoin(reason)
	return deauthenticated{}
}

func (s authenticated) onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state {
	if hdr.FrameCtrl.FrameSubtype() == mac.MgmtSubtypeDeauth {
		deauth, ok := mac.ReadDeauthHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		c.sendDeauthenticateInd(deauth.ReasonCode, false)
		return deauthenticated{}
	}
	return s
}

func (s authenticated) onTimedEvent(c *Client, event TimedEvent) state {
	return s
}

// associating waits for the AP's association response.
type associating struct {
	timeout eventID
}

func (associating) name() string { return "associating" }

func (s associating) authenticate(c *Client, timeoutBcnCount uint8) state {
	return s
}

func (s associating) associate(c *Client, req AssocRequest) state {
	// A request is already in flight.
	return s
}

func (s associating) deauthenticate(c *Client, reason mac.ReasonCode) state {
	c.timer.Cancel(s.timeout)
	c.abortJoin(reason)
	return deauthenticated{}
}

func (s associating) onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state {
	switch hdr.FrameCtrl.FrameSubtype() {
	case mac.MgmtSubtypeAssocResp:
		resp, ok := mac.ReadAssocRespHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		c.timer.Cancel(s.timeout)
		if resp.StatusCode != mac.StatusSuccess {
			log.Printf("[STATION] association rejected by %s: status=%d",
				c.bssid, resp.StatusCode)
			result := domain.AssocRefusedReasonUnspecified
			if resp.StatusCode == mac.StatusRefusedTemporarily {
				result = domain.AssocRefusedTemporarily
			}
			c.sendAssociateConf(result, 0)
			return authenticated{}
		}
		c.sendAssociateConf(domain.AssocSuccess, resp.AID)
		return associated{aid: resp.AID}
	case mac.MgmtSubtypeDeauth:
		deauth, ok := mac.ReadDeauthHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		c.timer.Cancel(s.timeout)
		c.sendAssociateConf(domain.AssocRefusedReasonUnspecified, 0)
		c.sendDeauthenticateInd(deauth.ReasonCode, false)
		return deauthenticated{}
	}
	return s
}

func (s associating) onTimedEvent(c *Client, event TimedEvent) state {
	if event != eventAssocTimeout {
		return s
	}
	log.Printf("[STATION] association with %s timed out", c.bssid)
	c.sendAssociateConf(domain.AssocFailureTimeout, 0)
	return authenticated{}
}

// associated holds a live association identified by the AP-assigned AID.
type associated struct {
	aid mac.AID
}

func (associated) name() string { return "associated" }

func (s associated) authenticate(c *Client, timeoutBcnCount uint8) state {
	c.sendAuthenticateConf(domain.AuthSuccess)
	return s
}

func (s associated) associate(c *Client, req AssocRequest) state {
	c.sendAssociateConf(domain.AssocSuccess, s.aid)
	return s
}

func (s associated) deauthenticate(c *Client, reason mac.ReasonCode) state {
	c.abortJoin(reason)
	return deauthenticated{}
}

func (s associated) onMgmtFrame(c *Client, hdr mac.MgmtHdr, body []byte) state {
	switch hdr.FrameCtrl.FrameSubtype() {
	case mac.MgmtSubtypeDeauth:
		deauth, ok := mac.ReadDeauthHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		log.Printf("[STATION] deauthenticated by %s: reason=%d", c.bssid, deauth.ReasonCode)
		c.sendDeauthenticateInd(deauth.ReasonCode, false)
		return deauthenticated{}
	case mac.MgmtSubtypeDisassoc:
		disassoc, ok := mac.ReadDisassocHdr(buffer.NewReader(body))
		if !ok {
			return s
		}
		log.Printf("[STATION] disassociated by %s: reason=%d", c.bssid, disassoc.ReasonCode)
		c.sendDisassociateInd(disassoc.ReasonCode)
		return authenticated{}
	}
	return s
}

func (s associated) onTimedEvent(c *Client, event TimedEvent) state {
	return s
}
