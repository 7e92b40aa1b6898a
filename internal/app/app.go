// Package app wires the station core to its adapters. It acts as the facade
// for the whole process: device selection, the diagnostics server and the
// single-threaded MLME event loop all live here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wavelayer/mlme/internal/adapters/radio"
	"github.com/wavelayer/mlme/internal/adapters/web"
	"github.com/wavelayer/mlme/internal/config"
	"github.com/wavelayer/mlme/internal/core/domain"
	"github.com/wavelayer/mlme/internal/core/ports"
	"github.com/wavelayer/mlme/internal/core/services/station"
	"github.com/wavelayer/mlme/internal/mock"
	"github.com/wavelayer/mlme/internal/telemetry"
	"github.com/wavelayer/mlme/internal/timer"
	"github.com/wavelayer/mlme/internal/wire/mac"
)

// joinTimeoutBcnCount bounds each join step to roughly two seconds of
// beacon intervals.
const joinTimeoutBcnCount = 20

// Application holds the core components of the process and runs the MLME
// event loop. All station calls happen on the loop goroutine.
type Application struct {
	Config    *config.Config
	Client    *station.Client
	Device    ports.Device
	WebServer *web.Server

	sched  *timer.SystemScheduler
	frames chan []byte
	sme    chan domain.Message
	radio  *radio.Device
}

// chanSender delivers MLME messages into the event loop.
type chanSender struct {
	ch chan<- domain.Message
}

func (s chanSender) Send(msg domain.Message) error {
	s.ch <- msg
	return nil
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	telemetry.InitMetrics()

	app := &Application{
		Config: cfg,
		sched:  timer.NewSystemScheduler(),
		frames: make(chan []byte, 64),
		sme:    make(chan domain.Message, 64),
	}
	sender := chanSender{ch: app.sme}

	if cfg.MockMode {
		slog.Info("Running in mock mode", "bssid", cfg.BSSID.String())
		ap := &mock.AccessPoint{BSSID: cfg.BSSID, StaAddr: cfg.StaAddr, AID: 1}
		app.Device = mock.NewLoopbackDevice(ap, app.frames, sender)
	} else {
		dev, err := radio.New(cfg.Iface, sender, nil)
		if err != nil {
			return nil, fmt.Errorf("opening radio: %w", err)
		}
		app.radio = dev
		app.Device = dev
	}

	app.Client = station.New(app.Device, app.sched, cfg.BSSID, cfg.StaAddr)
	app.WebServer = web.NewServer(cfg.Addr, app.Client)
	return app, nil
}

// Run starts the adapters and drives the event loop until ctx is canceled.
func (app *Application) Run(ctx context.Context) error {
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			slog.Error("Web server error", "error", err)
		}
	}()

	if app.radio != nil {
		go func() {
			err := app.radio.Run(ctx, func(frame []byte) {
				// The capture layer reuses its packet buffers.
				buf := make([]byte, len(frame))
				copy(buf, frame)
				select {
				case app.frames <- buf:
				case <-ctx.Done():
				}
			})
			if err != nil && ctx.Err() == nil {
				slog.Error("Radio receive loop error", "error", err)
			}
		}()
	}

	slog.Info("Joining BSS", "bssid", app.Config.BSSID.String(), "ssid", app.Config.SSID)
	app.Client.Authenticate(joinTimeoutBcnCount)

	// The controlled port stays closed until the join completes. This build
	// targets open networks, so association success opens it.
	portOpen := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-app.frames:
			app.dispatchFrame(frame, portOpen)
		case id := <-app.sched.C:
			app.Client.HandleTimedEvent(id)
		case msg := <-app.sme:
			portOpen = app.handleSmeMessage(msg, portOpen)
		}
	}
}

func (app *Application) dispatchFrame(frame []byte, portOpen bool) {
	if len(frame) < 2 {
		return
	}
	fc := mac.FrameControl(uint16(frame[0]) | uint16(frame[1])<<8)
	if fc.FrameType() == mac.FrameTypeData {
		app.Client.HandleDataFrame(frame, false, portOpen)
		return
	}
	app.Client.OnMacFrame(frame, false)
}

func (app *Application) handleSmeMessage(msg domain.Message, portOpen bool) bool {
	slog.Info("MLME message", "type", msg.MlmeMessage(), "payload", msg)
	app.WebServer.Hub.BroadcastSmeMessage(msg)

	switch m := msg.(type) {
	case domain.AuthenticateConfirm:
		if m.Result != domain.AuthSuccess {
			slog.Warn("Authentication failed", "result", string(m.Result))
			return portOpen
		}
		app.Client.Associate(station.AssocRequest{
			Capabilities:    0x0001, // ESS
			ListenInterval:  1,
			SSID:            []byte(app.Config.SSID),
			Rates:           []byte{0x82, 0x84, 0x8b, 0x96, 0x0c, 0x12, 0x18, 0x24},
			TimeoutBcnCount: joinTimeoutBcnCount,
		})
	case domain.AssociateConfirm:
		if m.Result != domain.AssocSuccess {
			slog.Warn("Association failed", "result", string(m.Result))
			return portOpen
		}
		slog.Info("Associated", "aid", m.AID)
		return true
	case domain.DeauthenticateIndication, domain.DisassociateIndication:
		return false
	}
	return portOpen
}

// Close stops the scheduler and releases the radio handle, if one was opened.
func (app *Application) Close() {
	app.sched.Close()
	if app.radio != nil {
		app.radio.Close()
	}
}
