package wifi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// ErrUnknownNetwork is returned when connecting to an SSID that is not in
// the scanned list.
var ErrUnknownNetwork = errors.New("network not in scan list")

// Machine is the Wi-Fi connection state machine.
type Machine struct {
	gw    deviceconfig.Gateway
	ports notify.Ports
	bus   events.Publisher

	mu       sync.Mutex
	networks []Network
	state    State
	attempt  uint64

	refreshing     atomic.Bool
	changingRegion atomic.Bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithPublisher announces state transitions on bus.
func WithPublisher(bus events.Publisher) Option {
	return func(m *Machine) { m.bus = bus }
}

// NewMachine creates an Idle machine with an empty network list.
func NewMachine(gw deviceconfig.Gateway, ports notify.Ports, opts ...Option) *Machine {
	m := &Machine{gw: gw, ports: ports.WithDefaults(), state: Idle{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Entries returns the scanned networks with their statuses.
func (m *Machine) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, len(m.networks))
	for i, n := range m.networks {
		entries[i] = Entry{Network: n, Status: statusFor(m.state, n.SSID)}
	}
	return entries
}

// Refreshing reports whether a list refresh is outstanding.
func (m *Machine) Refreshing() bool {
	return m.refreshing.Load()
}

func (m *Machine) lookup(ssid string) (Network, bool) {
	for _, n := range m.networks {
		if n.SSID == ssid {
			return n, true
		}
	}
	return Network{}, false
}

// setLocked moves to next and reports the transition. m.mu must be held.
func (m *Machine) setLocked(next State) {
	prev := m.state
	m.state = next
	if prev == next {
		return
	}
	logging.LogTransition("wifi", prev.Name(), next.Name(), zap.String("ssid", next.Target()))
	events.Publish(m.bus, events.TopicWifi, events.WifiStateChanged{
		SSID: next.Target(),
		From: prev.Name(),
		To:   next.Name(),
	})
}

// Refresh fetches the network list, then the last-known connection, and
// marks the matching entry. Without a match the machine is left Idle. A
// call made while another refresh is outstanding does nothing.
func (m *Machine) Refresh(ctx context.Context) error {
	if !m.refreshing.CompareAndSwap(false, true) {
		logging.Debug("Wi-Fi refresh already in progress")
		return nil
	}
	defer m.refreshing.Store(false)

	m.mu.Lock()
	m.networks = nil
	m.setLocked(Idle{})
	m.mu.Unlock()

	var list deviceconfig.WifiList
	if err := m.gw.Read(ctx, deviceconfig.GetWifiList, &list); err != nil {
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return fmt.Errorf("read wifi list: %w", err)
	}

	networks := make([]Network, 0, len(list.Nodes))
	for _, node := range list.Nodes {
		networks = append(networks, Network{
			SSID:      node.SSID,
			RSSI:      node.RSSI,
			Encrypted: node.Authenticate.Bool(),
		})
	}
	m.mu.Lock()
	m.networks = networks
	m.mu.Unlock()

	var last deviceconfig.WifiParams
	if err := m.gw.Read(ctx, deviceconfig.GetWifiParam, &last); err != nil {
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return fmt.Errorf("read wifi params: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(last.SSID); !ok {
		return nil
	}
	if last.IsConnected.Bool() {
		m.setLocked(Connected{SSID: last.SSID})
	} else {
		m.setLocked(Failed{SSID: last.SSID})
	}
	return nil
}

// Connect selects ssid. Selecting the network that is already connected
// does nothing. Encrypted networks prompt for a password first; an empty
// password re-prompts with the error flag set, and a dismissed prompt
// abandons the attempt with notify.ErrDismissed.
//
// A failed attempt on an encrypted network re-prompts and tries again
// until it connects or the prompt is dismissed. A failed attempt on an
// open network shows a tip. Transport errors count as a failed attempt.
// The returned State is the state after the last attempt.
func (m *Machine) Connect(ctx context.Context, ssid string) (State, error) {
	m.mu.Lock()
	network, ok := m.lookup(ssid)
	current := m.state
	m.mu.Unlock()

	if !ok {
		return current, fmt.Errorf("%w: %q", ErrUnknownNetwork, ssid)
	}
	if c, ok := current.(Connected); ok && c.SSID == ssid {
		return current, nil
	}

	if !network.Encrypted {
		next := m.submit(ctx, network, "")
		if _, failed := next.(Failed); failed {
			m.tip(ctx, fmt.Sprintf("Failed to connect to %s. Check the network and try again.", ssid))
		}
		return next, nil
	}

	showError := false
	for {
		password, err := m.prompt(ctx, ssid, showError)
		if err != nil {
			return m.State(), err
		}
		next := m.submit(ctx, network, password)
		if _, failed := next.(Failed); !failed || next.Target() != ssid {
			return next, nil
		}
		showError = true
	}
}

// prompt asks for a password until a non-empty one is entered.
func (m *Machine) prompt(ctx context.Context, ssid string, showError bool) (string, error) {
	if m.ports.Dialog == nil {
		return "", errors.New("no dialog available to prompt for a password")
	}
	for {
		password, err := m.ports.Dialog.PromptPassword(ctx, notify.PasswordPrompt{SSID: ssid, ShowError: showError})
		if err != nil {
			return "", err
		}
		if password != "" {
			return password, nil
		}
		showError = true
	}
}

// submit resets the previous entry, marks network connecting and sends the
// connection request. If another attempt starts before this one resolves,
// the result is dropped and the newer state is returned.
func (m *Machine) submit(ctx context.Context, network Network, password string) State {
	m.mu.Lock()
	m.attempt++
	attempt := m.attempt
	m.setLocked(Connecting{SSID: network.SSID})
	m.mu.Unlock()

	ack, err := m.gw.Write(ctx, deviceconfig.SetWifiParam, deviceconfig.WifiConnect{
		SSID:     network.SSID,
		Password: password,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != attempt {
		logging.Debug("Wi-Fi attempt superseded", zap.String("ssid", network.SSID))
		return m.state
	}

	switch {
	case err != nil:
		logging.Warn("Wi-Fi connect request failed", zap.String("ssid", network.SSID), zap.Error(err))
		m.setLocked(Failed{SSID: network.SSID})
	case ack.Result == deviceconfig.ResultWifiConnected:
		m.setLocked(Connected{SSID: network.SSID})
	case ack.Result == deviceconfig.ResultWifiDisconnected:
		m.setLocked(Failed{SSID: network.SSID})
	default:
		logging.Warn("Unexpected Wi-Fi result", zap.String("ssid", network.SSID), zap.Int("result", ack.Result))
		m.setLocked(Failed{SSID: network.SSID})
	}
	return m.state
}

func (m *Machine) tip(ctx context.Context, msg string) {
	if m.ports.Dialog == nil {
		m.ports.Notifier.Notify(notify.Error, msg)
		return
	}
	if _, err := m.ports.Dialog.ShowTip(ctx, notify.Tip{Message: msg}); err != nil {
		logging.Debug("Tip dialog failed", zap.Error(err))
	}
}

// ChangeRegion sets the Wi-Fi country code and refreshes the list once the
// device accepts it. The code must be one the firmware variant allows. A
// call made while another change is outstanding does nothing.
func (m *Machine) ChangeRegion(ctx context.Context, info *deviceconfig.DeviceInfo, code string) error {
	if err := deviceconfig.ValidateRegion(info, code); err != nil {
		return err
	}
	if !m.changingRegion.CompareAndSwap(false, true) {
		logging.Debug("Region change already in progress")
		return nil
	}
	defer m.changingRegion.Store(false)

	ack, err := m.gw.Write(ctx, deviceconfig.SetDevInfo, deviceconfig.CountryCode{CountryCode: code})
	if err != nil {
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return fmt.Errorf("set region: %w", err)
	}
	if !ack.OK() {
		err := deviceconfig.NewResultError(deviceconfig.SetDevInfo, ack.Result)
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return err
	}

	info.CountryCode = code
	logging.Info("Wi-Fi region changed", zap.String("region", code))
	return m.Refresh(ctx)
}
