package wifi

import "github.com/muurk/ne101/internal/codec"

// State is the connection state. The concrete types are Idle, Connecting,
// Connected and Failed.
type State interface {
	// Name is a short lower-case label, used in logs and events.
	Name() string
	// Target is the network the state refers to, "" for Idle.
	Target() string
	sealed()
}

type Idle struct{}

type Connecting struct{ SSID string }

type Connected struct{ SSID string }

type Failed struct{ SSID string }

func (Idle) Name() string       { return "idle" }
func (Connecting) Name() string { return "connecting" }
func (Connected) Name() string  { return "connected" }
func (Failed) Name() string     { return "failed" }

func (Idle) Target() string         { return "" }
func (s Connecting) Target() string { return s.SSID }
func (s Connected) Target() string  { return s.SSID }
func (s Failed) Target() string     { return s.SSID }

func (Idle) sealed()       {}
func (Connecting) sealed() {}
func (Connected) sealed()  {}
func (Failed) sealed()     {}

// Status is the per-entry connection status the device page shows.
type Status int

const (
	StatusDisconnected Status = -1
	StatusConnecting   Status = 0
	StatusConnected    Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "not connected"
	}
}

// Network is one scanned network.
type Network struct {
	SSID      string
	RSSI      int
	Encrypted bool
}

// Entry is a Network with its derived status.
type Entry struct {
	Network
	Status Status
}

// SignalLevel buckets RSSI for display.
func (n Network) SignalLevel() int {
	return codec.SignalLevel(n.RSSI)
}

func statusFor(s State, ssid string) Status {
	switch st := s.(type) {
	case Connecting:
		if st.SSID == ssid {
			return StatusConnecting
		}
	case Connected:
		if st.SSID == ssid {
			return StatusConnected
		}
	}
	return StatusDisconnected
}
