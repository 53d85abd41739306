package capture

import (
	"fmt"

	"github.com/muurk/ne101/internal/deviceconfig"
)

// TriggerMemory tracks the trigger mode the device should use and the last
// non-zero mode, so a mode hidden by disabling trigger capture comes back
// when it is re-enabled. saved is never 0.
type TriggerMemory struct {
	current int
	saved   int
}

// NewTriggerMemory starts disabled with alarm mode remembered.
func NewTriggerMemory() TriggerMemory {
	return TriggerMemory{current: deviceconfig.TriggerDisabled, saved: deviceconfig.TriggerAlarm}
}

func (m TriggerMemory) Current() int { return m.current }
func (m TriggerMemory) Saved() int   { return m.saved }

// Enabled reports whether a trigger mode is active.
func (m TriggerMemory) Enabled() bool { return m.current != deviceconfig.TriggerDisabled }

func validMode(mode int) bool {
	return mode == deviceconfig.TriggerAlarm || mode == deviceconfig.TriggerPIR
}

// Select is a user mode change while enabled. It takes effect and is
// remembered at once.
func (m *TriggerMemory) Select(mode int) error {
	if !validMode(mode) {
		return deviceconfig.NewFieldError("trigger_mode", fmt.Sprintf("must be %d (alarm) or %d (PIR), got %d",
			deviceconfig.TriggerAlarm, deviceconfig.TriggerPIR, mode))
	}
	m.current = mode
	m.saved = mode
	return nil
}

// Disable remembers the active mode and zeroes it.
func (m *TriggerMemory) Disable() {
	if validMode(m.current) {
		m.saved = m.current
	}
	m.current = deviceconfig.TriggerDisabled
}

// Enable restores the remembered mode if none is active.
func (m *TriggerMemory) Enable() {
	if m.current == deviceconfig.TriggerDisabled {
		m.current = m.saved
	}
}

// Adopt reconciles with a mode read from the device. With trigger capture
// enabled, a non-zero device mode becomes current and saved, and a zero
// device mode restores saved. With it disabled the current mode is 0.
func (m *TriggerMemory) Adopt(deviceMode int, triggerCapture bool) {
	if !triggerCapture {
		m.current = deviceconfig.TriggerDisabled
		return
	}
	if validMode(deviceMode) {
		m.current = deviceMode
		m.saved = deviceMode
		return
	}
	m.current = m.saved
}
