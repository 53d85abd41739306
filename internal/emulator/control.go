package emulator

import (
	"github.com/muurk/ne101/internal/deviceconfig"
)

// FailHTTP makes ep answer with an HTTP error status until cleared.
func (e *Emulator) FailHTTP(ep deviceconfig.Endpoint, status int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[ep] = injected{status: status}
}

// FailResult makes ep answer 200 with a failure result code until cleared.
func (e *Emulator) FailResult(ep deviceconfig.Endpoint, result int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[ep] = injected{result: result}
}

// ClearFailure removes an injected failure.
func (e *Emulator) ClearFailure(ep deviceconfig.Endpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.failures, ep)
}

// Requests returns how many times ep has been served.
func (e *Emulator) Requests(ep deviceconfig.Endpoint) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[ep]
}

// TotalRequests returns how many requests have been served.
func (e *Emulator) TotalRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.log)
}

// RequestLog returns the endpoints served, in order.
func (e *Emulator) RequestLog() []deviceconfig.Endpoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]deviceconfig.Endpoint(nil), e.log...)
}

// ResetLog clears the request counters and log.
func (e *Emulator) ResetLog() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = nil
	e.counts = make(map[deviceconfig.Endpoint]int)
}

// Violations returns how many requests were rejected for overlapping.
func (e *Emulator) Violations() int64 {
	return e.violations.Load()
}

func (e *Emulator) Capture() deviceconfig.CaptureParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.capture.Clone()
}

func (e *Emulator) SetCapture(p deviceconfig.CaptureParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.capture = p.Clone()
}

func (e *Emulator) Trigger() deviceconfig.TriggerParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.trigger
}

func (e *Emulator) SetTrigger(p deviceconfig.TriggerParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.trigger = p
}

func (e *Emulator) Upload() deviceconfig.UploadParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.upload.Clone()
}

func (e *Emulator) Light() deviceconfig.LightParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.light
}

// SetLuminance changes the light sensor reading.
func (e *Emulator) SetLuminance(v int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.light.Value = v
}

func (e *Emulator) Camera() deviceconfig.CameraParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.camera
}

func (e *Emulator) Platform() deviceconfig.PlatformParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.platform
}

func (e *Emulator) SetPlatform(p deviceconfig.PlatformParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.platform = p
}

// SetMQTTConnected changes the broker connection state the device reports.
func (e *Emulator) SetMQTTConnected(connected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.platform.MQTT.IsConnected = deviceconfig.FlagOf(connected)
}

// File returns an uploaded credential by name.
func (e *Emulator) File(name string) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.state.files[name]
	return data, ok
}

func (e *Emulator) Wifi() deviceconfig.WifiParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.wifi
}

func (e *Emulator) SetWifi(p deviceconfig.WifiParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.wifi = p
}

func (e *Emulator) Cellular() deviceconfig.CellularParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.cellular
}

// Commands returns the AT commands received.
func (e *Emulator) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.state.commands...)
}

func (e *Emulator) DeviceInfo() deviceconfig.DeviceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.info
}

func (e *Emulator) SetBattery(b deviceconfig.Battery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.battery = b
}

func (e *Emulator) NTP() deviceconfig.NTPSync {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ntp
}

// Time returns the last time sync the device received.
func (e *Emulator) Time() deviceconfig.DeviceTime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.time
}

// Firmware returns the last firmware image received.
func (e *Emulator) Firmware() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.state.firmware...)
}

// Asleep reports whether the device was told to sleep.
func (e *Emulator) Asleep() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.asleep
}
