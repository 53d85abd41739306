package deviceconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is the firmware's 0/1 boolean. Responses from older firmware carry
// JSON booleans instead, so both forms are accepted on decode.
type Flag int

// FlagOf converts a bool to a Flag.
func FlagOf(b bool) Flag {
	if b {
		return 1
	}
	return 0
}

// Bool reports whether the flag is set.
func (f Flag) Bool() bool { return f != 0 }

// UnmarshalJSON accepts 0, 1, true and false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*f = 1
		return nil
	case "false", "null":
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	*f = FlagOf(n != 0)
	return nil
}

// Ack is the acknowledgement every write endpoint answers with.
type Ack struct {
	Result  int    `json:"result"`
	Message string `json:"message,omitempty"` // Populated by sendCellularCommand
}

// OK reports whether the device accepted the write.
func (a *Ack) OK() bool { return a != nil && a.Result == ResultOK }

// TimedNode is one entry of a capture or upload schedule.
type TimedNode struct {
	Day  int    `json:"day"`  // 0 Sunday .. 6 Saturday, 7 every day
	Time string `json:"time"` // "HH:MM:SS"
}

// EveryDay is the TimedNode day value for a daily schedule entry.
const EveryDay = 7

// DayName returns a short label for a TimedNode day.
func DayName(day int) string {
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Daily"}
	if day < 0 || day >= len(names) {
		return strconv.Itoa(day)
	}
	return names[day]
}

// Capture schedule modes
const (
	CaptureTimed    = 0
	CaptureInterval = 1
)

// Interval units
const (
	UnitMinute = 0
	UnitHour   = 1
	UnitDay    = 2
)

// DefaultCamWarmupMs is used when the device omits camWarmupMs.
const DefaultCamWarmupMs = 5000

// CaptureParams is the capture/getCapParam parameter group.
type CaptureParams struct {
	ScheduledCapture Flag        `json:"bScheCap"`
	ScheduleMode     int         `json:"scheCapMode"` // CaptureTimed or CaptureInterval
	TimedNodes       []TimedNode `json:"timedNodes"`
	TimedCount       int         `json:"timedCount"`
	IntervalValue    int         `json:"intervalValue"` // 1-999
	IntervalUnit     int         `json:"intervalUnit"`  // UnitMinute, UnitHour or UnitDay
	AlarmInCapture   Flag        `json:"bAlarmInCap"`   // Trigger capture enabled
	ButtonCapture    Flag        `json:"bButtonCap"`
	CamWarmupMs      int         `json:"camWarmupMs"`
}

// Clone returns a deep copy of p.
func (p CaptureParams) Clone() CaptureParams {
	p.TimedNodes = append([]TimedNode(nil), p.TimedNodes...)
	return p
}

// Trigger modes
const (
	TriggerDisabled = 0
	TriggerAlarm    = 1
	TriggerPIR      = 2
)

// Register defaults applied when the device omits a trigger field.
const (
	DefaultTriggerSens   = 15
	DefaultTriggerBlind  = 3
	DefaultTriggerPulse  = 1
	DefaultTriggerWindow = 0
)

// TriggerParams is the capture/getTriggerParam parameter group. PIR fields
// hold register values; see package codec for the display conversions.
type TriggerParams struct {
	Mode        int `json:"trigger_mode"`
	Sensitivity int `json:"sens"`
	Blind       int `json:"blind"`
	Pulse       int `json:"pulse"`
	Window      int `json:"window"`
}

// UnmarshalJSON fills in register defaults for missing fields. A field the
// device reports as 0 stays 0.
func (p *TriggerParams) UnmarshalJSON(data []byte) error {
	var raw struct {
		Mode   *int `json:"trigger_mode"`
		Sens   *int `json:"sens"`
		Blind  *int `json:"blind"`
		Pulse  *int `json:"pulse"`
		Window *int `json:"window"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pick := func(v *int, def int) int {
		if v == nil {
			return def
		}
		return *v
	}
	*p = TriggerParams{
		Mode:        pick(raw.Mode, TriggerDisabled),
		Sensitivity: pick(raw.Sens, DefaultTriggerSens),
		Blind:       pick(raw.Blind, DefaultTriggerBlind),
		Pulse:       pick(raw.Pulse, DefaultTriggerPulse),
		Window:      pick(raw.Window, DefaultTriggerWindow),
	}
	return nil
}

// Upload modes
const (
	UploadImmediate = 0
	UploadScheduled = 1
)

// UploadParams is the capture/getUploadParam parameter group.
type UploadParams struct {
	Mode       int         `json:"uploadMode"`
	TimedNodes []TimedNode `json:"timedNodes"`
	TimedCount int         `json:"timedCount"`
	RetryCount int         `json:"retryCount"` // Stored for the firmware, never acted on here
}

// Clone returns a deep copy of p.
func (p UploadParams) Clone() UploadParams {
	p.TimedNodes = append([]TimedNode(nil), p.TimedNodes...)
	return p
}

// Fill light modes
const (
	LightAuto   = 0
	LightCustom = 1
	LightOn     = 2
	LightOff    = 3
)

// LightParams is the image/getLightParam parameter group.
type LightParams struct {
	Mode      int    `json:"lightMode"`
	Value     int    `json:"value,omitempty"` // Current luminance reading, read-only
	Threshold int    `json:"threshold"`
	Duty      int    `json:"duty"`      // Fill light brightness percent
	StartTime string `json:"startTime"` // "HH:MM"
	EndTime   string `json:"endTime"`   // "HH:MM"
}

// CameraParams is the image/getCamParam parameter group.
type CameraParams struct {
	Brightness     int  `json:"brightness"`
	Contrast       int  `json:"contrast"`
	Saturation     int  `json:"saturation"`
	AELevel        int  `json:"aeLevel"`
	AGC            Flag `json:"bAgc"`
	GainCeiling    int  `json:"gainCeiling"`
	Gain           int  `json:"gain"`
	FlipHorizontal Flag `json:"bHorizonetal"` // Spelling matches the firmware
	FlipVertical   Flag `json:"bVertical"`
	FrameSize      int  `json:"frameSize"`
	Quality        int  `json:"quality"` // 0-63, lower is better
	HDR            Flag `json:"hdrEnable"`
}

// PlatformMQTT is the only data-report platform type this client configures.
const PlatformMQTT = 1

// MQTTPlatform holds the MQTT broker settings.
type MQTTPlatform struct {
	Host        string `json:"host"`
	Port        int    `json:"mqttPort"`
	Topic       string `json:"topic"`
	ClientID    string `json:"clientId"`
	QoS         int    `json:"qos"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsConnected Flag   `json:"isConnected"`
	TLSEnable   Flag   `json:"tlsEnable"`
	SSL         *Flag  `json:"ssl,omitempty"` // Firmware name for TLSEnable
	CAName      string `json:"caName"`
	CertName    string `json:"certName"`
	KeyName     string `json:"keyName"`
}

// PlatformParams is the network/getPlatformParam parameter group.
type PlatformParams struct {
	CurrentPlatformType int          `json:"currentPlatformType"`
	MQTT                MQTTPlatform `json:"mqttPlatform"`
}

// Normalize folds the firmware's ssl field into TLSEnable after a read.
func (p *PlatformParams) Normalize() {
	if p.MQTT.SSL != nil {
		p.MQTT.TLSEnable = *p.MQTT.SSL
		p.MQTT.SSL = nil
	}
}

// Submission returns the payload for network/setPlatformParam.
func (p PlatformParams) Submission() PlatformParams {
	ssl := p.MQTT.TLSEnable
	p.CurrentPlatformType = PlatformMQTT
	p.MQTT.SSL = &ssl
	return p
}

// WifiNode is one entry of the scanned network list.
type WifiNode struct {
	SSID         string `json:"ssid"`
	RSSI         int    `json:"rssi"`
	Authenticate Flag   `json:"bAuthenticate"` // Network requires a password
}

// WifiList is the network/getWifiList response.
type WifiList struct {
	Count int        `json:"count"`
	Nodes []WifiNode `json:"nodes"`
}

// WifiParams is the last-known station connection.
type WifiParams struct {
	SSID        string `json:"ssid"`
	Password    string `json:"password,omitempty"`
	IsConnected Flag   `json:"isConnected"`
}

// WifiConnect is the network/setWifiParam request.
type WifiConnect struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Cellular authentication types
const (
	CellAuthNone = iota
	CellAuthPAP
	CellAuthCHAP
	CellAuthPAPOrCHAP
)

// CellularParams is the network/getCellularParam parameter group.
type CellularParams struct {
	APN            string `json:"apn"`
	User           string `json:"user"`
	Password       string `json:"password"`
	PIN            string `json:"pin"`
	Authentication int    `json:"authentication"`
}

// CellularStatus is the network/getCellularStatus response.
type CellularStatus struct {
	NetworkStatus  string `json:"networkStatus"`
	ModemStatus    string `json:"modemStatus"`
	Model          string `json:"model"`
	Version        string `json:"version"`
	SignalLevel    string `json:"signalLevel"`
	RegisterStatus string `json:"registerStatus"`
	IMEI           string `json:"imei"`
	IMSI           string `json:"imsi"`
	ICCID          string `json:"iccid"`
	ISP            string `json:"isp"`
	NetworkType    string `json:"networkType"`
	PLMNID         string `json:"plmnId"`
	LAC            string `json:"lac"`
	CellID         string `json:"cellId"`
	IPv4Address    string `json:"ipv4Address"`
	IPv4Gateway    string `json:"ipv4Gateway"`
	IPv4DNS        string `json:"ipv4Dns"`
	IPv6Address    string `json:"ipv6Address"`
	IPv6Gateway    string `json:"ipv6Gateway"`
	IPv6DNS        string `json:"ipv6Dns"`
}

// CellularCommand is the network/sendCellularCommand request.
type CellularCommand struct {
	Command string `json:"command"`
}

// NetModCellular is the netmod value of cat-1 cellular units.
const NetModCellular = "cat1"

// DeviceInfo is the system/getDevInfo parameter group. Writes send only the
// fields that are set.
type DeviceInfo struct {
	NetMod      string `json:"netmod,omitempty"`
	Name        string `json:"name,omitempty"`
	MAC         string `json:"mac,omitempty"`
	SN          string `json:"sn,omitempty"`
	HardVersion string `json:"hardVersion,omitempty"`
	SoftVersion string `json:"softVersion,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Camera      string `json:"camera,omitempty"` // "CSI" or "USB"
}

// IsCellular reports whether the unit uses a cellular modem instead of Wi-Fi.
func (d *DeviceInfo) IsCellular() bool {
	return d.NetMod == NetModCellular
}

// NameUpdate returns the system/setDevInfo payload for a rename.
func (d *DeviceInfo) NameUpdate(name string) DeviceInfo {
	return DeviceInfo{
		Name:        name,
		MAC:         d.MAC,
		SN:          d.SN,
		HardVersion: d.HardVersion,
		SoftVersion: d.SoftVersion,
	}
}

// Firmware variants, encoded in the second field of softVersion.
const (
	VariantFCC = 1
	VariantCE  = 2
)

// Variant returns the regulatory variant of the firmware, or 0 if the
// version string does not carry one.
func (d *DeviceInfo) Variant() int {
	parts := strings.Split(d.SoftVersion, ".")
	if len(parts) < 2 {
		return 0
	}
	v, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return v
}

// Regions lists the Wi-Fi country codes the firmware variant allows.
func (d *DeviceInfo) Regions() []string {
	switch d.Variant() {
	case VariantFCC:
		return []string{"AU", "KR", "NZ", "SG", "US"}
	case VariantCE:
		return []string{"EU", "IN"}
	default:
		return nil
	}
}

// Battery is the system/getDevBattery response.
type Battery struct {
	FreePercent int  `json:"freePercent"`
	HasBattery  Flag `json:"bBattery"`
}

// String renders the battery state the way the device page does.
func (b Battery) String() string {
	if !b.HasBattery.Bool() {
		return "Type-C powered"
	}
	return fmt.Sprintf("%d%%", b.FreePercent)
}

// NTPSync is the system/getDevNtpSync parameter group.
type NTPSync struct {
	Enable Flag `json:"enable"`
}

// DeviceTime is the system/setDevTime request.
type DeviceTime struct {
	TZ string `json:"tz"` // POSIX TZ string
	TS int64  `json:"ts"` // Unix seconds
}

// CountryCode is the system/setDevInfo payload for a region change.
type CountryCode struct {
	CountryCode string `json:"countryCode"`
}
