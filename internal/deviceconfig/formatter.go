package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/muurk/ne101/internal/codec"
)

func onOff(f Flag) string {
	if f.Bool() {
		return "enabled"
	}
	return "disabled"
}

func yesNo(f Flag) string {
	if f.Bool() {
		return "yes"
	}
	return "no"
}

// Summary returns a one-line summary of the camera
func (d *DeviceInfo) Summary() string {
	return fmt.Sprintf("NE101 %s %q (SN: %s, FW: %s)", d.NetMod, d.Name, d.SN, d.SoftVersion)
}

// FormatDeviceInfo returns a formatted string with device identification information
func FormatDeviceInfo(d *DeviceInfo, battery *Battery, ntp *NTPSync) string {
	var b strings.Builder

	b.WriteString("=== Device Information ===\n")
	b.WriteString(fmt.Sprintf("Name:           %s\n", d.Name))
	b.WriteString(fmt.Sprintf("Serial Number:  %s\n", d.SN))
	b.WriteString(fmt.Sprintf("MAC Address:    %s\n", d.MAC))
	b.WriteString(fmt.Sprintf("Hardware:       %s\n", d.HardVersion))
	b.WriteString(fmt.Sprintf("Firmware:       %s\n", d.SoftVersion))
	b.WriteString(fmt.Sprintf("Network Mode:   %s\n", d.NetMod))
	b.WriteString(fmt.Sprintf("Camera Module:  %s\n", d.Camera))
	if d.CountryCode != "" {
		b.WriteString(fmt.Sprintf("Region:         %s\n", d.CountryCode))
	}
	if battery != nil {
		b.WriteString(fmt.Sprintf("Power:          %s\n", battery))
	}
	if ntp != nil {
		b.WriteString(fmt.Sprintf("NTP Sync:       %s\n", onOff(ntp.Enable)))
	}

	return b.String()
}

func captureModeName(mode int) string {
	if mode == CaptureInterval {
		return "interval"
	}
	return "timed"
}

func unitName(unit int) string {
	switch unit {
	case UnitMinute:
		return "min"
	case UnitHour:
		return "h"
	case UnitDay:
		return "d"
	default:
		return fmt.Sprintf("unit(%d)", unit)
	}
}

// TriggerModeName returns a label for a trigger mode.
func TriggerModeName(mode int) string {
	switch mode {
	case TriggerDisabled:
		return "disabled"
	case TriggerAlarm:
		return "alarm input"
	case TriggerPIR:
		return "PIR"
	default:
		return fmt.Sprintf("mode(%d)", mode)
	}
}

// FormatTimedNodes renders a schedule list with 1-based indexes.
func FormatTimedNodes(nodes []TimedNode) string {
	if len(nodes) == 0 {
		return "  (none)\n"
	}
	var b strings.Builder
	for i, n := range nodes {
		b.WriteString(fmt.Sprintf("  %2d. %-5s %s\n", i+1, DayName(n.Day), n.Time))
	}
	return b.String()
}

// FormatCapture returns a formatted string with capture and trigger settings
func FormatCapture(c *CaptureParams, t *TriggerParams) string {
	var b strings.Builder

	b.WriteString("=== Capture ===\n")
	b.WriteString(fmt.Sprintf("Scheduled Capture: %s (%s)\n", onOff(c.ScheduledCapture), captureModeName(c.ScheduleMode)))
	if c.ScheduleMode == CaptureInterval {
		b.WriteString(fmt.Sprintf("Interval:          every %d %s\n", c.IntervalValue, unitName(c.IntervalUnit)))
	} else {
		b.WriteString("Capture Times:\n")
		b.WriteString(FormatTimedNodes(c.TimedNodes))
	}
	b.WriteString(fmt.Sprintf("Button Capture:    %s\n", onOff(c.ButtonCapture)))
	b.WriteString(fmt.Sprintf("Trigger Capture:   %s\n", onOff(c.AlarmInCapture)))
	b.WriteString(fmt.Sprintf("Camera Warm-up:    %d ms\n", c.CamWarmupMs))

	if t != nil {
		b.WriteString("\n=== Trigger ===\n")
		b.WriteString(fmt.Sprintf("Mode:          %s\n", TriggerModeName(t.Mode)))
		b.WriteString(fmt.Sprintf("Sensitivity:   %.0f\n", codec.SensitivityDisplay(t.Sensitivity)))
		b.WriteString(fmt.Sprintf("Blind Time:    %.1f s\n", codec.BlindTimeDisplay(t.Blind)))
		b.WriteString(fmt.Sprintf("Pulse Count:   %.0f\n", codec.PulseDisplay(t.Pulse)))
		b.WriteString(fmt.Sprintf("Window Time:   %.0f s\n", codec.WindowDisplay(t.Window)))
	}

	return b.String()
}

// FormatUpload returns a formatted string with the upload schedule
func FormatUpload(u *UploadParams) string {
	var b strings.Builder

	b.WriteString("=== Upload ===\n")
	if u.Mode == UploadScheduled {
		b.WriteString("Mode:        scheduled\n")
		b.WriteString("Upload Times:\n")
		b.WriteString(FormatTimedNodes(u.TimedNodes))
	} else {
		b.WriteString("Mode:        immediate\n")
	}
	b.WriteString(fmt.Sprintf("Retry Count: %d\n", u.RetryCount))

	return b.String()
}

// LightModeName returns a label for a fill light mode.
func LightModeName(mode int) string {
	switch mode {
	case LightAuto:
		return "auto"
	case LightCustom:
		return "custom"
	case LightOn:
		return "always on"
	case LightOff:
		return "always off"
	default:
		return fmt.Sprintf("mode(%d)", mode)
	}
}

// FormatImage returns a formatted string with light and camera settings
func FormatImage(l *LightParams, c *CameraParams) string {
	var b strings.Builder

	b.WriteString("=== Fill Light ===\n")
	b.WriteString(fmt.Sprintf("Mode:       %s\n", LightModeName(l.Mode)))
	b.WriteString(fmt.Sprintf("Luminance:  %d (threshold %d)\n", l.Value, l.Threshold))
	b.WriteString(fmt.Sprintf("Brightness: %d%%\n", l.Duty))
	if l.Mode == LightCustom {
		b.WriteString(fmt.Sprintf("Schedule:   %s - %s\n", l.StartTime, l.EndTime))
	}

	if c != nil {
		b.WriteString("\n=== Camera ===\n")
		b.WriteString(fmt.Sprintf("Resolution: %s\n", codec.FrameSize(c.FrameSize)))
		b.WriteString(fmt.Sprintf("Quality:    %d (0 best, 63 worst)\n", c.Quality))
		b.WriteString(fmt.Sprintf("Brightness: %d  Contrast: %d  Saturation: %d\n", c.Brightness, c.Contrast, c.Saturation))
		b.WriteString(fmt.Sprintf("AE Level:   %d\n", c.AELevel))
		b.WriteString(fmt.Sprintf("AGC:        %s (gain %d, ceiling %d)\n", onOff(c.AGC), c.Gain, c.GainCeiling))
		b.WriteString(fmt.Sprintf("Flip:       horizontal %s, vertical %s\n", yesNo(c.FlipHorizontal), yesNo(c.FlipVertical)))
		b.WriteString(fmt.Sprintf("HDR:        %s\n", onOff(c.HDR)))
	}

	return b.String()
}

// FormatMQTT returns a formatted string with the data report settings
func FormatMQTT(m *MQTTPlatform) string {
	var b strings.Builder

	b.WriteString("=== Data Report (MQTT) ===\n")
	b.WriteString(fmt.Sprintf("Broker:    %s:%d\n", m.Host, m.Port))
	b.WriteString(fmt.Sprintf("Topic:     %s\n", m.Topic))
	b.WriteString(fmt.Sprintf("Client ID: %s\n", m.ClientID))
	b.WriteString(fmt.Sprintf("QoS:       %d\n", m.QoS))
	if m.Username != "" {
		b.WriteString(fmt.Sprintf("Username:  %s\n", m.Username))
	}
	b.WriteString(fmt.Sprintf("TLS:       %s\n", onOff(m.TLSEnable)))
	if m.TLSEnable.Bool() {
		b.WriteString(fmt.Sprintf("  CA:      %s\n", orNone(m.CAName)))
		b.WriteString(fmt.Sprintf("  Cert:    %s\n", orNone(m.CertName)))
		b.WriteString(fmt.Sprintf("  Key:     %s\n", orNone(m.KeyName)))
	}
	status := "disconnected"
	if m.IsConnected.Bool() {
		status = "connected"
	}
	b.WriteString(fmt.Sprintf("Status:    %s\n", status))

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// FormatCellular returns a formatted string with cellular settings and status
func FormatCellular(p *CellularParams, s *CellularStatus) string {
	var b strings.Builder

	auth := []string{"None", "PAP", "CHAP", "PAP or CHAP"}
	authName := fmt.Sprintf("%d", p.Authentication)
	if p.Authentication >= 0 && p.Authentication < len(auth) {
		authName = auth[p.Authentication]
	}

	b.WriteString("=== Cellular ===\n")
	b.WriteString(fmt.Sprintf("APN:            %s\n", orNone(p.APN)))
	b.WriteString(fmt.Sprintf("User:           %s\n", orNone(p.User)))
	b.WriteString(fmt.Sprintf("Authentication: %s\n", authName))

	if s != nil {
		b.WriteString("\n=== Modem Status ===\n")
		rows := [][2]string{
			{"Network", s.NetworkStatus},
			{"Modem", s.ModemStatus},
			{"Model", s.Model},
			{"Version", s.Version},
			{"Signal", s.SignalLevel},
			{"Registration", s.RegisterStatus},
			{"IMEI", s.IMEI},
			{"IMSI", s.IMSI},
			{"ICCID", s.ICCID},
			{"Operator", s.ISP},
			{"Network Type", s.NetworkType},
			{"PLMN", s.PLMNID},
			{"LAC / Cell", s.LAC + " / " + s.CellID},
			{"IPv4", s.IPv4Address + " gw " + s.IPv4Gateway + " dns " + s.IPv4DNS},
			{"IPv6", s.IPv6Address + " gw " + s.IPv6Gateway + " dns " + s.IPv6DNS},
		}
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("%-15s %s\n", r[0]+":", r[1]))
		}
	}

	return b.String()
}

// FormatDetailed returns a banner header for the full configuration dump
func FormatDetailed(sections ...string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║              NE101 CAMERA CONFIGURATION                        ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")

	for _, s := range sections {
		if s == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s)
	}

	return b.String()
}
