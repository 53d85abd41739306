package deviceconfig

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateRequired rejects a value that is empty after trimming.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewFieldError(field, "is required")
	}
	return nil
}

// ValidateRange rejects a number outside [min,max].
func ValidateRange(field string, value, min, max int) error {
	if value < min || value > max {
		return NewFieldError(field, fmt.Sprintf("must be %d-%d, got %d", min, max, value))
	}
	return nil
}

// ValidateHost validates an MQTT broker hostname or IP address.
// Basic validation: non-empty, reasonable length, no whitespace.
func ValidateHost(host string) error {
	if err := ValidateRequired("host", host); err != nil {
		return err
	}
	if len(host) > 253 {
		return NewFieldError("host", fmt.Sprintf("too long (max 253 chars): %d chars", len(host)))
	}
	if strings.ContainsAny(host, " \t\n\r") {
		return NewFieldError("host", "contains whitespace")
	}
	return nil
}

// ValidatePort validates a TCP port number.
// Valid range: 1-65535
func ValidatePort(port int) error {
	return ValidateRange("port", port, 1, 65535)
}

// ValidateMQTTPlatform checks every broker field and joins the failures.
func ValidateMQTTPlatform(p *MQTTPlatform) error {
	return errors.Join(
		ValidateHost(p.Host),
		ValidatePort(p.Port),
		ValidateRequired("topic", p.Topic),
		ValidateRange("qos", p.QoS, 0, 2),
	)
}

// ValidateInterval validates a capture interval value.
func ValidateInterval(value int) error {
	return ValidateRange("interval", value, 1, 999)
}

// ValidateDeviceName validates a camera name.
func ValidateDeviceName(name string) error {
	return ValidateRequired("name", name)
}

// ValidateWiFiSSID validates a WiFi SSID.
// SSIDs must be non-empty and <= 32 bytes.
func ValidateWiFiSSID(ssid string) error {
	if ssid == "" {
		return NewFieldError("ssid", "cannot be empty")
	}
	if len(ssid) > 32 {
		return NewFieldError("ssid", fmt.Sprintf("too long (max 32 bytes): %d bytes", len(ssid)))
	}
	return nil
}

// ValidateCellularParams validates the cellular authentication type.
func ValidateCellularParams(p *CellularParams) error {
	return ValidateRange("authentication", p.Authentication, CellAuthNone, CellAuthPAPOrCHAP)
}

// ValidateRegion checks code against the regions the firmware allows.
func ValidateRegion(info *DeviceInfo, code string) error {
	regions := info.Regions()
	if len(regions) == 0 {
		return NewFieldError("region", fmt.Sprintf("firmware %q does not support region changes", info.SoftVersion))
	}
	for _, r := range regions {
		if r == code {
			return nil
		}
	}
	return NewFieldError("region", fmt.Sprintf("must be one of %s, got %q", strings.Join(regions, ", "), code))
}

// FormatValidationErrors formats validation errors into a user-friendly message.
func FormatValidationErrors(err error) string {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		if err == nil {
			return "No validation errors"
		}
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation failed with %d error(s):\n", len(fields)))

	for i, fe := range fields {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}

	return sb.String()
}
