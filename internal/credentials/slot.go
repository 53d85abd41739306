package credentials

import (
	"fmt"
	"strings"

	"github.com/muurk/ne101/internal/deviceconfig"
)

// Slot identifies one of the three TLS credential files the camera holds
// for its MQTT connection.
type Slot int

const (
	CA Slot = iota
	Cert
	Key
)

// Slots lists every slot in display order.
func Slots() []Slot {
	return []Slot{CA, Cert, Key}
}

// ParseSlot accepts "ca", "cert" or "key".
func ParseSlot(s string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ca":
		return CA, nil
	case "cert":
		return Cert, nil
	case "key":
		return Key, nil
	}
	return 0, fmt.Errorf("unknown credential slot %q (want ca, cert or key)", s)
}

// String returns the short slot name used in field errors and on the CLI.
func (s Slot) String() string {
	switch s {
	case CA:
		return "ca"
	case Cert:
		return "cert"
	case Key:
		return "key"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Label names the slot for people.
func (s Slot) Label() string {
	switch s {
	case CA:
		return "CA certificate"
	case Cert:
		return "client certificate"
	case Key:
		return "client key"
	}
	return s.String()
}

// Extensions lists the file extensions the slot accepts.
func (s Slot) Extensions() []string {
	switch s {
	case CA:
		return []string{".pem", ".crt", ".cer"}
	case Cert:
		return []string{".pem", ".crt", ".cer", ".cert"}
	case Key:
		return []string{".key", ".pem"}
	}
	return nil
}

func (s Slot) uploadEndpoint() deviceconfig.Endpoint {
	switch s {
	case CA:
		return deviceconfig.UploadMqttCa
	case Cert:
		return deviceconfig.UploadMqttCert
	default:
		return deviceconfig.UploadMqttKey
	}
}

func (s Slot) deleteEndpoint() deviceconfig.Endpoint {
	switch s {
	case CA:
		return deviceconfig.DeleteMqttCa
	case Cert:
		return deviceconfig.DeleteMqttCert
	default:
		return deviceconfig.DeleteMqttKey
	}
}
