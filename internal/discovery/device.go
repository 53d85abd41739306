package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a discovered camera
type Device struct {
	// Model is the hardware model from the host name (e.g., "NE101")
	Model string

	// ID is the MAC suffix from the host name (e.g., "1A2B3C")
	ID string

	// Hostname is the mDNS hostname (e.g., "NE101_1A2B3C.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was advertised
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// Serial, Name and Firmware are filled from a device info read (Probe);
	// mDNS does not carry them
	Serial   string
	Name     string
	Firmware string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	label := d.Model + " " + d.ID
	if d.Name != "" {
		label = d.Name
	}
	if d.Hostname != "" {
		return fmt.Sprintf("%s (%s) at %s", label, d.Hostname, d.BaseURL())
	}
	return fmt.Sprintf("%s at %s", label, d.BaseURL())
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	if d.Port == 0 || d.Port == DefaultPort {
		return "http://" + hostForURL(d.IP)
	}
	return "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

func hostForURL(ip string) string {
	if parsed := net.ParseIP(ip); parsed != nil && parsed.To4() == nil {
		return "[" + ip + "]"
	}
	return ip
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
