package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/muurk/ne101/internal/deviceconfig"
)

const (
	// HotspotURL is the camera's address on its own access point
	HotspotURL = "http://192.168.1.1"

	// DefaultModel is reported for probed cameras
	DefaultModel = "NE101"

	// DefaultProbeTimeout bounds a single probe
	DefaultProbeTimeout = 3 * time.Second
)

// Probe reads device info from baseURL and returns the camera it found.
func Probe(ctx context.Context, baseURL string) (*Device, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid camera URL %q", baseURL)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	defer cancel()

	client := deviceconfig.NewClientWithURL(baseURL)
	client.SetTimeout(DefaultProbeTimeout)

	var info deviceconfig.DeviceInfo
	if err := client.Read(ctx, deviceconfig.GetDevInfo, &info); err != nil {
		return nil, err
	}

	port := DefaultPort
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	return &Device{
		Model:        DefaultModel,
		ID:           macSuffix(info.MAC),
		IP:           u.Hostname(),
		Port:         port,
		Serial:       info.SN,
		Name:         info.Name,
		Firmware:     info.SoftVersion,
		DiscoveredAt: time.Now(),
	}, nil
}

// Enrich fills Serial, Name and Firmware of an mDNS result with a probe.
func Enrich(ctx context.Context, d *Device) error {
	probed, err := Probe(ctx, d.BaseURL())
	if err != nil {
		return err
	}
	d.Serial = probed.Serial
	d.Name = probed.Name
	d.Firmware = probed.Firmware
	return nil
}

// macSuffix returns the last three bytes of a MAC address as hex.
func macSuffix(mac string) string {
	hex := make([]byte, 0, 12)
	for i := 0; i < len(mac); i++ {
		c := mac[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			hex = append(hex, c)
		case c >= 'a' && c <= 'f':
			hex = append(hex, c-'a'+'A')
		}
	}
	if len(hex) < 6 {
		return string(hex)
	}
	return string(hex[len(hex)-6:])
}
