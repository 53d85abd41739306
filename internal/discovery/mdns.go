package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/logging"
)

const (
	// ServiceType is the mDNS service type the camera's web server registers
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for cameras
	DefaultPort = 80
)

// hostPattern matches camera host names: model, underscore or dash, and the
// last three MAC bytes in hex (e.g., "NE101_1A2B3C.local.")
var hostPattern = regexp.MustCompile(`^(NE\d+)[_-]([0-9A-Fa-f]{6})\.local\.?$`)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices discovers all cameras on the local network
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers devices until the timeout or ctx ends.
// A camera answering on several interfaces is reported once.
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []*Device, 1)

	go func() {
		seen := make(map[string]bool)
		devices := make([]*Device, 0)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device == nil || seen[device.Hostname] {
				continue
			}
			seen[device.Hostname] = true
			logging.Debug("Camera discovered",
				zap.String("host", device.Hostname),
				zap.String("ip", device.IP),
			)
			devices = append(devices, device)
		}
		collected <- devices
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// The resolver closes entries once the browse context ends.
	return <-collected, nil
}

// WaitForDevice waits for a specific camera by MAC suffix
func (s *Scanner) WaitForDevice(id string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), id)
}

// WaitForDeviceWithContext waits for a specific camera with a custom context
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, id string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil && strings.EqualFold(device.ID, id) {
				select {
				case deviceChan <- device:
				default:
				}
				cancel() // Found the device, cancel context
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		select {
		case device := <-deviceChan:
			return device, nil
		default:
		}
		return nil, fmt.Errorf("camera %s not found within timeout", id)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a camera.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	hostname := entry.HostName
	if hostname == "" {
		return nil
	}

	matches := hostPattern.FindStringSubmatch(hostname)
	if len(matches) < 3 {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Device{
		Model:        matches[1],
		ID:           strings.ToUpper(matches[2]),
		Hostname:     hostname,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan for devices with a custom timeout
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}
