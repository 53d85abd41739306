package mqtt

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/credentials"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// Suggested broker ports.
const (
	PortPlain = 1883
	PortTLS   = 8883
)

// Section owns the data-report platform group.
type Section struct {
	gw    deviceconfig.Gateway
	ports notify.Ports
	creds *credentials.Manager

	mu       sync.Mutex
	platform deviceconfig.PlatformParams
}

// NewSection creates the section. creds may be nil when credential files
// are not managed.
func NewSection(gw deviceconfig.Gateway, ports notify.Ports, creds *credentials.Manager) *Section {
	return &Section{
		gw:    gw,
		ports: ports.WithDefaults(),
		creds: creds,
		platform: deviceconfig.PlatformParams{
			CurrentPlatformType: deviceconfig.PlatformMQTT,
			MQTT: deviceconfig.MQTTPlatform{
				Host:     "192.168.1.1",
				Port:     PortPlain,
				Topic:    "NE101SensingCam/Snapshot",
				ClientID: "6622123145647890",
			},
		},
	}
}

// Platform returns the broker settings.
func (s *Section) Platform() deviceconfig.MQTTPlatform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform.MQTT
}

// Connected reports the last known broker connection flag.
func (s *Section) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform.MQTT.IsConnected.Bool()
}

func (s *Section) setConnected(connected bool) {
	s.mu.Lock()
	s.platform.MQTT.IsConnected = deviceconfig.FlagOf(connected)
	s.mu.Unlock()
}

func (s *Section) Load(ctx context.Context) error {
	var p deviceconfig.PlatformParams
	if err := s.gw.Read(ctx, deviceconfig.GetPlatformParam, &p); err != nil {
		err = fmt.Errorf("read platform params: %w", err)
		s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return err
	}
	p.Normalize()
	if s.creds != nil {
		s.creds.LoadPlatform(&p.MQTT)
	}

	s.mu.Lock()
	s.platform = p
	s.mu.Unlock()
	return nil
}

// ApplyTLS switches TLS on p and suggests the matching standard port when
// no port is set. A port the user chose is kept.
func ApplyTLS(p *deviceconfig.MQTTPlatform, enabled bool) {
	p.TLSEnable = deviceconfig.FlagOf(enabled)
	if p.Port == 0 {
		p.Port = PortPlain
		if enabled {
			p.Port = PortTLS
		}
	}
}

// SetTLS switches TLS locally and returns the resulting port. Nothing is
// sent until Save.
func (s *Section) SetTLS(enabled bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ApplyTLS(&s.platform.MQTT, enabled)
	return s.platform.MQTT.Port
}

// Save applies edit to a copy of the broker settings, validates them and
// submits the group. Validation failures send nothing.
func (s *Section) Save(ctx context.Context, edit func(p *deviceconfig.MQTTPlatform)) error {
	s.mu.Lock()
	next := s.platform
	s.mu.Unlock()

	if edit != nil {
		edit(&next.MQTT)
	}
	if err := deviceconfig.ValidateMQTTPlatform(&next.MQTT); err != nil {
		return err
	}
	if s.creds != nil {
		s.creds.ApplyTo(&next.MQTT)
	}

	if _, err := s.gw.Write(ctx, deviceconfig.SetPlatformParam, next.Submission()); err != nil {
		err = fmt.Errorf("write platform params: %w", err)
		s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return err
	}

	next.CurrentPlatformType = deviceconfig.PlatformMQTT
	s.mu.Lock()
	next.MQTT.IsConnected = s.platform.MQTT.IsConnected
	s.platform = next
	s.mu.Unlock()

	logging.Info("MQTT platform saved",
		zap.String("host", next.MQTT.Host),
		zap.Int("port", next.MQTT.Port),
		zap.Bool("tls", next.MQTT.TLSEnable.Bool()),
	)
	s.ports.Notifier.Notify(notify.Success, "MQTT settings saved")
	return nil
}

// NewStatusPoller returns a poller that keeps the section's connection
// flag current.
func (s *Section) NewStatusPoller(opts ...PollerOption) *StatusPoller {
	opts = append([]PollerOption{withObserver(s.setConnected)}, opts...)
	return NewStatusPoller(s.gw, opts...)
}
