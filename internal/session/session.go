package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/capture"
	"github.com/muurk/ne101/internal/cellular"
	"github.com/muurk/ne101/internal/credentials"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/image"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/mqtt"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/system"
	"github.com/muurk/ne101/internal/upload"
	"github.com/muurk/ne101/internal/wifi"
)

// Startup steps, in order.
const (
	StepTime     = "time"
	StepDevice   = "device"
	StepImage    = "image"
	StepCapture  = "capture"
	StepUpload   = "upload"
	StepPlatform = "platform"
	StepCellular = "cellular"
	StepWifi     = "wifi"
)

// Supported interface languages.
const (
	LangEnglish = "en_US"
	LangChinese = "zh_CN"
)

// LanguageStore persists the language preference.
type LanguageStore interface {
	SetLanguage(lang string) error
}

// StepResult is the outcome of one startup step.
type StepResult struct {
	Step string
	Err  error
}

// Option configures a Session.
type Option func(*options)

type options struct {
	bus          events.Publisher
	pollInterval time.Duration
	systemOpts   []system.Option
	languages    LanguageStore
	poll         bool
}

// WithPublisher announces state changes and startup steps on bus.
func WithPublisher(bus events.Publisher) Option {
	return func(o *options) { o.bus = bus }
}

// WithPollInterval overrides the MQTT status poll period.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithoutStatusPoll keeps the MQTT status poller from starting, for
// one-shot commands.
func WithoutStatusPoll() Option {
	return func(o *options) { o.poll = false }
}

// WithSystemOptions passes options to the device section.
func WithSystemOptions(opts ...system.Option) Option {
	return func(o *options) { o.systemOpts = append(o.systemOpts, opts...) }
}

// WithLanguageStore persists language changes to store.
func WithLanguageStore(store LanguageStore) Option {
	return func(o *options) { o.languages = store }
}

// Session holds every section for one device.
type Session struct {
	System      *system.Section
	Image       *image.Section
	Capture     *capture.Section
	Upload      *upload.Section
	MQTT        *mqtt.Section
	Credentials *credentials.Manager
	Wifi        *wifi.Machine
	Cellular    *cellular.Section

	bus       events.Publisher
	poller    *mqtt.StatusPoller
	poll      bool
	languages LanguageStore
}

// New builds a session over gw. Nothing is read until Init.
func New(gw deviceconfig.Gateway, ports notify.Ports, opts ...Option) *Session {
	o := options{poll: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{bus: o.bus, poll: o.poll, languages: o.languages}
	sysOpts := append([]system.Option{system.WithReload(func(ctx context.Context) {
		if err := s.Reload(ctx); err != nil {
			logging.Warn("Reload after upgrade incomplete", zap.Error(err))
		}
	})}, o.systemOpts...)

	s.System = system.NewSection(gw, ports, sysOpts...)
	s.Image = image.NewSection(gw, ports)
	s.Capture = capture.NewSection(gw, ports)
	s.Upload = upload.NewSection(gw, ports)
	s.Credentials = credentials.NewManager(gw, ports, credentials.WithPublisher(o.bus))
	s.MQTT = mqtt.NewSection(gw, ports, s.Credentials)
	s.Wifi = wifi.NewMachine(gw, ports, wifi.WithPublisher(o.bus))
	s.Cellular = cellular.NewSection(gw, ports)

	pollOpts := []mqtt.PollerOption{mqtt.WithPublisher(o.bus)}
	if o.pollInterval > 0 {
		pollOpts = append(pollOpts, mqtt.WithInterval(o.pollInterval))
	}
	s.poller = s.MQTT.NewStatusPoller(pollOpts...)
	return s
}

// Init runs the startup sequence. Every step runs even if an earlier one
// fails; the returned error joins the failures.
func (s *Session) Init(ctx context.Context) ([]StepResult, error) {
	steps := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{StepTime, s.System.SyncTime},
		{StepDevice, s.System.Load},
		{StepImage, s.Image.Load},
		{StepCapture, s.Capture.Load},
		{StepUpload, s.Upload.Load},
		{StepPlatform, s.loadPlatform},
		{"", nil}, // network step, chosen once the device step has run
	}

	results := make([]StepResult, 0, len(steps))
	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		name, run := step.name, step.run
		if run == nil {
			name, run = s.networkStep()
		}

		err := run(ctx)
		logging.LogStep(name, err)
		events.Publish(s.bus, events.TopicSession, events.SessionStep{Step: name, Err: err})
		results = append(results, StepResult{Step: name, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return results, errors.Join(errs...)
}

func (s *Session) networkStep() (string, func(ctx context.Context) error) {
	info := s.System.Info()
	if info.IsCellular() {
		return StepCellular, s.Cellular.Load
	}
	return StepWifi, s.Wifi.Refresh
}

func (s *Session) loadPlatform(ctx context.Context) error {
	if err := s.MQTT.Load(ctx); err != nil {
		return err
	}
	if s.poll {
		s.poller.Start(context.WithoutCancel(ctx))
	}
	return nil
}

// Reload re-reads every section through the startup sequence.
func (s *Session) Reload(ctx context.Context) error {
	logging.Info("Reloading session")
	_, err := s.Init(ctx)
	return err
}

// Polling reports whether the MQTT status poller is running.
func (s *Session) Polling() bool {
	return s.poller.Running()
}

// Close stops the MQTT status poller.
func (s *Session) Close() {
	s.poller.Stop()
}

// ChangeRegion sets the Wi-Fi region and records it once accepted.
func (s *Session) ChangeRegion(ctx context.Context, code string) error {
	info := s.System.Info()
	if err := s.Wifi.ChangeRegion(ctx, &info, code); err != nil {
		return err
	}
	s.System.SetCountryCode(info.CountryCode)
	return nil
}

// SetLanguage stores the language preference and reloads the session.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	if lang != LangEnglish && lang != LangChinese {
		return deviceconfig.NewFieldError("language", fmt.Sprintf("must be %s or %s, got %q", LangEnglish, LangChinese, lang))
	}
	if s.languages != nil {
		if err := s.languages.SetLanguage(lang); err != nil {
			return fmt.Errorf("save language: %w", err)
		}
	}
	return s.Reload(ctx)
}
