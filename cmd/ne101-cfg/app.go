package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/config"
	"github.com/muurk/ne101/internal/desktop"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/discovery"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/session"
	"github.com/muurk/ne101/internal/system"
	"github.com/muurk/ne101/internal/ui"
)

// app is one command invocation against one camera.
type app struct {
	registry *config.Registry
	profile  string // empty when the camera was given by URL
	url      string

	client  *deviceconfig.Client
	channel *notify.Channel
	bus     *events.Bus
	session *session.Session
	printer *ui.Printer

	stopWatch context.CancelFunc
}

// appOption tunes how open wires the session.
type appOption func(*openConfig)

type openConfig struct {
	password string
	settle   time.Duration
}

// withPassword pre-answers the first Wi-Fi password prompt.
func withPassword(pw string) appOption {
	return func(c *openConfig) { c.password = pw }
}

// withSettleDelay sets how long a finished upgrade waits before reporting.
func withSettleDelay(d time.Duration) appOption {
	return func(c *openConfig) { c.settle = d }
}

// initLogging applies --log-level or NE101_LOG_LEVEL.
func (o *globalOptions) initLogging() error {
	if err := logging.Initialize(o.logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// open resolves the camera, loads the client configuration and builds a
// session with terminal ports. Nothing is read from the camera yet.
func (o *globalOptions) open(cmd *cobra.Command, opts ...appOption) (*app, error) {
	var oc openConfig
	for _, opt := range opts {
		opt(&oc)
	}

	if err := o.initLogging(); err != nil {
		return nil, err
	}

	registry, err := config.Load()
	if err != nil {
		return nil, err
	}

	explicit := o.device
	if explicit == "" && registry.DefaultDevice == "" {
		// Nothing configured: assume the camera's own hotspot.
		explicit = discovery.HotspotURL
	}
	profile, device, err := registry.Resolve(explicit)
	if err != nil {
		return nil, err
	}

	client := o.newClient(registry, device.URL)

	console := ui.NewConsole(o.errOut, false)
	sinks := []notify.Sink{console}
	desktopOn := o.desktopNotify || registry.Preferences.DesktopNotifications
	if desktopOn {
		sinks = append(sinks, desktop.NewSink(nil))
	}
	channel := notify.NewChannel(registry.Preferences.NotificationClear, sinks...)

	terminal := ui.NewTerminal(o.out,
		ui.WithInteractive(o.out == io.Writer(os.Stdout) && ui.IsInteractive()),
		ui.WithAssumeYes(o.assumeYes),
		ui.WithPassword(oc.password),
	)
	ports := notify.Ports{
		Notifier: channel,
		Dialog:   notify.NewModal(terminal),
		Spinner:  console.Spinner(),
	}

	bus := events.New()
	a := &app{
		registry:  registry,
		profile:   profile,
		url:       client.BaseURL,
		client:    client,
		channel:   channel,
		bus:       bus,
		printer:   ui.NewPrinter(o.out),
		stopWatch: func() {},
	}

	if desktopOn {
		ctx, cancel := context.WithCancel(cmd.Context())
		desktop.NewWatcher(bus, nil).Start(ctx)
		a.stopWatch = cancel
	}

	sessOpts := append(sessionOptions(registry, device, bus), session.WithoutStatusPoll())
	if oc.settle > 0 {
		sessOpts = append(sessOpts, session.WithSystemOptions(system.WithSettleDelay(oc.settle)))
	}
	a.session = session.New(client, ports, sessOpts...)

	logging.Debug("Camera resolved",
		zap.String("profile", profile),
		zap.String("url", a.url),
		zap.Duration("timeout", client.HTTPClient.Timeout),
	)
	return a, nil
}

// newClient builds a client for url with the request timeout from
// --timeout or the preferences. Neither set means requests never time out.
func (o *globalOptions) newClient(registry *config.Registry, url string) *deviceconfig.Client {
	timeout := o.timeout
	if timeout <= 0 {
		timeout = registry.Preferences.RequestTimeout
	}
	client := deviceconfig.NewClientWithURL(normalizeURL(url))
	client.SetTimeout(timeout)
	return client
}

// sessionOptions are the options every session for device shares.
func sessionOptions(registry *config.Registry, device *config.Device, bus events.Publisher) []session.Option {
	return []session.Option{
		session.WithPublisher(bus),
		session.WithLanguageStore(registry),
		session.WithSystemOptions(system.WithClock(clockFor(device.Timezone))),
	}
}

// close stops background work and records a successful contact with a
// saved profile.
func (a *app) close() {
	a.session.Close()
	a.stopWatch()
	a.channel.Close()
	a.bus.Close()

	if a.profile == "" {
		return
	}
	if sn := a.session.System.Info().SN; sn != "" {
		a.registry.UpdateDeviceSeen(a.profile, sn)
		if err := a.registry.Save(); err != nil {
			logging.Warn("Could not save client configuration", zap.Error(err))
		}
	}
}

// done reports a completed change through the notification channel.
func (a *app) done(format string, args ...any) {
	a.channel.Notify(notify.Success, fmt.Sprintf(format, args...))
}

// label names the camera in section headers.
func (a *app) label() string {
	if a.profile != "" {
		return a.profile
	}
	return "NE101"
}

// show prints a formatted section body under a header.
func (a *app) show(body string) {
	a.printer.PrintSection(a.label(), a.url, body)
}

// run opens the camera, calls fn and closes it again.
func (o *globalOptions) run(fn func(ctx context.Context, a *app) error, opts ...appOption) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := o.open(cmd, opts...)
		if err != nil {
			return err
		}
		defer a.close()
		if err := fn(cmd.Context(), a); err != nil {
			if n, ok := a.channel.Current(); ok && n.Kind == notify.Error {
				return &reportedError{err}
			}
			return err
		}
		return nil
	}
}

// reportedError is a failure the console has already shown.
type reportedError struct{ error }

func (e *reportedError) Unwrap() error { return e.error }

// normalizeURL adds a scheme to bare hosts.
func normalizeURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.Contains(raw, "://") {
		return "http://" + raw
	}
	return raw
}

// clockFor returns a clock in the profile's time zone, or local time.
func clockFor(zone string) func() time.Time {
	if zone == "" {
		return time.Now
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logging.Warn("Unknown profile time zone, using local time", zap.String("timezone", zone), zap.Error(err))
		return time.Now
	}
	return func() time.Time { return time.Now().In(loc) }
}
