package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/config"
	"github.com/muurk/ne101/internal/desktop"
	"github.com/muurk/ne101/internal/discovery"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/session"
	"github.com/muurk/ne101/internal/tui"
)

func newTUICmd(opts *globalOptions) *cobra.Command {
	var (
		scan bool
		wait time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen camera dashboard",
		Long: `Open a full-screen dashboard for one camera.

The dashboard shows every parameter group on its own page, keeps the MQTT
broker status up to date and can connect the camera to Wi-Fi.

The camera is chosen like every other command: --device, then the default
profile. With neither, or with --scan, the dashboard starts by looking for
cameras on the hotspot address and over mDNS.`,
		Example: `  ne101-cfg tui
  ne101-cfg tui --device http://192.168.1.1
  ne101-cfg tui --scan --wait 10s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.initLogging(); err != nil {
				return err
			}
			registry, err := config.Load()
			if err != nil {
				return err
			}

			cfg := tui.Config{
				Connect: opts.connector(cmd.Context(), registry),
				Scan: func(ctx context.Context) ([]*discovery.Device, error) {
					return scanCameras(ctx, wait), nil
				},
			}
			if !scan && (opts.device != "" || registry.DefaultDevice != "") {
				_, device, err := registry.Resolve(opts.device)
				if err != nil {
					return err
				}
				cfg.URL = normalizeURL(device.URL)
			}
			if opts.desktopNotify || registry.Preferences.DesktopNotifications {
				cfg.Sinks = append(cfg.Sinks, desktop.NewSink(nil))
			}
			return tui.Run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&scan, "scan", false, "Start with a scan even if a camera is configured")
	cmd.Flags().DurationVar(&wait, "wait", discovery.DefaultScanTimeout, "How long to browse mDNS")
	return cmd
}

// connector opens dashboard sessions. The session polls the MQTT status
// and records the camera's serial on its profile once identified.
func (o *globalOptions) connector(ctx context.Context, registry *config.Registry) tui.ConnectFunc {
	return func(baseURL string, ports notify.Ports) (*tui.Connection, error) {
		profile, device := profileFor(registry, baseURL)
		client := o.newClient(registry, baseURL)

		bus := events.New()
		if o.desktopNotify || registry.Preferences.DesktopNotifications {
			desktop.NewWatcher(bus, nil).Start(ctx)
		}
		sub := bus.Subscribe(events.TopicSession)
		s := session.New(client, ports, sessionOptions(registry, device, bus)...)
		if profile != "" {
			go recordSeen(registry, profile, s, sub)
		} else {
			bus.Unsubscribe(sub)
		}

		label := profile
		if label == "" {
			label = client.BaseURL
		}
		return &tui.Connection{Session: s, Bus: bus, Label: label}, nil
	}
}

// profileFor finds the saved profile whose address is baseURL.
func profileFor(registry *config.Registry, baseURL string) (string, *config.Device) {
	for _, name := range registry.DeviceNames() {
		d := registry.GetDevice(name)
		if normalizeURL(d.URL) == baseURL {
			return name, d
		}
	}
	return "", &config.Device{URL: baseURL}
}

// recordSeen stores the serial number once the device step has run.
func recordSeen(registry *config.Registry, profile string, s *session.Session, sub events.Subscription) {
	for msg := range sub {
		step, ok := msg.(events.SessionStep)
		if !ok || step.Step != session.StepDevice || step.Err != nil {
			continue
		}
		if sn := s.System.Info().SN; sn != "" {
			registry.UpdateDeviceSeen(profile, sn)
			if err := registry.Save(); err != nil {
				logging.Warn("Could not save client configuration", zap.Error(err))
			}
		}
	}
}
