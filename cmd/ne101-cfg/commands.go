package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/codec"
	"github.com/muurk/ne101/internal/config"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/discovery"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/session"
	"github.com/muurk/ne101/internal/ui"
	"github.com/muurk/ne101/internal/wifi"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the complete camera configuration",
		Long: `Read every settings group from the camera and display it.

The sequence matches the camera's web page: time sync, device info, image,
capture, upload, MQTT and then Wi-Fi or cellular depending on the network
module. A failing group is reported and the rest are still read.`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app) error {
			results, err := a.session.Init(ctx)
			for _, r := range results {
				if r.Err != nil {
					logging.Warn("Settings group unavailable", zap.String("step", r.Step), zap.Error(r.Err))
				}
			}
			a.printer.Print(formatSession(a.session, results))
			return err
		}),
	}
}

// formatSession renders every group that loaded.
func formatSession(s *session.Session, results []session.StepResult) string {
	ok := make(map[string]bool, len(results))
	for _, r := range results {
		ok[r.Step] = r.Err == nil
	}

	var sections []string
	if ok[session.StepDevice] {
		info, battery, ntp := s.System.Info(), s.System.Battery(), s.System.NTP()
		sections = append(sections, deviceconfig.FormatDeviceInfo(&info, &battery, &ntp))
	}
	if ok[session.StepCapture] {
		c, t := s.Capture.Params(), s.Capture.Trigger()
		sections = append(sections, deviceconfig.FormatCapture(&c, &t))
	}
	if ok[session.StepUpload] {
		u := s.Upload.Params()
		sections = append(sections, deviceconfig.FormatUpload(&u))
	}
	if ok[session.StepImage] {
		l, c := s.Image.Light(), s.Image.Camera()
		sections = append(sections, deviceconfig.FormatImage(&l, &c))
	}
	if ok[session.StepPlatform] {
		m := s.MQTT.Platform()
		sections = append(sections, deviceconfig.FormatMQTT(&m))
	}
	if ok[session.StepCellular] {
		p, st := s.Cellular.Params(), s.Cellular.Status()
		sections = append(sections, deviceconfig.FormatCellular(&p, &st))
	}
	if ok[session.StepWifi] {
		sections = append(sections, formatWifi(s.Wifi.Entries()))
	}
	return deviceconfig.FormatDetailed(sections...)
}

// formatWifi renders the scanned network list.
func formatWifi(entries []wifi.Entry) string {
	var b strings.Builder
	b.WriteString("=== Wi-Fi Networks ===\n")
	if len(entries) == 0 {
		b.WriteString("No networks found\n")
		return b.String()
	}
	for _, e := range entries {
		lock := " "
		if e.Encrypted {
			lock = "*"
		}
		fmt.Fprintf(&b, "%s %s %-32s %4d dBm  %s\n", codec.SignalBars(e.RSSI), lock, e.SSID, e.RSSI, e.Status)
	}
	b.WriteString("(* password required)\n")
	return b.String()
}

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		wait        time.Duration
		saveAs      string
		makeDefault bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find NE101 cameras on the hotspot and the local network",
		Long: `Find NE101 cameras.

The camera's own hotspot address (192.168.1.1) is probed first, then the local
network is browsed over mDNS for hosts named like NE101_1A2B3C. Each camera
found over mDNS is probed for its serial number and firmware version.

With --save, a single camera found is stored as a named profile.`,
		Example: `  # Scan for 5 seconds (default)
  ne101-cfg scan

  # Save the camera found as "garden" and make it the default
  ne101-cfg scan --save garden --default`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.initLogging(); err != nil {
				return err
			}
			ctx := cmd.Context()
			printer := ui.NewPrinter(opts.out)

			printer.Println(fmt.Sprintf("Scanning for NE101 cameras (timeout: %s)...", wait))
			devices := scanCameras(ctx, wait)

			if len(devices) == 0 {
				printer.Println("No cameras found.")
				printer.Println(`
Troubleshooting:
  • Press the camera's button to wake it up, then try again
  • Connect to the camera's NE101_xxxxxx hotspot
  • Check that this computer is on the same network as the camera
  • Try a longer --wait on slow networks`)
				return nil
			}

			printer.Println(fmt.Sprintf("Found %d camera(s):\n", len(devices)))
			for i, d := range devices {
				printer.Println(fmt.Sprintf("%d. %s", i+1, d))
				printer.Println(fmt.Sprintf("   URL: %s", d.BaseURL()))
				if d.Serial != "" {
					printer.Println(fmt.Sprintf("   SN: %s", d.Serial))
				}
				if d.Firmware != "" {
					printer.Println(fmt.Sprintf("   Firmware: %s", d.Firmware))
				}
			}

			if saveAs == "" {
				return nil
			}
			if len(devices) != 1 {
				return fmt.Errorf("found %d cameras; save one with 'ne101-cfg profile add NAME URL'", len(devices))
			}
			return saveProfile(saveAs, devices[0], makeDefault, printer)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", discovery.DefaultScanTimeout, "How long to browse mDNS")
	cmd.Flags().StringVar(&saveAs, "save", "", "Save the camera found as a profile with this name")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make the saved profile the default")
	return cmd
}

// scanCameras probes the hotspot and browses mDNS, dropping duplicates by
// serial number.
func scanCameras(ctx context.Context, wait time.Duration) []*discovery.Device {
	var devices []*discovery.Device
	seen := make(map[string]bool)
	add := func(d *discovery.Device) {
		if d.Serial != "" {
			if seen[d.Serial] {
				return
			}
			seen[d.Serial] = true
		}
		devices = append(devices, d)
	}

	if d, err := discovery.Probe(ctx, discovery.HotspotURL); err == nil {
		add(d)
	} else {
		logging.Debug("No camera on the hotspot address", zap.Error(err))
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = wait
	found, err := scanner.ScanForDevicesWithContext(ctx)
	if err != nil {
		logging.Warn("mDNS scan failed", zap.Error(err))
	}
	for _, d := range found {
		if err := discovery.Enrich(ctx, d); err != nil {
			logging.Debug("Probe failed", zap.String("host", d.Hostname), zap.Error(err))
		}
		add(d)
	}
	return devices
}

func saveProfile(name string, d *discovery.Device, makeDefault bool, printer *ui.Printer) error {
	reg, err := config.Load()
	if err != nil {
		return err
	}
	profile := reg.SetDevice(name, d.BaseURL())
	profile.Serial = d.Serial
	if makeDefault || reg.DefaultDevice == "" {
		reg.DefaultDevice = name
	}
	if err := reg.Save(); err != nil {
		return err
	}
	path, err := reg.Path()
	if err != nil {
		return err
	}
	printer.Println(fmt.Sprintf("\nSaved profile %q (%s) to %s", name, profile.URL, path))
	return nil
}

func newLangCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [" + config.LanguageEnglish + "|" + config.LanguageChinese + "]",
		Short: "Show or set the interface language",
		Long: `Show or set the interface language.

Setting the language saves it to the client configuration and reloads every
settings group from the camera, as the web page does.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				reg, err := config.Load()
				if err != nil {
					return err
				}
				ui.NewPrinter(opts.out).Println(reg.Language)
				return nil
			}
			return opts.run(func(ctx context.Context, a *app) error {
				if err := a.session.SetLanguage(ctx, args[0]); err != nil {
					return err
				}
				a.done("Language set to %s", args[0])
				return nil
			})(cmd, args)
		},
	}
}
