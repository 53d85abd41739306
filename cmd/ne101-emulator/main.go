// Ne101-emulator serves an in-memory NE101 camera configuration API.
//
// It answers every endpoint the camera's configuration server exposes,
// enforces the camera's one-request-at-a-time limit, and keeps the written
// settings in memory so ne101-cfg can be tried without hardware.
//
// Usage:
//
//	ne101-emulator serve [flags]
//
// See 'ne101-emulator serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/emulator"
	"github.com/muurk/ne101/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ne101-emulator",
	Short: "NE101 Camera Emulator",
	Long: `A standalone emulator of the NE101 sensing camera's configuration server.

The emulator starts with factory defaults and keeps every change in memory.
Point ne101-cfg at it with --device http://HOST:PORT.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host     string
	port     int
	latency  time.Duration
	logLevel string
	cellular bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emulated camera",
	Long: `Start the emulated camera on a TCP port.

Requests are answered one at a time, like the real camera. Use --latency to
make the slow responses of a camera on a weak link visible.`,
	Example: `  # Serve on the default port
  ne101-emulator serve

  # Emulate a cellular unit answering slowly
  ne101-emulator serve --port 8081 --cellular --latency 300ms --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Address to listen on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	serveCmd.Flags().DurationVar(&latency, "latency", 0, "Delay added to every response")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&cellular, "cellular", false, "Report a cellular (cat1) network module instead of Wi-Fi")
}

func runServe(cmd *cobra.Command, args []string) error {
	var opts []emulator.Option
	if cellular {
		info := emulator.New().DeviceInfo()
		info.NetMod = deviceconfig.NetModCellular
		opts = append(opts, emulator.WithDeviceInfo(info))
	}

	srv, err := emulator.NewServer(&emulator.Config{
		Host:     host,
		Port:     port,
		Latency:  latency,
		LogLevel: logLevel,
	}, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "NE101 emulator on http://%s:%d (Ctrl+C to stop)\n", host, port)
	return srv.Start(cmd.Context())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Banner("ne101-emulator"))
	},
}
