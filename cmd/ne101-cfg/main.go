// Ne101-cfg configures NE101 sensing cameras from the terminal.
//
// It talks to the camera's built-in configuration server, either on the
// camera's own hotspot or on a shared station network, and covers every
// settings group of the camera's web page: capture and trigger, upload
// schedule, image and fill light, MQTT data report and credentials, Wi-Fi,
// cellular and device maintenance.
//
// Usage:
//
//	ne101-cfg [command] [flags]
//
// Cameras can be addressed by URL or by a profile name saved with
// 'ne101-cfg scan --save'. See 'ne101-cfg --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/ui"
	"github.com/muurk/ne101/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			ui.NewPrinter(os.Stderr).PrintError("Command failed", err)
		}
		stop()
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	device        string
	timeout       time.Duration
	logLevel      string
	desktopNotify bool
	assumeYes     bool

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "ne101-cfg",
		Short: "NE101 Sensing Camera Configuration Utility",
		Long: `A standalone utility for configuring NE101 sensing cameras.

Connect to the camera's hotspot (NE101_xxxxxx) and run commands against the
default address, or save cameras found on your network as profiles with
'ne101-cfg scan --save <name>'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	// Disable automatic completion command generation
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&opts.device, "device", "", "Camera profile name or URL (default: the default profile)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (default from config; 0 waits until interrupted)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: NE101_LOG_LEVEL or silent)")
	flags.BoolVar(&opts.desktopNotify, "desktop-notify", false, "Also show notifications on the desktop")
	flags.BoolVarP(&opts.assumeYes, "yes", "y", false, "Answer yes to confirmations when not running in a terminal")

	root.AddCommand(
		newShowCmd(opts),
		newScanCmd(opts),
		newCaptureCmd(opts),
		newTriggerCmd(opts),
		newUploadCmd(opts),
		newImageCmd(opts),
		newMQTTCmd(opts),
		newCertCmd(opts),
		newWifiCmd(opts),
		newCellularCmd(opts),
		newDeviceCmd(opts),
		newLangCmd(opts),
		newProfileCmd(opts),
		newTUICmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Banner("ne101-cfg"))
		},
	}
}
