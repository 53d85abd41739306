package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/config"
	"github.com/muurk/ne101/internal/credentials"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/system"
	"github.com/muurk/ne101/internal/ui"
)

func withSystem(opts *globalOptions, fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		if err := a.session.System.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

func (a *app) showDevice() {
	s := a.session.System
	info, battery, ntp := s.Info(), s.Battery(), s.NTP()
	a.show(deviceconfig.FormatDeviceInfo(&info, &battery, &ntp))
}

func newDeviceCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Device information and maintenance",
		Args:  cobra.NoArgs,
		RunE: withSystem(opts, func(ctx context.Context, a *app) error {
			a.showDevice()
			return nil
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "name NAME",
			Short: "Rename the camera",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSystem(opts, func(ctx context.Context, a *app) error {
					if err := a.session.System.Rename(ctx, args[0]); err != nil {
						return err
					}
					a.done("Camera renamed to %q", args[0])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "ntp on|off",
			Short: "Switch network time sync",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				return opts.run(func(ctx context.Context, a *app) error {
					if err := a.session.System.SetNTP(ctx, on); err != nil {
						return err
					}
					a.done("NTP sync %s", args[0])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "time",
			Short: "Set the camera clock from this computer",
			Long: `Set the camera clock and time zone from this computer.

A profile with a timezone set uses that zone instead of the local one.`,
			Args: cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, a *app) error {
				if err := a.session.System.SyncTime(ctx); err != nil {
					return err
				}
				a.done("Camera clock set")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "sleep",
			Short: "Put the camera to sleep",
			Args:  cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, a *app) error {
				sent, err := a.session.System.Sleep(ctx)
				if err != nil {
					return err
				}
				if !sent {
					a.printer.Println("Cancelled")
					return nil
				}
				a.done("Camera is going to sleep")
				return nil
			}),
		},
		newUpgradeCmd(opts),
	)
	return cmd
}

func newUpgradeCmd(opts *globalOptions) *cobra.Command {
	var settle time.Duration
	cmd := &cobra.Command{
		Use:   "upgrade FILE",
		Short: "Flash a firmware image",
		Long: `Flash a firmware image.

The camera restarts once the image is written. After a successful upgrade
every settings group is read again.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().DurationVar(&settle, "settle", system.DefaultSettleDelay, "How long to let the camera restart before reporting")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		fw, err := credentials.OpenLocal(args[0])
		if err != nil {
			return err
		}
		return opts.run(func(ctx context.Context, a *app) error {
			a.printer.Println(fmt.Sprintf("Firmware: %s (%s)", fw.Name(), humanize.IBytes(uint64(fw.Size()))))
			sent, err := a.session.System.Upgrade(ctx, fw)
			if err != nil {
				return err
			}
			if !sent {
				a.printer.Println("Cancelled")
			}
			return nil
		}, withSettleDelay(settle))(cmd, args)
	}
	return cmd
}

func newProfileCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved cameras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := config.Load()
			if err != nil {
				return err
			}
			printProfiles(ui.NewPrinter(opts.out), reg)
			return nil
		},
	}

	var (
		timezone    string
		makeDefault bool
	)
	add := &cobra.Command{
		Use:     "add NAME URL",
		Short:   "Save a camera under a name",
		Example: "  ne101-cfg profile add garden http://192.168.10.42 --timezone Europe/Berlin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRegistry(opts, func(reg *config.Registry) (string, error) {
				d := reg.SetDevice(args[0], normalizeURL(args[1]))
				if cmd.Flags().Changed("timezone") {
					d.Timezone = timezone
				}
				if makeDefault || reg.DefaultDevice == "" {
					reg.DefaultDevice = args[0]
				}
				return fmt.Sprintf("Saved profile %q (%s)", args[0], d.URL), nil
			})
		},
	}
	add.Flags().StringVar(&timezone, "timezone", "", "IANA time zone used for 'device time'")
	add.Flags().BoolVar(&makeDefault, "default", false, "Make this the default profile")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "rm NAME",
			Short: "Forget a saved camera",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editRegistry(opts, func(reg *config.Registry) (string, error) {
					if reg.GetDevice(args[0]) == nil {
						return "", fmt.Errorf("no profile named %q", args[0])
					}
					reg.RemoveDevice(args[0])
					return fmt.Sprintf("Removed profile %q", args[0]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "default NAME",
			Short: "Use a saved camera when --device is not given",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editRegistry(opts, func(reg *config.Registry) (string, error) {
					if reg.GetDevice(args[0]) == nil {
						return "", fmt.Errorf("no profile named %q", args[0])
					}
					reg.DefaultDevice = args[0]
					return fmt.Sprintf("Default profile is now %q", args[0]), nil
				})
			},
		},
	)
	return cmd
}

// editRegistry loads the client configuration, applies edit and saves it.
func editRegistry(opts *globalOptions, edit func(reg *config.Registry) (string, error)) error {
	reg, err := config.Load()
	if err != nil {
		return err
	}
	msg, err := edit(reg)
	if err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}
	path, err := reg.Path()
	if err != nil {
		return err
	}
	ui.NewPrinter(opts.out).PrintSuccess(msg, ui.Param{Key: "Config", Value: path})
	return nil
}

func printProfiles(p *ui.Printer, reg *config.Registry) {
	names := reg.DeviceNames()
	if len(names) == 0 {
		p.Println("No saved cameras. Add one with 'ne101-cfg profile add NAME URL' or 'ne101-cfg scan --save NAME'.")
		return
	}
	for _, name := range names {
		d := reg.GetDevice(name)
		marker := " "
		if name == reg.DefaultDevice {
			marker = "*"
		}
		var extra []string
		if d.Serial != "" {
			extra = append(extra, "SN "+d.Serial)
		}
		if d.Timezone != "" {
			extra = append(extra, d.Timezone)
		}
		if !d.LastSeen.IsZero() {
			extra = append(extra, "seen "+humanize.Time(d.LastSeen))
		}
		line := fmt.Sprintf("%s %-16s %s", marker, name, d.URL)
		if len(extra) > 0 {
			line += "  (" + strings.Join(extra, ", ") + ")"
		}
		p.Println(line)
	}
}
