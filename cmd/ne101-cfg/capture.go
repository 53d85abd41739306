package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/capture"
	"github.com/muurk/ne101/internal/deviceconfig"
)

var (
	scheduleModes = map[string]int{"timed": deviceconfig.CaptureTimed, "interval": deviceconfig.CaptureInterval}
	intervalUnits = map[string]int{
		"min": deviceconfig.UnitMinute, "minute": deviceconfig.UnitMinute,
		"hour": deviceconfig.UnitHour,
		"day":  deviceconfig.UnitDay,
	}
	triggerModes = map[string]int{"alarm": deviceconfig.TriggerAlarm, "pir": deviceconfig.TriggerPIR}
)

// withCapture loads the capture group before fn.
func withCapture(opts *globalOptions, fn func(ctx context.Context, a *app, s *capture.Section) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		s := a.session.Capture
		if err := s.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, s)
	})
}

func (a *app) showCapture() {
	c, t := a.session.Capture.Params(), a.session.Capture.Trigger()
	a.show(deviceconfig.FormatCapture(&c, &t))
}

func newCaptureCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Show or change scheduled capture",
		Args:  cobra.NoArgs,
		RunE: withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
			a.showCapture()
			return nil
		}),
	}

	toggle := func(use, short string, set func(s *capture.Section, ctx context.Context, on bool) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " on|off",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := set(s, ctx, on); err != nil {
						return err
					}
					a.done("%s %s", short, args[0])
					return nil
				})(cmd, args)
			},
		}
	}

	cmd.AddCommand(
		toggle("schedule", "Scheduled capture", (*capture.Section).SetScheduledCapture),
		toggle("button", "Capture on button press", (*capture.Section).SetButtonCapture),
		&cobra.Command{
			Use:   "mode timed|interval",
			Short: "Capture at fixed times or at an interval",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mode, err := parseChoice("capture mode", args[0], scheduleModes)
				if err != nil {
					return err
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := s.SetScheduleMode(ctx, mode); err != nil {
						return err
					}
					a.done("Capture mode set to %s", args[0])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:     "interval VALUE min|hour|day",
			Short:   "Set the interval capture period",
			Example: "  ne101-cfg capture interval 30 min",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid interval %q", args[0])
				}
				unit, err := parseChoice("unit", args[1], intervalUnits)
				if err != nil {
					return err
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := s.SetInterval(ctx, value, unit); err != nil {
						return err
					}
					a.done("Capture interval set to %d %s", value, args[1])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:     "add-time DAY HH:MM[:SS]",
			Short:   "Add a timed capture entry",
			Example: "  ne101-cfg capture add-time daily 08:30\n  ne101-cfg capture add-time mon 12:00:30",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				day, err := parseDay(args[0])
				if err != nil {
					return err
				}
				h, m, sec, err := parseClock(args[1])
				if err != nil {
					return err
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := s.AddTime(ctx, day, h, m, sec); err != nil {
						return err
					}
					a.showCapture()
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "rm-time N",
			Short: "Remove timed capture entry N",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseEntry(args[0])
				if err != nil {
					return err
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := s.RemoveTime(ctx, index); err != nil {
						return err
					}
					a.showCapture()
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "warmup MS",
			Short: "Set the camera warm-up delay in milliseconds",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ms, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid warm-up %q", args[0])
				}
				return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
					if err := s.SetWarmup(ctx, ms); err != nil {
						return err
					}
					a.done("Warm-up set to %d ms", ms)
					return nil
				})(cmd, args)
			},
		},
	)
	return cmd
}

func newTriggerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Show or change trigger capture",
		Long: `Show or change trigger capture.

Trigger capture takes a picture on an alarm input or PIR motion. Turning it
off remembers the selected mode, so 'trigger mode on' restores it.`,
		Args: cobra.NoArgs,
		RunE: withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
			a.showCapture()
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mode off|on|alarm|pir",
		Short: "Disable trigger capture or select its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, explicit := 0, false
			switch args[0] {
			case "off", "on":
			default:
				m, err := parseChoice("trigger mode", args[0], triggerModes)
				if err != nil {
					return err
				}
				mode, explicit = m, true
			}
			return withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
				if args[0] == "off" {
					if err := s.SetTriggerCapture(ctx, false); err != nil {
						return err
					}
					a.done("Trigger capture disabled")
					return nil
				}
				if !s.Params().AlarmInCapture.Bool() {
					if err := s.SetTriggerCapture(ctx, true); err != nil {
						return err
					}
				}
				if explicit {
					if err := s.SetTriggerMode(ctx, mode); err != nil {
						return err
					}
				}
				a.done("Trigger capture: %s", deviceconfig.TriggerModeName(s.Trigger().Mode))
				return nil
			})(cmd, args)
		},
	})

	pirCmd := &cobra.Command{
		Use:   "pir",
		Short: "Tune the PIR motion sensor",
		Long: `Tune the PIR motion sensor.

Values outside the sensor's range are clamped: sensitivity 0-255, blind time
0.5-8 s, pulse count 1-4, window 2-8 s. Unset flags keep their current value.`,
		Example: "  ne101-cfg trigger pir --sensitivity 40 --blind 2.5",
		Args:    cobra.NoArgs,
	}
	var p capture.PIR
	pf := pirCmd.Flags()
	pf.Float64Var(&p.Sensitivity, "sensitivity", 0, "Sensitivity (0-255)")
	pf.Float64Var(&p.BlindTime, "blind", 0, "Blind time in seconds (0.5-8)")
	pf.Float64Var(&p.Pulse, "pulse", 0, "Pulse count (1-4)")
	pf.Float64Var(&p.Window, "window", 0, "Window in seconds (2-8)")
	pirCmd.RunE = withCapture(opts, func(ctx context.Context, a *app, s *capture.Section) error {
		next := s.PIR()
		if pf.Changed("sensitivity") {
			next.Sensitivity = p.Sensitivity
		}
		if pf.Changed("blind") {
			next.BlindTime = p.BlindTime
		}
		if pf.Changed("pulse") {
			next.Pulse = p.Pulse
		}
		if pf.Changed("window") {
			next.Window = p.Window
		}
		if err := s.SetPIR(ctx, next); err != nil {
			return err
		}
		got := s.PIR()
		a.done("PIR set: sensitivity %.0f, blind %.1f s, pulse %.0f, window %.0f s",
			got.Sensitivity, got.BlindTime, got.Pulse, got.Window)
		return nil
	})
	cmd.AddCommand(pirCmd)
	return cmd
}
