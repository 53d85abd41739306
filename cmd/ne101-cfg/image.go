package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/codec"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/image"
)

var lightModes = map[string]int{
	"auto":   deviceconfig.LightAuto,
	"custom": deviceconfig.LightCustom,
	"on":     deviceconfig.LightOn,
	"off":    deviceconfig.LightOff,
}

func withImage(opts *globalOptions, fn func(ctx context.Context, a *app, s *image.Section) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		s := a.session.Image
		if err := s.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, s)
	})
}

func (a *app) showImage() {
	l, c := a.session.Image.Light(), a.session.Image.Camera()
	a.show(deviceconfig.FormatImage(&l, &c))
}

func newImageCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Show or change image and fill light settings",
		Args:  cobra.NoArgs,
		RunE: withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
			a.showImage()
			return nil
		}),
	}
	cmd.AddCommand(
		newLightCmd(opts),
		newLuminanceCmd(opts),
		&cobra.Command{
			Use:     "schedule START END",
			Short:   "Set when the fill light may turn on in custom mode",
			Example: "  ne101-cfg image schedule 22:00 06:30",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sh, sm := codec.SplitHourMinute(args[0])
				eh, em := codec.SplitHourMinute(args[1])
				return withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
					start, end, err := s.SetLightSchedule(ctx, sh, sm, eh, em)
					if err != nil {
						return err
					}
					a.done("Fill light window set to %s - %s", start, end)
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:     "frame-size WxH",
			Short:   "Set the capture resolution",
			Example: "  ne101-cfg image frame-size 1920x1080",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				size, err := codec.ParseFrameSize(args[0])
				if err != nil {
					return err
				}
				return withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
					if err := s.SetFrameSize(ctx, size); err != nil {
						return err
					}
					a.done("Frame size set to %s", size)
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "quality Q",
			Short: "Set the JPEG quality (0-63, lower is better)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid quality %q", args[0])
				}
				return withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
					sent, err := s.SetQuality(ctx, q)
					if err != nil {
						return err
					}
					a.done("Quality set to %d", sent)
					return nil
				})(cmd, args)
			},
		},
		newAdjustCmd(opts),
		&cobra.Command{
			Use:   "reset",
			Short: "Reset brightness, contrast, saturation and flips",
			Args:  cobra.NoArgs,
			RunE: withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
				if err := s.ResetAdjustments(ctx); err != nil {
					return err
				}
				a.done("Image adjustments reset")
				return nil
			}),
		},
	)
	return cmd
}

func newLightCmd(opts *globalOptions) *cobra.Command {
	var (
		mode      string
		threshold int
		duty      int
	)
	cmd := &cobra.Command{
		Use:     "light",
		Short:   "Set the fill light mode and levels",
		Example: "  ne101-cfg image light --mode custom --threshold 40 --duty 80",
		Args:    cobra.NoArgs,
	}
	f := cmd.Flags()
	f.StringVar(&mode, "mode", "", "auto, custom, on or off")
	f.IntVar(&threshold, "threshold", 0, "Luminance below which the light turns on")
	f.IntVar(&duty, "duty", 0, "Brightness percent (0-100)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var modeValue int
		if f.Changed("mode") {
			m, err := parseChoice("light mode", mode, lightModes)
			if err != nil {
				return err
			}
			modeValue = m
		}
		return withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
			if f.Changed("mode") {
				if err := s.SetLightMode(ctx, modeValue); err != nil {
					return err
				}
			}
			if f.Changed("threshold") || f.Changed("duty") {
				cur := s.Light()
				t, d := cur.Threshold, cur.Duty
				if f.Changed("threshold") {
					t = threshold
				}
				if f.Changed("duty") {
					d = duty
				}
				if err := s.SetLightLevels(ctx, t, d); err != nil {
					return err
				}
			}
			a.showImage()
			return nil
		})(cmd, args)
	}
	return cmd
}

func newLuminanceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "luminance",
		Short: "Read the current light sensor value",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app) error {
			v, err := a.session.Image.RefreshLuminance(ctx)
			if err != nil {
				return err
			}
			a.printer.Println(strconv.Itoa(v))
			return nil
		}),
	}
}

func newAdjustCmd(opts *globalOptions) *cobra.Command {
	var (
		brightness, contrast, saturation, aeLevel int
		gainCeiling, gain                         int
		agc, flipH, flipV, hdr                    bool
	)
	cmd := &cobra.Command{
		Use:     "adjust",
		Short:   "Tune exposure, color and orientation",
		Example: "  ne101-cfg image adjust --brightness 1 --flip-v",
		Args:    cobra.NoArgs,
	}
	f := cmd.Flags()
	f.IntVar(&brightness, "brightness", 0, "Brightness (-2..2)")
	f.IntVar(&contrast, "contrast", 0, "Contrast (-2..2)")
	f.IntVar(&saturation, "saturation", 0, "Saturation (-2..2)")
	f.IntVar(&aeLevel, "ae-level", 0, "Auto exposure level (-2..2)")
	f.BoolVar(&agc, "agc", false, "Automatic gain control")
	f.IntVar(&gainCeiling, "gain-ceiling", 0, "Gain ceiling when AGC is on")
	f.IntVar(&gain, "gain", 0, "Manual gain when AGC is off")
	f.BoolVar(&flipH, "flip-h", false, "Mirror horizontally")
	f.BoolVar(&flipV, "flip-v", false, "Flip vertically")
	f.BoolVar(&hdr, "hdr", false, "High dynamic range")

	cmd.RunE = withImage(opts, func(ctx context.Context, a *app, s *image.Section) error {
		if f.NFlag() == 0 {
			return fmt.Errorf("nothing to change; see 'ne101-cfg image adjust --help'")
		}
		err := s.Adjust(ctx, func(c *deviceconfig.CameraParams) {
			setInt := func(name string, dst *int, v int) {
				if f.Changed(name) {
					*dst = v
				}
			}
			setFlag := func(name string, dst *deviceconfig.Flag, v bool) {
				if f.Changed(name) {
					*dst = deviceconfig.FlagOf(v)
				}
			}
			setInt("brightness", &c.Brightness, brightness)
			setInt("contrast", &c.Contrast, contrast)
			setInt("saturation", &c.Saturation, saturation)
			setInt("ae-level", &c.AELevel, aeLevel)
			setInt("gain-ceiling", &c.GainCeiling, gainCeiling)
			setInt("gain", &c.Gain, gain)
			setFlag("agc", &c.AGC, agc)
			setFlag("flip-h", &c.FlipHorizontal, flipH)
			setFlag("flip-v", &c.FlipVertical, flipV)
			setFlag("hdr", &c.HDR, hdr)
		})
		if err != nil {
			return err
		}
		a.showImage()
		return nil
	})
	return cmd
}
