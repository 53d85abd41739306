package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/upload"
)

var uploadModes = map[string]int{"immediate": deviceconfig.UploadImmediate, "scheduled": deviceconfig.UploadScheduled}

func withUpload(opts *globalOptions, fn func(ctx context.Context, a *app, s *upload.Section) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		s := a.session.Upload
		if err := s.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, s)
	})
}

func (a *app) showUpload() {
	u := a.session.Upload.Params()
	a.show(deviceconfig.FormatUpload(&u))
}

func newUploadCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Show or change when pictures are uploaded",
		Args:  cobra.NoArgs,
		RunE: withUpload(opts, func(ctx context.Context, a *app, s *upload.Section) error {
			a.showUpload()
			return nil
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "mode immediate|scheduled",
			Short: "Upload after every capture or on a schedule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mode, err := parseChoice("upload mode", args[0], uploadModes)
				if err != nil {
					return err
				}
				return withUpload(opts, func(ctx context.Context, a *app, s *upload.Section) error {
					if err := s.SetMode(ctx, mode); err != nil {
						return err
					}
					a.done("Upload mode set to %s", args[0])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "add-time DAY HH:MM[:SS]",
			Short: "Add a scheduled upload entry",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				day, err := parseDay(args[0])
				if err != nil {
					return err
				}
				h, m, sec, err := parseClock(args[1])
				if err != nil {
					return err
				}
				return withUpload(opts, func(ctx context.Context, a *app, s *upload.Section) error {
					if err := s.AddTime(ctx, day, h, m, sec); err != nil {
						return err
					}
					a.showUpload()
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "rm-time N",
			Short: "Remove scheduled upload entry N",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseEntry(args[0])
				if err != nil {
					return err
				}
				return withUpload(opts, func(ctx context.Context, a *app, s *upload.Section) error {
					if err := s.RemoveTime(ctx, index); err != nil {
						return err
					}
					a.showUpload()
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "retries N",
			Short: "Set how often the camera retries a failed upload",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid retry count %q", args[0])
				}
				return withUpload(opts, func(ctx context.Context, a *app, s *upload.Section) error {
					if err := s.SetRetryCount(ctx, n); err != nil {
						return err
					}
					a.done("Upload retry count set to %d", n)
					return nil
				})(cmd, args)
			},
		},
	)
	return cmd
}
