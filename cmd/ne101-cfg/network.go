package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ne101/internal/cellular"
	"github.com/muurk/ne101/internal/credentials"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/mqtt"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/wifi"
)

func withMQTT(opts *globalOptions, fn func(ctx context.Context, a *app, s *mqtt.Section) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		s := a.session.MQTT
		if err := s.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, s)
	})
}

func (a *app) showMQTT() {
	p := a.session.MQTT.Platform()
	a.show(deviceconfig.FormatMQTT(&p))
}

func newMQTTCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mqtt",
		Short: "Show or change the MQTT data report settings",
		Args:  cobra.NoArgs,
		RunE: withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
			a.showMQTT()
			return nil
		}),
	}
	cmd.AddCommand(newMQTTSetCmd(opts), newMQTTTLSCmd(opts), newMQTTStatusCmd(opts))
	return cmd
}

func newMQTTSetCmd(opts *globalOptions) *cobra.Command {
	var next deviceconfig.MQTTPlatform
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Change broker settings",
		Example: "  ne101-cfg mqtt set --host broker.lan --topic cameras/garden --qos 1",
		Args:    cobra.NoArgs,
	}
	f := cmd.Flags()
	f.StringVar(&next.Host, "host", "", "Broker host name or address")
	f.IntVar(&next.Port, "port", 0, "Broker port")
	f.StringVar(&next.Topic, "topic", "", "Topic pictures are published to")
	f.StringVar(&next.ClientID, "client-id", "", "MQTT client ID")
	f.IntVar(&next.QoS, "qos", 0, "Quality of service (0-2)")
	f.StringVar(&next.Username, "username", "", "Broker user name")
	f.StringVar(&next.Password, "password", "", "Broker password")

	cmd.RunE = withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
		if f.NFlag() == 0 {
			return fmt.Errorf("nothing to change; see 'ne101-cfg mqtt set --help'")
		}
		if err := s.Save(ctx, func(p *deviceconfig.MQTTPlatform) {
			setString := func(name string, dst *string, v string) {
				if f.Changed(name) {
					*dst = v
				}
			}
			setString("host", &p.Host, next.Host)
			setString("topic", &p.Topic, next.Topic)
			setString("client-id", &p.ClientID, next.ClientID)
			setString("username", &p.Username, next.Username)
			setString("password", &p.Password, next.Password)
			if f.Changed("port") {
				p.Port = next.Port
			}
			if f.Changed("qos") {
				p.QoS = next.QoS
			}
		}); err != nil {
			return err
		}
		a.showMQTT()
		return nil
	})
	return cmd
}

func newMQTTTLSCmd(opts *globalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "tls on|off",
		Short: "Switch TLS for the broker connection",
		Long: `Switch TLS for the broker connection.

When the broker port is unset the standard port for the choice is used
(8883 with TLS, 1883 without). Pass --port to pick another one.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&port, "port", 0, "Broker port to use with the new setting")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
			return s.Save(ctx, func(p *deviceconfig.MQTTPlatform) {
				if cmd.Flags().Changed("port") {
					p.Port = port
				}
				mqtt.ApplyTLS(p, on)
			})
		})(cmd, args)
	}
	return cmd
}

func newMQTTStatusCmd(opts *globalOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the camera is connected to the broker",
		Long: `Show whether the camera is connected to the broker.

With --watch the status is polled until interrupted and every change is
printed.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling and print changes")
	cmd.Flags().DurationVar(&interval, "interval", mqtt.DefaultPollInterval, "Delay between polls with --watch")

	cmd.RunE = withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
		a.printer.Println(brokerState(s.Connected()))
		if !watch {
			return nil
		}

		sub := a.bus.Subscribe(events.TopicMQTTStatus)
		poller := s.NewStatusPoller(mqtt.WithInterval(interval), mqtt.WithPublisher(a.bus))
		poller.Start(ctx)
		defer poller.Stop()

		last := s.Connected()
		for {
			select {
			case <-ctx.Done():
				return nil
			case raw, ok := <-sub:
				if !ok {
					return nil
				}
				msg, ok := raw.(events.MQTTStatus)
				if !ok || msg.Connected == last {
					continue
				}
				last = msg.Connected
				a.printer.Println(fmt.Sprintf("%s  %s", time.Now().Format(time.TimeOnly), brokerState(last)))
			}
		}
	})
	return cmd
}

func brokerState(connected bool) string {
	if connected {
		return "MQTT: connected"
	}
	return "MQTT: disconnected"
}

func newCertCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Manage the MQTT TLS credentials (ca, cert, key)",
		Args:  cobra.NoArgs,
		RunE: withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
			for _, slot := range credentials.Slots() {
				name := a.session.Credentials.FileName(slot)
				if name == "" {
					name = "(none)"
				}
				a.printer.Println(fmt.Sprintf("%-20s %s", slot.Label()+":", name))
			}
			return nil
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "upload ca|cert|key FILE",
			Short:   "Upload a credential file and record it in the MQTT settings",
			Example: "  ne101-cfg cert upload ca ./ca.crt",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				slot, err := credentials.ParseSlot(args[0])
				if err != nil {
					return err
				}
				file, err := credentials.OpenLocal(args[1])
				if err != nil {
					return err
				}
				return withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
					if err := a.session.Credentials.Upload(ctx, slot, file); err != nil {
						return err
					}
					return s.Save(ctx, nil)
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "clear ca|cert|key",
			Short: "Remove a credential file from the camera",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				slot, err := credentials.ParseSlot(args[0])
				if err != nil {
					return err
				}
				return withMQTT(opts, func(ctx context.Context, a *app, s *mqtt.Section) error {
					cleared, err := a.session.Credentials.Clear(ctx, slot)
					if !cleared {
						if err == nil {
							a.printer.Println("Cancelled")
						}
						return err
					}
					if saveErr := s.Save(ctx, nil); saveErr != nil {
						return errors.Join(err, saveErr)
					}
					return err
				})(cmd, args)
			},
		},
	)
	return cmd
}

func newWifiCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wifi",
		Short: "List networks or join the camera to one",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app) error {
			if err := a.session.Wifi.Refresh(ctx); err != nil {
				return err
			}
			a.show(formatWifi(a.session.Wifi.Entries()))
			return nil
		}),
	}

	var password string
	connect := &cobra.Command{
		Use:   "connect SSID",
		Short: "Join the camera to a network",
		Long: `Join the camera to a network.

Encrypted networks ask for the password, and ask again after a failed
attempt. When not running in a terminal, --password is tried once.`,
		Args: cobra.ExactArgs(1),
	}
	connect.Flags().StringVar(&password, "password", "", "Network password")
	connect.RunE = func(cmd *cobra.Command, args []string) error {
		ssid := args[0]
		return opts.run(func(ctx context.Context, a *app) error {
			m := a.session.Wifi
			if err := m.Refresh(ctx); err != nil {
				return err
			}
			state, err := m.Connect(ctx, ssid)
			if err != nil && !errors.Is(err, notify.ErrDismissed) {
				return err
			}
			switch state.(type) {
			case wifi.Connected:
				a.done("Connected to %s", ssid)
				return nil
			case wifi.Failed:
				return fmt.Errorf("could not connect to %s", ssid)
			}
			if err != nil {
				a.printer.Println("Cancelled")
			}
			return nil
		}, withPassword(password))(cmd, args)
	}

	region := &cobra.Command{
		Use:   "region [CODE]",
		Short: "Show or set the Wi-Fi region",
		Long: `Show or set the Wi-Fi region.

The allowed country codes depend on the firmware variant: FCC units accept
AU, KR, NZ, SG and US, CE units accept EU and IN.`,
		Args: cobra.MaximumNArgs(1),
	}
	region.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.run(func(ctx context.Context, a *app) error {
			if err := a.session.System.Load(ctx); err != nil {
				return err
			}
			if len(args) == 0 {
				info := a.session.System.Info()
				a.printer.Println(fmt.Sprintf("Region: %s (allowed: %s)", orDash(info.CountryCode), strings.Join(a.session.System.Regions(), ", ")))
				return nil
			}
			code := strings.ToUpper(args[0])
			if err := a.session.ChangeRegion(ctx, code); err != nil {
				return err
			}
			a.done("Wi-Fi region set to %s", code)
			return nil
		})(cmd, args)
	}

	cmd.AddCommand(connect, region)
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var cellAuthTypes = map[string]int{
	"none":        deviceconfig.CellAuthNone,
	"pap":         deviceconfig.CellAuthPAP,
	"chap":        deviceconfig.CellAuthCHAP,
	"pap-or-chap": deviceconfig.CellAuthPAPOrCHAP,
}

func withCellular(opts *globalOptions, fn func(ctx context.Context, a *app, s *cellular.Section) error) func(*cobra.Command, []string) error {
	return opts.run(func(ctx context.Context, a *app) error {
		s := a.session.Cellular
		if err := s.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, s)
	})
}

func (a *app) showCellular() {
	p, st := a.session.Cellular.Params(), a.session.Cellular.Status()
	a.show(deviceconfig.FormatCellular(&p, &st))
}

func newCellularCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cellular",
		Short: "Show or change the cellular modem settings",
		Args:  cobra.NoArgs,
		RunE: withCellular(opts, func(ctx context.Context, a *app, s *cellular.Section) error {
			a.showCellular()
			return nil
		}),
	}

	var (
		next deviceconfig.CellularParams
		auth string
	)
	set := &cobra.Command{
		Use:     "set",
		Short:   "Change the APN, credentials or PIN",
		Example: "  ne101-cfg cellular set --apn internet --auth pap --user me --password secret",
		Args:    cobra.NoArgs,
	}
	f := set.Flags()
	f.StringVar(&next.APN, "apn", "", "Access point name")
	f.StringVar(&next.User, "user", "", "APN user name")
	f.StringVar(&next.Password, "password", "", "APN password")
	f.StringVar(&next.PIN, "pin", "", "SIM PIN")
	f.StringVar(&auth, "auth", "", "Authentication: none, pap, chap or pap-or-chap")
	set.RunE = func(cmd *cobra.Command, args []string) error {
		if f.NFlag() == 0 {
			return fmt.Errorf("nothing to change; see 'ne101-cfg cellular set --help'")
		}
		authValue := -1
		if f.Changed("auth") {
			v, err := parseChoice("authentication", auth, cellAuthTypes)
			if err != nil {
				return err
			}
			authValue = v
		}
		return withCellular(opts, func(ctx context.Context, a *app, s *cellular.Section) error {
			err := s.Save(ctx, func(p *deviceconfig.CellularParams) {
				setString := func(name string, dst *string, v string) {
					if f.Changed(name) {
						*dst = v
					}
				}
				setString("apn", &p.APN, next.APN)
				setString("user", &p.User, next.User)
				setString("password", &p.Password, next.Password)
				setString("pin", &p.PIN, next.PIN)
				if authValue >= 0 {
					p.Authentication = authValue
				}
			})
			if err != nil {
				return err
			}
			a.showCellular()
			return nil
		})(cmd, args)
	}

	at := &cobra.Command{
		Use:     "at COMMAND",
		Short:   "Send an AT command to the modem",
		Example: "  ne101-cfg cellular at AT+CSQ",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			return opts.run(func(ctx context.Context, a *app) error {
				reply, err := a.session.Cellular.SendCommand(ctx, command)
				if err != nil {
					return err
				}
				if reply.Result != deviceconfig.ResultOK {
					return fmt.Errorf("modem rejected %q (result %d): %s", command, reply.Result, reply.Message)
				}
				a.printer.Println(reply.Message)
				return nil
			})(cmd, args)
		},
	}

	cmd.AddCommand(set, at)
	return cmd
}
