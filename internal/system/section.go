package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/codec"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// DefaultSettleDelay is how long a successful upgrade is given before it
// is reported.
const DefaultSettleDelay = 5 * time.Second

// Dialog text.
const (
	TipNoFirmware     = "No firmware file specified."
	TipConfirmUpgrade = "Really upgrade the firmware? The camera restarts when it is done."
	TipUpgradeWait    = "Upgrading, please wait..."
	TipUpgradeSuccess = "Firmware updated. The page will reload."
	TipUpgradeFailed  = "Upgrade failed, please try again."
	TipConfirmSleep   = "Put the camera to sleep? It stops serving this page until it wakes up."
)

var (
	ErrNoFirmware    = errors.New("no firmware file selected")
	ErrUpgradeFailed = errors.New("firmware upgrade failed")
	errNoDialog      = errors.New("no dialog available to confirm")
)

// Firmware is an upgrade image.
type Firmware interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Option configures a Section.
type Option func(*Section)

// WithClock replaces time.Now for time sync.
func WithClock(now func() time.Time) Option {
	return func(s *Section) { s.now = now }
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Section) { s.settle = d }
}

// WithReload sets the hook run once the final upgrade tip is acknowledged.
func WithReload(fn func(ctx context.Context)) Option {
	return func(s *Section) { s.reload = fn }
}

// Section owns the device identity groups.
type Section struct {
	gw     deviceconfig.Gateway
	ports  notify.Ports
	now    func() time.Time
	settle time.Duration
	reload func(ctx context.Context)

	mu      sync.Mutex
	info    deviceconfig.DeviceInfo
	battery deviceconfig.Battery
	ntp     deviceconfig.NTPSync
}

func NewSection(gw deviceconfig.Gateway, ports notify.Ports, opts ...Option) *Section {
	s := &Section{
		gw:     gw,
		ports:  ports.WithDefaults(),
		now:    time.Now,
		settle: DefaultSettleDelay,
		ntp:    deviceconfig.NTPSync{Enable: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Section) Info() deviceconfig.DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Section) Battery() deviceconfig.Battery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battery
}

func (s *Section) NTP() deviceconfig.NTPSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ntp
}

// Regions lists the Wi-Fi regions the firmware variant allows.
func (s *Section) Regions() []string {
	info := s.Info()
	return info.Regions()
}

// SetCountryCode records a region the device has accepted.
func (s *Section) SetCountryCode(code string) {
	s.mu.Lock()
	s.info.CountryCode = code
	s.mu.Unlock()
}

func (s *Section) fail(err error) error {
	s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
	return err
}

// Load reads device info, battery and NTP, in that order, stopping at the
// first failure.
func (s *Section) Load(ctx context.Context) error {
	var info deviceconfig.DeviceInfo
	if err := s.gw.Read(ctx, deviceconfig.GetDevInfo, &info); err != nil {
		return s.fail(fmt.Errorf("read device info: %w", err))
	}
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()

	var battery deviceconfig.Battery
	if err := s.gw.Read(ctx, deviceconfig.GetDevBattery, &battery); err != nil {
		return s.fail(fmt.Errorf("read battery: %w", err))
	}
	s.mu.Lock()
	s.battery = battery
	s.mu.Unlock()

	var ntp deviceconfig.NTPSync
	if err := s.gw.Read(ctx, deviceconfig.GetDevNtpSync, &ntp); err != nil {
		return s.fail(fmt.Errorf("read ntp: %w", err))
	}
	s.mu.Lock()
	s.ntp = ntp
	s.mu.Unlock()

	logging.Debug("Device identity loaded",
		zap.String("name", info.Name),
		zap.String("netmod", info.NetMod),
		zap.String("firmware", info.SoftVersion),
	)
	return nil
}

// Rename changes the camera name. An empty name is rejected locally.
func (s *Section) Rename(ctx context.Context, name string) error {
	if err := deviceconfig.ValidateDeviceName(name); err != nil {
		return err
	}
	info := s.Info()
	if _, err := s.gw.Write(ctx, deviceconfig.SetDevInfo, info.NameUpdate(name)); err != nil {
		return s.fail(fmt.Errorf("rename device: %w", err))
	}
	s.mu.Lock()
	s.info.Name = name
	s.mu.Unlock()
	return nil
}

// SetNTP switches network time sync on or off.
func (s *Section) SetNTP(ctx context.Context, enabled bool) error {
	next := deviceconfig.NTPSync{Enable: deviceconfig.FlagOf(enabled)}
	if _, err := s.gw.Write(ctx, deviceconfig.SetDevNtpSync, next); err != nil {
		return s.fail(fmt.Errorf("write ntp: %w", err))
	}
	s.mu.Lock()
	s.ntp = next
	s.mu.Unlock()
	return nil
}

// SyncTime sets the device clock and zone from the local clock.
func (s *Section) SyncTime(ctx context.Context) error {
	now := s.now()
	payload := deviceconfig.DeviceTime{TZ: codec.PosixTZ(now), TS: now.Unix()}
	if _, err := s.gw.Write(ctx, deviceconfig.SetDevTime, payload); err != nil {
		return s.fail(fmt.Errorf("sync time: %w", err))
	}
	logging.Debug("Device time synced", zap.String("tz", payload.TZ), zap.Int64("ts", payload.TS))
	return nil
}

func (s *Section) confirm(ctx context.Context, msg string) (bool, error) {
	if s.ports.Dialog == nil {
		return false, errNoDialog
	}
	ok, err := s.ports.Dialog.ShowTip(ctx, notify.Tip{Message: msg, Cancel: true})
	if errors.Is(err, notify.ErrDismissed) {
		return false, nil
	}
	return ok, err
}

func (s *Section) tip(ctx context.Context, msg string) {
	if s.ports.Dialog == nil {
		return
	}
	if _, err := s.ports.Dialog.ShowTip(ctx, notify.Tip{Message: msg}); err != nil {
		logging.Debug("Tip dialog failed", zap.Error(err))
	}
}

// Sleep puts the camera to sleep once the user confirms. The bool reports
// whether the request was sent.
func (s *Section) Sleep(ctx context.Context) (bool, error) {
	ok, err := s.confirm(ctx, TipConfirmSleep)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.gw.Write(ctx, deviceconfig.SetDevSleep, nil); err != nil {
		return true, s.fail(fmt.Errorf("sleep: %w", err))
	}
	logging.Info("Device sleep requested")
	return true, nil
}

// Upgrade flashes fw after the user confirms. The bool reports whether the
// image was sent.
func (s *Section) Upgrade(ctx context.Context, fw Firmware) (bool, error) {
	if fw == nil || fw.Name() == "" {
		s.tip(ctx, TipNoFirmware)
		return false, ErrNoFirmware
	}
	ok, err := s.confirm(ctx, TipConfirmUpgrade)
	if err != nil || !ok {
		return false, err
	}

	progress, err := s.ports.Dialog.ShowUpgrade(ctx, TipUpgradeWait)
	if err != nil {
		return false, err
	}

	err = s.flash(ctx, fw)
	if err != nil {
		progress.Close()
		logging.Warn("Firmware upgrade failed", zap.String("file", fw.Name()), zap.Error(err))
		s.finish(ctx, TipUpgradeFailed)
		return true, err
	}

	select {
	case <-time.After(s.settle):
	case <-ctx.Done():
		progress.Close()
		return true, ctx.Err()
	}
	progress.Complete()
	progress.Close()
	logging.Info("Firmware upgraded", zap.String("file", fw.Name()))
	s.finish(ctx, TipUpgradeSuccess)
	return true, nil
}

func (s *Section) flash(ctx context.Context, fw Firmware) error {
	content, err := fw.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", fw.Name(), err)
	}
	defer content.Close()

	logging.Info("Uploading firmware", zap.String("file", fw.Name()), zap.String("size", humanize.IBytes(uint64(fw.Size()))))
	ack, err := s.gw.Upload(ctx, deviceconfig.SetDevUpgrade, "", content)
	if err != nil {
		return fmt.Errorf("upload firmware: %w", err)
	}
	if !ack.OK() {
		return fmt.Errorf("%w: %w", ErrUpgradeFailed, deviceconfig.NewResultError(deviceconfig.SetDevUpgrade, ack.Result))
	}
	return nil
}

func (s *Section) finish(ctx context.Context, msg string) {
	s.tip(ctx, msg)
	if s.reload != nil {
		s.reload(ctx)
	}
}
