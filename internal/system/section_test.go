package system

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ne101/internal/credentials"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/emulator"
	"github.com/muurk/ne101/internal/emulator/emulatortest"
	"github.com/muurk/ne101/internal/notify"
)

func newSection(t *testing.T, opts ...Option) (*Section, *emulator.Emulator, *notify.Recorder) {
	t.Helper()
	emu, client := emulatortest.Start(t)
	rec := notify.NewRecorder()
	opts = append([]Option{WithSettleDelay(time.Millisecond)}, opts...)
	return NewSection(client, rec.Ports(), opts...), emu, rec
}

func TestLoadOrder(t *testing.T) {
	s, emu, _ := newSection(t)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []deviceconfig.Endpoint{
		deviceconfig.GetDevInfo, deviceconfig.GetDevBattery, deviceconfig.GetDevNtpSync,
	}, emu.RequestLog())
	assert.Equal(t, "NE101 Sensing Camera", s.Info().Name)
	assert.Equal(t, "87%", s.Battery().String())
	assert.True(t, s.NTP().Enable.Bool())
	assert.Equal(t, []string{"AU", "KR", "NZ", "SG", "US"}, s.Regions())
}

func TestTypeCPowered(t *testing.T) {
	s, emu, _ := newSection(t)
	emu.SetBattery(deviceconfig.Battery{})

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, "Type-C powered", s.Battery().String())
}

func TestRename(t *testing.T) {
	s, emu, _ := newSection(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	emu.ResetLog()

	require.Error(t, s.Rename(ctx, "   "))
	assert.Equal(t, 0, emu.TotalRequests())

	require.NoError(t, s.Rename(ctx, "Gate cam"))
	assert.Equal(t, "Gate cam", emu.DeviceInfo().Name)
	assert.Equal(t, "Gate cam", s.Info().Name)
	assert.Equal(t, "US", emu.DeviceInfo().CountryCode, "rename leaves the region alone")
}

func TestSetNTP(t *testing.T) {
	s, emu, _ := newSection(t)

	require.NoError(t, s.SetNTP(context.Background(), false))
	assert.False(t, emu.NTP().Enable.Bool())
	assert.False(t, s.NTP().Enable.Bool())
}

func TestSyncTime(t *testing.T) {
	zone := time.FixedZone("CST", 8*3600)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, zone)
	s, emu, _ := newSection(t, WithClock(func() time.Time { return now }))

	require.NoError(t, s.SyncTime(context.Background()))
	assert.Equal(t, deviceconfig.DeviceTime{TZ: "CST-8", TS: now.Unix()}, emu.Time())
}

func TestSleep(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		s, emu, rec := newSection(t)
		sent, err := s.Sleep(context.Background())
		require.NoError(t, err)
		assert.True(t, sent)
		assert.True(t, emu.Asleep())
		require.Len(t, rec.Dialogs(), 1)
		assert.True(t, rec.Dialogs()[0].Tip.Cancel)
	})

	t.Run("declined", func(t *testing.T) {
		s, emu, rec := newSection(t)
		rec.TipAnswers = []bool{false}
		sent, err := s.Sleep(context.Background())
		require.NoError(t, err)
		assert.False(t, sent)
		assert.False(t, emu.Asleep())
		assert.Equal(t, 0, emu.TotalRequests())
	})

	t.Run("no dialog", func(t *testing.T) {
		emu, client := emulatortest.Start(t)
		s := NewSection(client, notify.Ports{})
		_, err := s.Sleep(context.Background())
		require.Error(t, err)
		assert.Equal(t, 0, emu.TotalRequests())
	})
}

func TestUpgradeWithoutFile(t *testing.T) {
	s, emu, rec := newSection(t)

	sent, err := s.Upgrade(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFirmware)
	assert.False(t, sent)
	assert.Equal(t, 0, emu.TotalRequests())

	dialogs := rec.Dialogs()
	require.Len(t, dialogs, 1)
	assert.Equal(t, TipNoFirmware, dialogs[0].Tip.Message)
}

func TestUpgradeWithNilLocalFile(t *testing.T) {
	s, emu, rec := newSection(t)

	var fw *credentials.LocalFile
	sent, err := s.Upgrade(context.Background(), fw)
	assert.ErrorIs(t, err, ErrNoFirmware)
	assert.False(t, sent)
	assert.Equal(t, 0, emu.TotalRequests())
	require.Len(t, rec.Dialogs(), 1)
}

func TestUpgradeSuccess(t *testing.T) {
	reloads := 0
	s, emu, rec := newSection(t, WithReload(func(context.Context) { reloads++ }))
	image := []byte("NE101 firmware image")

	sent, err := s.Upgrade(context.Background(), credentials.NewMemoryFile("ne101.bin", image))
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, image, emu.Firmware())
	assert.Equal(t, 1, reloads)

	dialogs := rec.Dialogs()
	require.Len(t, dialogs, 3)
	assert.Equal(t, "tip", dialogs[0].Kind)
	assert.True(t, dialogs[0].Tip.Cancel)
	assert.Equal(t, "upgrade", dialogs[1].Kind)
	assert.True(t, dialogs[1].Progress.Completed())
	assert.True(t, dialogs[1].Progress.Closed())
	assert.Equal(t, TipUpgradeSuccess, dialogs[2].Tip.Message)
}

func TestUpgradeFailures(t *testing.T) {
	tests := []struct {
		name string
		arm  func(emu *emulator.Emulator)
	}{
		{"result 1003", func(emu *emulator.Emulator) {
			emu.FailResult(deviceconfig.SetDevUpgrade, deviceconfig.ResultUpgradeFailed)
		}},
		{"http error", func(emu *emulator.Emulator) {
			emu.FailHTTP(deviceconfig.SetDevUpgrade, http.StatusInternalServerError)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reloads := 0
			s, emu, rec := newSection(t, WithReload(func(context.Context) { reloads++ }))
			tt.arm(emu)

			sent, err := s.Upgrade(context.Background(), credentials.NewMemoryFile("ne101.bin", []byte{1, 2, 3}))
			require.Error(t, err)
			assert.True(t, sent)
			assert.Equal(t, 1, reloads)

			dialogs := rec.Dialogs()
			require.Len(t, dialogs, 3)
			assert.False(t, dialogs[1].Progress.Completed())
			assert.True(t, dialogs[1].Progress.Closed())
			assert.Equal(t, TipUpgradeFailed, dialogs[2].Tip.Message)
		})
	}
}

func TestUpgradeDeclined(t *testing.T) {
	s, emu, rec := newSection(t)
	rec.TipAnswers = []bool{false}

	sent, err := s.Upgrade(context.Background(), credentials.NewMemoryFile("ne101.bin", []byte{1}))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, emu.TotalRequests())
	assert.Nil(t, emu.Firmware())
}
