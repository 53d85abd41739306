package mqtt

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
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/notify"
)

type fixture struct {
	emu   *emulator.Emulator
	rec   *notify.Recorder
	creds *credentials.Manager
	s     *Section
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	emu, client := emulatortest.Start(t)
	rec := notify.NewRecorder()
	creds := credentials.NewManager(client, rec.Ports())
	return &fixture{emu: emu, rec: rec, creds: creds, s: NewSection(client, rec.Ports(), creds)}
}

func TestLoadNormalizesTLS(t *testing.T) {
	f := newFixture(t)
	p := f.emu.Platform()
	p.MQTT.TLSEnable = 1
	p.MQTT.Port = PortTLS
	p.MQTT.CAName = "root.pem"
	f.emu.SetPlatform(p)

	require.NoError(t, f.s.Load(context.Background()))
	got := f.s.Platform()
	assert.True(t, got.TLSEnable.Bool())
	assert.Nil(t, got.SSL)
	assert.Equal(t, "root.pem", f.creds.FileName(credentials.CA))
}

func TestSaveSubmitsPlatform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.s.Load(ctx))

	err := f.s.Save(ctx, func(p *deviceconfig.MQTTPlatform) {
		p.Host = "broker.example.net"
		p.Topic = "cams/yard"
		p.Port = 0
		ApplyTLS(p, true)
		p.CAName = "ignored.pem"
	})
	require.NoError(t, err)

	got := f.emu.Platform()
	assert.Equal(t, deviceconfig.PlatformMQTT, got.CurrentPlatformType)
	assert.Equal(t, "broker.example.net", got.MQTT.Host)
	assert.Equal(t, PortTLS, got.MQTT.Port)
	assert.True(t, got.MQTT.TLSEnable.Bool(), "ssl is folded back by the device")
	assert.Empty(t, got.MQTT.CAName, "credential names come from the manager")

	last, ok := f.rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Kind)
}

func TestSaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.s.Load(ctx))
	f.emu.ResetLog()

	err := f.s.Save(ctx, func(p *deviceconfig.MQTTPlatform) {
		p.Host = ""
		p.Port = 70000
		p.Topic = " "
		p.QoS = 3
	})
	require.Error(t, err)
	assert.Len(t, deviceconfig.FieldErrors(err), 4)
	assert.Equal(t, 0, f.emu.TotalRequests())
	assert.Equal(t, "192.168.1.1", f.s.Platform().Host)
}

func TestSaveFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.s.Load(ctx))
	f.emu.FailHTTP(deviceconfig.SetPlatformParam, http.StatusInternalServerError)

	require.Error(t, f.s.Save(ctx, func(p *deviceconfig.MQTTPlatform) { p.Topic = "other" }))
	assert.Equal(t, "NE101SensingCam/Snapshot", f.s.Platform().Topic)

	last, _ := f.rec.Last()
	assert.Equal(t, notify.Error, last.Kind)
}

func TestApplyTLS(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		enabled bool
		want    int
	}{
		{"enable suggests 8883", 0, true, PortTLS},
		{"disable suggests 1883", 0, false, PortPlain},
		{"user port kept on enable", 1883, true, 1883},
		{"user port kept on disable", 9000, false, 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := deviceconfig.MQTTPlatform{Port: tt.port}
			ApplyTLS(&p, tt.enabled)
			assert.Equal(t, tt.want, p.Port)
			assert.Equal(t, tt.enabled, p.TLSEnable.Bool())
		})
	}
}

func waitStatus(t *testing.T, sub events.Subscription) events.MQTTStatus {
	t.Helper()
	select {
	case msg := <-sub:
		status, ok := msg.(events.MQTTStatus)
		require.True(t, ok, "unexpected message %T", msg)
		return status
	case <-time.After(2 * time.Second):
		t.Fatal("no status published")
	}
	return events.MQTTStatus{}
}

func TestStatusPoller(t *testing.T) {
	f := newFixture(t)
	bus := events.New()
	t.Cleanup(bus.Close)
	sub := bus.Subscribe(events.TopicMQTTStatus)

	p := f.s.NewStatusPoller(WithInterval(10*time.Millisecond), WithPublisher(bus))
	require.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()), "second start is a no-op")
	t.Cleanup(p.Stop)

	assert.False(t, waitStatus(t, sub).Connected)

	f.emu.SetMQTTConnected(true)
	deadline := time.After(2 * time.Second)
	for !waitStatus(t, sub).Connected {
		select {
		case <-deadline:
			t.Fatal("connection never observed")
		default:
		}
	}
	assert.True(t, f.s.Connected())

	p.Stop()
	assert.False(t, p.Running())
	assert.Zero(t, f.emu.Violations())
}

func TestStatusPollerStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	p := f.s.NewStatusPoller(WithInterval(5 * time.Millisecond))
	require.True(t, p.Start(ctx))
	cancel()

	require.Eventually(t, func() bool {
		before := f.emu.Requests(deviceconfig.GetPlatformParam)
		time.Sleep(20 * time.Millisecond)
		return f.emu.Requests(deviceconfig.GetPlatformParam) == before
	}, time.Second, 10*time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
}

func TestStopWithoutStart(t *testing.T) {
	p := NewStatusPoller(nil)
	p.Stop()
	assert.False(t, p.Running())
}
