package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ne101/internal/config"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/discovery"
	"github.com/muurk/ne101/internal/emulator"
	"github.com/muurk/ne101/internal/emulator/emulatortest"
	"github.com/muurk/ne101/internal/ui"
)

type cli struct {
	emu *emulator.Emulator
	url string
}

func newCLI(t *testing.T, opts ...emulator.Option) *cli {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("NE101_LOG_LEVEL", "")
	emu, client := emulatortest.Start(t, opts...)
	return &cli{emu: emu, url: client.BaseURL}
}

// run executes one command line against the emulator and returns stdout
// and stderr.
func (c *cli) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--device", c.url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestShowPrintsEveryGroup(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "show")
	require.NoError(t, err)

	for _, want := range []string{
		"NE101 CAMERA CONFIGURATION",
		"NE101 Sensing Camera",
		"6622D12345670001",
		"Office",
		"NE101SensingCam/Snapshot",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotZero(t, c.emu.Time().TS, "show syncs the clock first")
}

func TestShowReportsAFailingGroup(t *testing.T) {
	c := newCLI(t)
	c.emu.FailHTTP(deviceconfig.GetCapParam, http.StatusInternalServerError)

	out, _, err := c.run(t, "show")
	require.Error(t, err)
	assert.Contains(t, out, "NE101 Sensing Camera", "the other groups are still shown")
}

func TestCaptureInterval(t *testing.T) {
	c := newCLI(t)

	_, errOut, err := c.run(t, "capture", "interval", "30", "min")
	require.NoError(t, err)

	got := c.emu.Capture()
	assert.Equal(t, 30, got.IntervalValue)
	assert.Equal(t, deviceconfig.UnitMinute, got.IntervalUnit)
	assert.Contains(t, errOut, "Capture interval set to 30 min")
}

func TestCaptureTimedEntries(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "capture", "add-time", "mon", "08:30")
	require.NoError(t, err)
	_, _, err = c.run(t, "capture", "add-time", "daily", "20:15:05")
	require.NoError(t, err)

	nodes := c.emu.Capture().TimedNodes
	require.Len(t, nodes, 2)
	assert.Equal(t, deviceconfig.TimedNode{Day: 1, Time: "08:30:00"}, nodes[0])
	assert.Equal(t, deviceconfig.TimedNode{Day: deviceconfig.EveryDay, Time: "20:15:05"}, nodes[1])

	_, _, err = c.run(t, "capture", "rm-time", "1")
	require.NoError(t, err)
	nodes = c.emu.Capture().TimedNodes
	require.Len(t, nodes, 1)
	assert.Equal(t, "20:15:05", nodes[0].Time)
}

func TestTriggerModeRoundTrip(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "trigger", "mode", "pir")
	require.NoError(t, err)
	assert.True(t, c.emu.Capture().AlarmInCapture.Bool())
	assert.Equal(t, deviceconfig.TriggerPIR, c.emu.Trigger().Mode)

	_, _, err = c.run(t, "trigger", "mode", "off")
	require.NoError(t, err)
	assert.False(t, c.emu.Capture().AlarmInCapture.Bool())
}

func TestTriggerPIRClamps(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run(t, "trigger", "mode", "pir")
	require.NoError(t, err)

	_, _, err = c.run(t, "trigger", "pir", "--sensitivity", "999")
	require.NoError(t, err)
	got := c.emu.Trigger()
	assert.Equal(t, 255, got.Sensitivity)
	assert.Equal(t, deviceconfig.DefaultTriggerBlind, got.Blind, "unset flags keep their value")
}

func TestUploadRetries(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "upload", "retries", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, c.emu.Upload().RetryCount)
}

func TestImageQualityIsClamped(t *testing.T) {
	c := newCLI(t)

	_, errOut, err := c.run(t, "image", "quality", "99")
	require.NoError(t, err)
	assert.Equal(t, 63, c.emu.Camera().Quality)
	assert.Contains(t, errOut, "Quality set to 63")
}

func TestImageAdjustOnlyChangesGivenFlags(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "image", "adjust", "--brightness", "1", "--flip-v")
	require.NoError(t, err)
	got := c.emu.Camera()
	assert.Equal(t, 1, got.Brightness)
	assert.True(t, got.FlipVertical.Bool())
	assert.True(t, got.AGC.Bool(), "AGC was on and not named")
}

func TestMQTTSet(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "mqtt", "set", "--host", "broker.lan", "--qos", "1")
	require.NoError(t, err)
	got := c.emu.Platform().MQTT
	assert.Equal(t, "broker.lan", got.Host)
	assert.Equal(t, 1, got.QoS)
	assert.Equal(t, "NE101SensingCam/Snapshot", got.Topic)
}

func TestMQTTTLSKeepsChosenPort(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "mqtt", "tls", "on")
	require.NoError(t, err)
	got := c.emu.Platform().MQTT
	assert.True(t, got.TLSEnable.Bool())
	assert.Equal(t, 1883, got.Port)
}

func TestCertUpload(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(path, []byte("-----BEGIN CERTIFICATE-----\n"), 0o600))

	_, _, err := c.run(t, "cert", "upload", "ca", path)
	require.NoError(t, err)
	assert.Equal(t, "ca.crt", c.emu.Platform().MQTT.CAName)
}

func TestWifiConnect(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "wifi", "connect", "Office", "--password", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Office", c.emu.Wifi().SSID)
	assert.True(t, c.emu.Wifi().IsConnected.Bool())
}

func TestWifiConnectWrongPassword(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "wifi", "connect", "Office", "--password", "nope")
	require.Error(t, err)
	assert.False(t, c.emu.Wifi().IsConnected.Bool())
}

func TestWifiRegion(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "wifi", "region", "nz")
	require.NoError(t, err)
	assert.Equal(t, "NZ", c.emu.DeviceInfo().CountryCode)

	_, _, err = c.run(t, "wifi", "region", "EU")
	require.Error(t, err, "CE regions are not allowed on FCC firmware")
}

func TestCellularAT(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "cellular", "at", "AT+CSQ")
	require.NoError(t, err)
	assert.Contains(t, out, "+CSQ: 17,99")
	assert.Equal(t, []string{"AT+CSQ"}, c.emu.Commands())
}

func TestCellularSetAuth(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "cellular", "set", "--auth", "chap", "--user", "me")
	require.NoError(t, err)
	got := c.emu.Cellular()
	assert.Equal(t, deviceconfig.CellAuthCHAP, got.Authentication)
	assert.Equal(t, "me", got.User)
	assert.Equal(t, "internet", got.APN)
}

func TestDeviceSleepNeedsConfirmation(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "device", "sleep")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.False(t, c.emu.Asleep())

	_, _, err = c.run(t, "--yes", "device", "sleep")
	require.NoError(t, err)
	assert.True(t, c.emu.Asleep())
}

func TestDeviceRename(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "device", "name", "Garden")
	require.NoError(t, err)
	assert.Equal(t, "Garden", c.emu.DeviceInfo().Name)
	assert.Equal(t, "US", c.emu.DeviceInfo().CountryCode)
}

func TestDeviceUpgrade(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "ne101.bin")
	require.NoError(t, os.WriteFile(path, []byte("firmware"), 0o600))

	_, _, err := c.run(t, "--yes", "device", "upgrade", path, "--settle", "10ms")
	require.NoError(t, err)
	assert.Equal(t, []byte("firmware"), c.emu.Firmware())
}

func TestProfileRecordsSerial(t *testing.T) {
	c := newCLI(t)

	var out bytes.Buffer
	root := newRootCmd(&out, &out)
	root.SetArgs([]string{"profile", "add", "garden", c.url})
	require.NoError(t, root.ExecuteContext(context.Background()))

	root = newRootCmd(&out, &out)
	root.SetArgs([]string{"device"})
	require.NoError(t, root.ExecuteContext(context.Background()), "the first profile becomes the default")

	reg, err := config.Load()
	require.NoError(t, err)
	d := reg.GetDevice("garden")
	require.NotNil(t, d)
	assert.Equal(t, "6622D12345670001", d.Serial)
	assert.False(t, d.LastSeen.IsZero())
}

func TestProfileAddSavesAndReports(t *testing.T) {
	newCLI(t)

	var out bytes.Buffer
	root := newRootCmd(&out, &out)
	root.SetArgs([]string{"profile", "add", "garden", "192.168.10.42", "--timezone", "Europe/Berlin"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "garden")

	reg, err := config.Load()
	require.NoError(t, err)
	d := reg.GetDevice("garden")
	require.NotNil(t, d)
	assert.Equal(t, "http://192.168.10.42", d.URL)
	assert.Equal(t, "Europe/Berlin", d.Timezone)
	assert.Equal(t, "garden", reg.DefaultDevice)

	out.Reset()
	root = newRootCmd(&out, &out)
	root.SetArgs([]string{"profile", "rm", "missing"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestSaveProfilePrintsConfigPath(t *testing.T) {
	newCLI(t)

	var out bytes.Buffer
	d := &discovery.Device{IP: "10.0.0.5", Port: 80, Serial: "6622D12345670001"}
	require.NoError(t, saveProfile("porch", d, false, ui.NewPrinter(&out)))

	reg, err := config.Load()
	require.NoError(t, err)
	path, err := reg.Path()
	require.NoError(t, err)
	assert.Contains(t, out.String(), path)
	assert.Equal(t, "6622D12345670001", reg.GetDevice("porch").Serial)
	assert.Equal(t, "porch", reg.DefaultDevice, "the first profile becomes the default")
}

func TestLangShowsSavedLanguage(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "lang", config.LanguageChinese)
	require.NoError(t, err)

	var out bytes.Buffer
	root := newRootCmd(&out, &out)
	root.SetArgs([]string{"lang"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, config.LanguageChinese, strings.TrimSpace(out.String()))
}

func TestLangPersists(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "lang", config.LanguageChinese)
	require.NoError(t, err)

	reg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.LanguageChinese, reg.Language)

	_, _, err = c.run(t, "lang", "fr_FR")
	require.Error(t, err)
}

func TestReportedFailureIsNotPrintedTwice(t *testing.T) {
	c := newCLI(t)
	c.emu.FailHTTP(deviceconfig.SetCamParam, http.StatusInternalServerError)

	_, errOut, err := c.run(t, "image", "quality", "10")
	require.Error(t, err)

	var reported *reportedError
	assert.True(t, errors.As(err, &reported))
	assert.Equal(t, 1, strings.Count(errOut, "✗"))
}
