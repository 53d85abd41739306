package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/emulator"
	"github.com/muurk/ne101/internal/emulator/emulatortest"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/session"
	"github.com/muurk/ne101/internal/ui"
)

func newTestDashboard(t *testing.T, setup func(e *emulator.Emulator)) (DashboardModel, *emulator.Emulator, *notify.Recorder) {
	t.Helper()
	emu, client := emulatortest.Start(t)
	if setup != nil {
		setup(emu)
	}
	rec := notify.NewRecorder()
	s := session.New(client, rec.Ports(), session.WithoutStatusPoll())
	t.Cleanup(s.Close)

	m := NewDashboardModel(context.Background(), s, rec, nil, "test camera")
	m.Width, m.Height = 110, 40
	m = step(t, m, m.load()())
	require.False(t, m.Loading)
	return m, emu, rec
}

func step(t *testing.T, m DashboardModel, msg tea.Msg) DashboardModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(DashboardModel)
}

func press(t *testing.T, m DashboardModel, k tea.KeyMsg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(DashboardModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// finish runs an operation command and feeds its result back.
func finish(t *testing.T, m DashboardModel, cmd tea.Cmd) (DashboardModel, opDoneMsg) {
	t.Helper()
	require.NotNil(t, cmd)
	done, ok := cmd().(opDoneMsg)
	require.True(t, ok)
	return step(t, m, done), done
}

func TestDashboardShowsEveryPage(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)

	want := map[Tab]string{
		TabDevice:  "6622D12345670001",
		TabCapture: "=== Capture ===",
		TabUpload:  "immediate",
		TabImage:   "=== Fill Light ===",
		TabMQTT:    "192.168.1.1",
		TabNetwork: "Warehouse",
	}
	for tab := TabDevice; tab <= TabNetwork; tab++ {
		m.Tab = tab
		view := m.View()
		assert.Contains(t, view, want[tab], tab.String())
		assert.NotContains(t, view, "Could not read", tab.String())
	}
}

func TestDashboardReportsFailedGroup(t *testing.T) {
	m, _, _ := newTestDashboard(t, func(e *emulator.Emulator) {
		e.FailHTTP(deviceconfig.GetCapParam, http.StatusInternalServerError)
	})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabCapture, m.Tab)
	assert.Contains(t, m.View(), "Could not read Capture settings")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.NotContains(t, m.View(), "Could not read")
}

func TestDashboardTabsWrap(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabNetwork, m.Tab)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabDevice, m.Tab)
}

func TestDashboardConnectsOpenNetwork(t *testing.T) {
	m, emu, rec := newTestDashboard(t, nil)
	m.Tab = TabNetwork

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.Cursor)
	assert.Contains(t, m.View(), "> Guest")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Connected to Guest", m.Running)
	m, done := finish(t, m, cmd)
	require.NoError(t, done.err)

	assert.Empty(t, m.Running)
	assert.Equal(t, "Guest", emu.Wifi().SSID)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Kind)
	assert.Equal(t, "Connected to Guest", last.Detail)
}

func TestDashboardCursorStaysInList(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	m.Tab = TabNetwork
	for i := 0; i < 10; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 2, m.Cursor)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.Cursor)
}

func TestDashboardTogglesTriggerCapture(t *testing.T) {
	m, emu, _ := newTestDashboard(t, nil)
	m.Tab = TabCapture

	m, cmd := press(t, m, runes("c"))
	// A second action is ignored while the first is in flight.
	_, again := press(t, m, runes("c"))
	assert.Nil(t, again)

	_, done := finish(t, m, cmd)
	require.NoError(t, done.err)
	assert.True(t, emu.Capture().AlarmInCapture.Bool())
}

func TestDashboardActionKeysFollowPage(t *testing.T) {
	m, emu, _ := newTestDashboard(t, nil)
	m.Tab = TabDevice

	_, cmd := press(t, m, runes("c"))
	assert.Nil(t, cmd)
	assert.False(t, emu.Capture().AlarmInCapture.Bool())
}

func TestDashboardTogglesUploadModeAndTLS(t *testing.T) {
	m, emu, _ := newTestDashboard(t, nil)

	m.Tab = TabUpload
	m, cmd := press(t, m, runes("m"))
	m, done := finish(t, m, cmd)
	require.NoError(t, done.err)
	assert.Equal(t, deviceconfig.UploadScheduled, emu.Upload().Mode)

	m.Tab = TabMQTT
	m, cmd = press(t, m, runes("l"))
	_, done = finish(t, m, cmd)
	require.NoError(t, done.err)
	assert.True(t, emu.Platform().MQTT.TLSEnable.Bool())
	assert.Equal(t, 1883, emu.Platform().MQTT.Port)
}

func TestDashboardSleepDeclined(t *testing.T) {
	m, emu, rec := newTestDashboard(t, nil)
	rec.TipAnswers = []bool{false}

	m, cmd := press(t, m, runes("s"))
	m, done := finish(t, m, cmd)
	assert.ErrorIs(t, done.err, errCancelled)
	assert.NoError(t, m.LastError)
	assert.False(t, emu.Asleep())
}

func TestDashboardShowsOperationError(t *testing.T) {
	m, emu, _ := newTestDashboard(t, nil)
	emu.FailHTTP(deviceconfig.SetDevTime, http.StatusInternalServerError)

	m, cmd := press(t, m, runes("t"))
	m, done := finish(t, m, cmd)
	require.Error(t, done.err)
	assert.Error(t, m.LastError)
	assert.Contains(t, m.View(), ui.FailureMarker)
}

func TestDashboardReload(t *testing.T) {
	m, emu, _ := newTestDashboard(t, nil)
	emu.SetCapture(deviceconfig.CaptureParams{
		ScheduleMode:  deviceconfig.CaptureInterval,
		IntervalValue: 15,
		IntervalUnit:  deviceconfig.UnitMinute,
		TimedNodes:    []deviceconfig.TimedNode{},
	})

	m, cmd := press(t, m, runes("r"))
	assert.True(t, m.Loading)
	assert.Contains(t, m.View(), "Reading camera settings")
	m = step(t, m, cmd())
	assert.False(t, m.Loading)
	assert.Equal(t, 15, m.Session.Capture.Params().IntervalValue)
}

func TestDashboardTipModal(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	reply := make(chan bool, 1)

	m = step(t, m, tipRequestMsg{tip: notify.Tip{Message: "Put the camera to sleep?", Cancel: true}, reply: reply})
	assert.Contains(t, m.View(), "Put the camera to sleep?")

	// Page keys do nothing while a dialog is open.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabDevice, m.Tab)

	m, _ = press(t, m, runes("n"))
	assert.False(t, <-reply)
	assert.Equal(t, modalNone, m.modal.kind)
}

func TestDashboardPlainTipAlwaysConfirms(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	reply := make(chan bool, 1)

	m = step(t, m, tipRequestMsg{tip: notify.Tip{Message: "Upgrade finished"}, reply: reply})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, <-reply)
	assert.Equal(t, modalNone, m.modal.kind)
}

func TestDashboardPasswordModal(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	reply := make(chan passwordReply, 1)

	m = step(t, m, passwordRequestMsg{prompt: notify.PasswordPrompt{SSID: "Office", ShowError: true}, reply: reply})
	view := m.View()
	assert.Contains(t, view, "Password for Office")
	assert.Contains(t, view, "Wrong or empty password")

	m, _ = press(t, m, runes("hunter2"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	got := <-reply
	require.NoError(t, got.err)
	assert.Equal(t, "hunter2", got.password)
	assert.Equal(t, modalNone, m.modal.kind)

	m = step(t, m, passwordRequestMsg{prompt: notify.PasswordPrompt{SSID: "Office"}, reply: reply})
	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	got = <-reply
	assert.ErrorIs(t, got.err, notify.ErrDismissed)
}

func TestDashboardUpgradeProgress(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)

	next, cmd := m.Update(upgradeOpenMsg{id: 3, message: "Upgrading firmware"})
	m = next.(DashboardModel)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Upgrading firmware")

	m = step(t, m, upgradeTickMsg{id: 3})
	assert.InDelta(t, ui.UpgradeStep, m.modal.percent, 1e-9)

	// Ticks from an earlier dialog are ignored.
	m = step(t, m, upgradeTickMsg{id: 2})
	assert.InDelta(t, ui.UpgradeStep, m.modal.percent, 1e-9)

	m.modal.percent = ui.UpgradeCeiling - ui.UpgradeStep/2
	next, cmd = m.Update(upgradeTickMsg{id: 3})
	m = next.(DashboardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, ui.UpgradeCeiling, m.modal.percent)

	m = step(t, m, upgradeCompleteMsg{id: 3})
	assert.Equal(t, 1.0, m.modal.percent)
	assert.Contains(t, m.View(), "100%")

	m = step(t, m, upgradeClosedMsg{id: 2})
	assert.Equal(t, modalUpgrade, m.modal.kind)
	m = step(t, m, upgradeClosedMsg{id: 3})
	assert.Equal(t, modalNone, m.modal.kind)
}

func TestDashboardFollowsBusEvents(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)
	sub := make(events.Subscription, 1)
	m.events = sub
	m.Tab = TabMQTT

	next, cmd := m.Update(busEventMsg{event: events.MQTTStatus{Connected: true}})
	m = next.(DashboardModel)
	assert.True(t, m.MQTTConnected)
	assert.Contains(t, m.View(), "Broker: connected")

	require.NotNil(t, cmd)
	sub <- events.WifiStateChanged{SSID: "Office", From: "connecting", To: "failed"}
	m = step(t, m, cmd())
	assert.Equal(t, "failed Office", m.WifiState)

	m = step(t, m, busEventMsg{event: events.SessionStep{Step: session.StepImage, Err: assert.AnError}})
	m.Tab = TabImage
	assert.Contains(t, m.View(), "Could not read Image settings")

	close(sub)
	assert.Nil(t, cmd())
}

func TestDashboardBanner(t *testing.T) {
	m, _, _ := newTestDashboard(t, nil)

	m = step(t, m, bannerMsg{n: notify.Notification{Kind: notify.Success, Detail: "Capture settings saved"}})
	assert.Contains(t, m.View(), "Capture settings saved")

	m = step(t, m, busyMsg{message: "Uploading ca.crt", busy: true})
	assert.Contains(t, m.View(), "Uploading ca.crt")
	m = step(t, m, busyMsg{})

	m = step(t, m, bannerClearMsg{})
	assert.Nil(t, m.Banner)
	assert.NotContains(t, m.View(), "Capture settings saved")
}
