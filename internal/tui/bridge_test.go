package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ne101/internal/emulator/emulatortest"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/wifi"
)

type msgLog struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (l *msgLog) send(msg tea.Msg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *msgLog) all() []tea.Msg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]tea.Msg(nil), l.msgs...)
}

func TestBridgeWithoutProgram(t *testing.T) {
	b := NewBridge()
	ctx := context.Background()

	ok, err := b.ShowTip(ctx, notify.Tip{Message: "saved"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = b.ShowTip(ctx, notify.Tip{Message: "sure?", Cancel: true})
	assert.ErrorIs(t, err, notify.ErrDismissed)

	_, err = b.PromptPassword(ctx, notify.PasswordPrompt{SSID: "Office"})
	assert.ErrorIs(t, err, notify.ErrDismissed)
}

func TestBridgeTipReply(t *testing.T) {
	b := NewBridge()
	b.Attach(func(msg tea.Msg) {
		if req, ok := msg.(tipRequestMsg); ok {
			req.reply <- false
		}
	})

	ok, err := b.ShowTip(context.Background(), notify.Tip{Message: "Sleep now?", Cancel: true})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBridgePromptHonoursContext(t *testing.T) {
	b := NewBridge()
	b.Attach(func(tea.Msg) {}) // nobody answers

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.PromptPassword(ctx, notify.PasswordPrompt{SSID: "Office"})
	assert.ErrorIs(t, err, notify.ErrDismissed)
}

func TestBridgeUpgradeMessages(t *testing.T) {
	log := &msgLog{}
	b := NewBridge()
	b.Attach(log.send)

	p, err := b.ShowUpgrade(context.Background(), "Upgrading")
	require.NoError(t, err)
	p.Complete()
	p.Close()
	p.Close()

	assert.Equal(t, []tea.Msg{
		upgradeOpenMsg{id: 1, message: "Upgrading"},
		upgradeCompleteMsg{id: 1},
		upgradeClosedMsg{id: 1},
	}, log.all())

	p2, err := b.ShowUpgrade(context.Background(), "Again")
	require.NoError(t, err)
	p2.Close()
	assert.Equal(t, upgradeClosedMsg{id: 2}, log.all()[4])
}

func TestBridgeBannerAndSpinner(t *testing.T) {
	log := &msgLog{}
	b := NewBridge()
	b.Attach(log.send)

	channel := notify.NewChannel(time.Hour, b)
	defer channel.Close()
	ports := b.Ports(channel)

	ports.Notifier.Notify(notify.Error, "write failed")
	ports.Spinner.Show("Uploading ca.crt")
	ports.Spinner.Hide()

	msgs := log.all()
	require.Len(t, msgs, 3)
	banner, ok := msgs[0].(bannerMsg)
	require.True(t, ok)
	assert.Equal(t, "write failed", banner.n.Detail)
	assert.Equal(t, busyMsg{message: "Uploading ca.crt", busy: true}, msgs[1])
	assert.Equal(t, busyMsg{}, msgs[2])
}

func TestBridgeDrivesWifiPasswordPrompt(t *testing.T) {
	emu, client := emulatortest.Start(t)

	b := NewBridge()
	var prompts []notify.PasswordPrompt
	b.Attach(func(msg tea.Msg) {
		if req, ok := msg.(passwordRequestMsg); ok {
			prompts = append(prompts, req.prompt)
			pw := "wrong"
			if req.prompt.ShowError {
				pw = "correct horse"
			}
			req.reply <- passwordReply{password: pw}
		}
	})
	channel := notify.NewChannel(time.Hour, b)
	defer channel.Close()

	m := wifi.NewMachine(client, b.Ports(channel))
	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx))

	state, err := m.Connect(ctx, "Office")
	require.NoError(t, err)
	assert.Equal(t, wifi.Connected{SSID: "Office"}, state)
	assert.Equal(t, "Office", emu.Wifi().SSID)
	require.Len(t, prompts, 2)
	assert.False(t, prompts[0].ShowError)
	assert.True(t, prompts[1].ShowError)
}
