package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkLog struct {
	mu     sync.Mutex
	shown  []Notification
	clears int
}

func (s *sinkLog) Show(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

func (s *sinkLog) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *sinkLog) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

func TestChannelAutoClears(t *testing.T) {
	sink := &sinkLog{}
	ch := NewChannel(20*time.Millisecond, sink)
	defer ch.Close()

	ch.Notify(Success, "saved")
	n, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, Success, n.Kind)
	assert.Equal(t, "saved", n.Detail)

	assert.Eventually(t, func() bool {
		_, ok := ch.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, sink.clearCount())
}

func TestChannelReplaceRestartsTimer(t *testing.T) {
	sink := &sinkLog{}
	ch := NewChannel(50*time.Millisecond, sink)
	defer ch.Close()

	ch.Notify(Success, "first")
	time.Sleep(30 * time.Millisecond)
	ch.Notify(Error, "second")
	time.Sleep(30 * time.Millisecond)

	// The first timer fired by now but must not clear the second banner.
	n, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, "second", n.Detail)

	assert.Eventually(t, func() bool {
		_, ok := ch.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, sink.clearCount())
	assert.Len(t, sink.shown, 2)
}

func TestNewChannelDefaultDuration(t *testing.T) {
	ch := NewChannel(0)
	assert.Equal(t, DefaultClearAfter, ch.clearAfter)
}

func TestModalClosesUpgradeBeforeTip(t *testing.T) {
	rec := NewRecorder()
	m := NewModal(rec)
	ctx := context.Background()

	p, err := m.ShowUpgrade(ctx, "upgrading")
	require.NoError(t, err)
	assert.True(t, m.Open())

	ok, err := m.ShowTip(ctx, Tip{Message: "done"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, m.Open())

	dialogs := rec.Dialogs()
	require.Len(t, dialogs, 2)
	assert.True(t, dialogs[0].Progress.Closed())

	// Closing the stale handle again is harmless.
	p.Close()
	assert.False(t, m.Open())
}

func TestRecorderScriptedAnswers(t *testing.T) {
	rec := NewRecorder()
	rec.TipAnswers = []bool{false}
	rec.Passwords = []string{"hunter2"}
	ctx := context.Background()

	ok, err := rec.ShowTip(ctx, Tip{Message: "sure?", Cancel: true})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rec.ShowTip(ctx, Tip{Message: "again"})
	require.NoError(t, err)
	assert.True(t, ok)

	pw, err := rec.PromptPassword(ctx, PasswordPrompt{SSID: "home"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	_, err = rec.PromptPassword(ctx, PasswordPrompt{SSID: "home"})
	assert.ErrorIs(t, err, ErrDismissed)
}

func TestPortsWithDefaults(t *testing.T) {
	p := Ports{}.WithDefaults()
	assert.NotNil(t, p.Notifier)
	assert.NotNil(t, p.Spinner)
	p.Notifier.Notify(Error, "ignored")
	p.Spinner.Show("x")
	p.Spinner.Hide()
}
