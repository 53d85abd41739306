package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ne101/internal/notify"
)

// Messages the bridge posts into the program. Requests carry a reply
// channel the dashboard answers exactly once.
type (
	tipRequestMsg struct {
		tip   notify.Tip
		reply chan bool
	}

	passwordRequestMsg struct {
		prompt notify.PasswordPrompt
		reply  chan passwordReply
	}

	upgradeOpenMsg struct {
		id      int
		message string
	}

	upgradeCompleteMsg struct{ id int }
	upgradeClosedMsg   struct{ id int }

	bannerMsg      struct{ n notify.Notification }
	bannerClearMsg struct{}

	busyMsg struct {
		message string
		busy    bool
	}
)

type passwordReply struct {
	password string
	err      error
}

// Bridge connects the sections' ports to a running program. It is a
// notify.Dialog and a notify.Sink. Every method
// posts a message through the send function; dialog methods then block
// until the dashboard answers. Dialog methods must not be called from the
// program's Update. Busy returns the matching notify.Spinner.
type Bridge struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	nextID int
}

var (
	_ notify.Dialog  = (*Bridge)(nil)
	_ notify.Sink    = (*Bridge)(nil)
	_ notify.Spinner = busySpinner{}
)

// NewBridge creates a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the function messages are delivered with, normally
// (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) post(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// ShowTip implements notify.Dialog. Without a program, plain tips are
// acknowledged and cancellable ones are dismissed.
func (b *Bridge) ShowTip(ctx context.Context, tip notify.Tip) (bool, error) {
	reply := make(chan bool, 1)
	if !b.post(tipRequestMsg{tip: tip, reply: reply}) {
		if tip.Cancel {
			return false, notify.ErrDismissed
		}
		return true, nil
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, notify.ErrDismissed
	}
}

// PromptPassword implements notify.Dialog.
func (b *Bridge) PromptPassword(ctx context.Context, prompt notify.PasswordPrompt) (string, error) {
	reply := make(chan passwordReply, 1)
	if !b.post(passwordRequestMsg{prompt: prompt, reply: reply}) {
		return "", notify.ErrDismissed
	}
	select {
	case r := <-reply:
		return r.password, r.err
	case <-ctx.Done():
		return "", notify.ErrDismissed
	}
}

// ShowUpgrade implements notify.Dialog.
func (b *Bridge) ShowUpgrade(_ context.Context, message string) (notify.Progress, error) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.mu.Unlock()

	b.post(upgradeOpenMsg{id: id, message: message})
	return &bridgeProgress{bridge: b, id: id}, nil
}

// Show implements notify.Sink.
func (b *Bridge) Show(n notify.Notification) { b.post(bannerMsg{n: n}) }

// Clear implements notify.Sink.
func (b *Bridge) Clear() { b.post(bannerClearMsg{}) }

// Busy returns the spinner port.
func (b *Bridge) Busy() notify.Spinner { return busySpinner{b} }

type busySpinner struct{ b *Bridge }

func (s busySpinner) Show(message string) { s.b.post(busyMsg{message: message, busy: true}) }
func (s busySpinner) Hide()               { s.b.post(busyMsg{}) }

// Ports returns the notify ports for a session driven by this bridge.
// The banner channel must have the bridge as a sink.
func (b *Bridge) Ports(channel *notify.Channel) notify.Ports {
	return notify.Ports{
		Notifier: channel,
		Dialog:   notify.NewModal(b),
		Spinner:  b.Busy(),
	}
}

type bridgeProgress struct {
	bridge *Bridge
	id     int
	once   sync.Once
}

func (p *bridgeProgress) Complete() { p.bridge.post(upgradeCompleteMsg{id: p.id}) }

func (p *bridgeProgress) Close() {
	p.once.Do(func() { p.bridge.post(upgradeClosedMsg{id: p.id}) })
}
