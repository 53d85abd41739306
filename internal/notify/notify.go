package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Kind is the flavor of a banner notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// DefaultClearAfter is how long a banner stays up.
const DefaultClearAfter = 5 * time.Second

// Notification is one banner.
type Notification struct {
	Kind   Kind
	Detail string
	At     time.Time
}

// Notifier accepts banner notifications.
type Notifier interface {
	Notify(kind Kind, detail string)
}

// Sink renders banners. Show and Clear are called with the channel's lock
// held and must not call back into the Channel.
type Sink interface {
	Show(n Notification)
	Clear()
}

// Channel is the single global banner. A new notification replaces the
// current one and restarts the clear timer.
type Channel struct {
	mu         sync.Mutex
	clearAfter time.Duration
	current    *Notification
	timer      *time.Timer
	sinks      []Sink
	now        func() time.Time
}

// NewChannel returns a channel that clears after clearAfter. A zero or
// negative duration uses DefaultClearAfter.
func NewChannel(clearAfter time.Duration, sinks ...Sink) *Channel {
	if clearAfter <= 0 {
		clearAfter = DefaultClearAfter
	}
	return &Channel{clearAfter: clearAfter, sinks: sinks, now: time.Now}
}

// AddSink registers another renderer.
func (c *Channel) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Notify shows a banner.
func (c *Channel) Notify(kind Kind, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := Notification{Kind: kind, Detail: detail, At: c.now()}
	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.clearAfter, func() { c.expire(&n) })

	for _, s := range c.sinks {
		s.Show(n)
	}
}

// expire clears n unless a newer banner replaced it.
func (c *Channel) expire(n *Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != n {
		return
	}
	c.current = nil
	for _, s := range c.sinks {
		s.Clear()
	}
}

// Current returns the banner on display, if any.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Close stops the clear timer.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}

// ErrDismissed is returned when the user closes a dialog without confirming.
var ErrDismissed = errors.New("dialog dismissed")

// Tip is a plain message dialog. With Cancel set the user can decline.
type Tip struct {
	Message string
	Cancel  bool
}

// PasswordPrompt asks for the password of a Wi-Fi network. ShowError marks
// the previous attempt as failed.
type PasswordPrompt struct {
	SSID      string
	ShowError bool
}

// Progress is an open upgrade-progress dialog.
type Progress interface {
	// Complete runs the bar to 100%.
	Complete()
	// Close removes the dialog.
	Close()
}

// Dialog is the modal port.
type Dialog interface {
	// ShowTip blocks until the tip is confirmed (true) or cancelled (false).
	ShowTip(ctx context.Context, tip Tip) (bool, error)
	// PromptPassword blocks until a password is entered. It returns
	// ErrDismissed if the prompt is closed.
	PromptPassword(ctx context.Context, prompt PasswordPrompt) (string, error)
	// ShowUpgrade opens a progress dialog that advances on its own until
	// completed or closed.
	ShowUpgrade(ctx context.Context, message string) (Progress, error)
}

// Spinner is a busy indicator.
type Spinner interface {
	Show(message string)
	Hide()
}

// NopSpinner shows nothing.
type NopSpinner struct{}

func (NopSpinner) Show(string) {}
func (NopSpinner) Hide()       {}

// Ports bundles what a section needs to reach the user.
type Ports struct {
	Notifier Notifier
	Dialog   Dialog
	Spinner  Spinner
}

// WithDefaults fills missing ports with inert implementations.
func (p Ports) WithDefaults() Ports {
	if p.Notifier == nil {
		p.Notifier = NopNotifier{}
	}
	if p.Spinner == nil {
		p.Spinner = NopSpinner{}
	}
	return p
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Kind, string) {}
