package notify

import (
	"context"
	"sync"
)

// DialogCall records one dialog request made to a Recorder.
type DialogCall struct {
	Kind     string // "tip", "password" or "upgrade"
	Tip      Tip
	Prompt   PasswordPrompt
	Message  string
	Progress *RecordedProgress
}

// RecordedProgress is the Progress handed out by Recorder.
type RecordedProgress struct {
	mu        sync.Mutex
	completed bool
	closed    bool
}

func (p *RecordedProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = true
}

func (p *RecordedProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Completed reports whether Complete was called.
func (p *RecordedProgress) Completed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// Closed reports whether Close was called.
func (p *RecordedProgress) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Recorder implements Notifier, Dialog and Spinner by recording calls and
// replaying scripted answers. Tips are confirmed unless TipAnswers says
// otherwise; password prompts pop from Passwords and report ErrDismissed
// once it runs dry.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	dialogs       []DialogCall
	spinner       []string

	TipAnswers []bool
	Passwords  []string
}

var (
	_ Notifier = (*Recorder)(nil)
	_ Dialog   = (*Recorder)(nil)
	_ Spinner  = (*Recorder)(nil)
)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Ports returns r wired into every port.
func (r *Recorder) Ports() Ports {
	return Ports{Notifier: r, Dialog: r, Spinner: r}
}

func (r *Recorder) Notify(kind Kind, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Kind: kind, Detail: detail})
}

func (r *Recorder) ShowTip(ctx context.Context, tip Tip) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs = append(r.dialogs, DialogCall{Kind: "tip", Tip: tip})
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(r.TipAnswers) == 0 {
		return true, nil
	}
	answer := r.TipAnswers[0]
	r.TipAnswers = r.TipAnswers[1:]
	return answer, nil
}

func (r *Recorder) PromptPassword(ctx context.Context, prompt PasswordPrompt) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs = append(r.dialogs, DialogCall{Kind: "password", Prompt: prompt})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(r.Passwords) == 0 {
		return "", ErrDismissed
	}
	pw := r.Passwords[0]
	r.Passwords = r.Passwords[1:]
	return pw, nil
}

func (r *Recorder) ShowUpgrade(ctx context.Context, message string) (Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &RecordedProgress{}
	r.dialogs = append(r.dialogs, DialogCall{Kind: "upgrade", Message: message, Progress: p})
	return p, nil
}

func (r *Recorder) Show(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spinner = append(r.spinner, "show:"+message)
}

func (r *Recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spinner = append(r.spinner, "hide")
}

// Notifications returns a copy of the recorded banners.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent banner.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

// Dialogs returns a copy of the recorded dialog requests.
func (r *Recorder) Dialogs() []DialogCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DialogCall(nil), r.dialogs...)
}

// SpinnerEvents returns the show/hide sequence.
func (r *Recorder) SpinnerEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spinner...)
}
