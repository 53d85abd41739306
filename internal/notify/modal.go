package notify

import (
	"context"
	"sync"
)

// Modal serializes dialogs so only one exists at a time. A tip or prompt
// requested while an upgrade dialog is open closes the upgrade dialog
// first, matching how the firmware page swaps its single dialog element.
type Modal struct {
	mu       sync.Mutex
	inner    Dialog
	progress *modalProgress
}

var _ Dialog = (*Modal)(nil)

// NewModal wraps d.
func NewModal(d Dialog) *Modal {
	return &Modal{inner: d}
}

// ShowTip implements Dialog.
func (m *Modal) ShowTip(ctx context.Context, tip Tip) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeProgressLocked()
	return m.inner.ShowTip(ctx, tip)
}

// PromptPassword implements Dialog.
func (m *Modal) PromptPassword(ctx context.Context, prompt PasswordPrompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeProgressLocked()
	return m.inner.PromptPassword(ctx, prompt)
}

// ShowUpgrade implements Dialog.
func (m *Modal) ShowUpgrade(ctx context.Context, message string) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeProgressLocked()

	p, err := m.inner.ShowUpgrade(ctx, message)
	if err != nil {
		return nil, err
	}
	m.progress = &modalProgress{inner: p, modal: m}
	return m.progress, nil
}

// Open reports whether an upgrade dialog is showing.
func (m *Modal) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress != nil
}

func (m *Modal) closeProgressLocked() {
	if m.progress != nil {
		m.progress.closeOnce()
		m.progress = nil
	}
}

type modalProgress struct {
	inner Progress
	modal *Modal
	once  sync.Once
}

func (p *modalProgress) Complete() { p.inner.Complete() }

func (p *modalProgress) Close() {
	p.modal.mu.Lock()
	defer p.modal.mu.Unlock()
	p.closeOnce()
	if p.modal.progress == p {
		p.modal.progress = nil
	}
}

func (p *modalProgress) closeOnce() {
	p.once.Do(p.inner.Close)
}
