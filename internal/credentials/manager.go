package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// MaxFileSize is the largest credential file accepted.
const MaxFileSize int64 = 512 * 1024 * 1024

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrInvalidExtension = errors.New("file extension not allowed")
)

type slotState struct {
	fileName string
	pending  File
}

// Manager owns the credential slots.
type Manager struct {
	gw    deviceconfig.Gateway
	ports notify.Ports
	bus   events.Publisher

	mu    sync.Mutex
	slots [3]slotState
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher announces slot changes on bus.
func WithPublisher(bus events.Publisher) Option {
	return func(m *Manager) { m.bus = bus }
}

// NewManager creates a manager with every slot empty.
func NewManager(gw deviceconfig.Gateway, ports notify.Ports, opts ...Option) *Manager {
	m := &Manager{gw: gw, ports: ports.WithDefaults()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadPlatform takes the slot names the device reported.
func (m *Manager) LoadPlatform(p *deviceconfig.MQTTPlatform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[CA].fileName = p.CAName
	m.slots[Cert].fileName = p.CertName
	m.slots[Key].fileName = p.KeyName
}

// ApplyTo writes the current slot names into p for submission.
func (m *Manager) ApplyTo(p *deviceconfig.MQTTPlatform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CAName = m.slots[CA].fileName
	p.CertName = m.slots[Cert].fileName
	p.KeyName = m.slots[Key].fileName
}

// FileName returns the file held by slot, or "".
func (m *Manager) FileName(slot Slot) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slot].fileName
}

// Present reports whether slot holds a file.
func (m *Manager) Present(slot Slot) bool {
	return strings.TrimSpace(m.FileName(slot)) != ""
}

// Pending returns the file uploaded to slot during this session, if any.
func (m *Manager) Pending(slot Slot) File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slot].pending
}

// Validate checks f against slot's rules. Checks run in order: empty, size,
// then extension.
func Validate(slot Slot, f File) error {
	if f.Size() == 0 {
		return fieldError(slot, ErrEmptyFile, fmt.Sprintf("%s is empty", f.Name()))
	}
	if f.Size() > MaxFileSize {
		return fieldError(slot, ErrFileTooLarge, fmt.Sprintf("%s is too large (%s); the limit is %s",
			f.Name(), humanize.IBytes(uint64(f.Size())), humanize.IBytes(uint64(MaxFileSize))))
	}
	lower := strings.ToLower(f.Name())
	for _, ext := range slot.Extensions() {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return fieldError(slot, ErrInvalidExtension, fmt.Sprintf("%s must end in %s",
		slot.Label(), strings.Join(slot.Extensions(), ", ")))
}

func fieldError(slot Slot, sentinel error, msg string) error {
	return &deviceconfig.DeviceError{
		Type:    deviceconfig.ErrTypeValidation,
		Field:   slot.String(),
		Message: msg,
		Err:     sentinel,
	}
}

// Select validates f for slot and shows the reason when it is rejected.
func (m *Manager) Select(ctx context.Context, slot Slot, f File) error {
	err := Validate(slot, f)
	if err == nil {
		return nil
	}
	logging.Debug("Credential rejected", zap.String("slot", slot.String()), zap.Error(err))
	if m.ports.Dialog != nil {
		var devErr *deviceconfig.DeviceError
		msg := err.Error()
		if errors.As(err, &devErr) {
			msg = devErr.Message
		}
		if _, derr := m.ports.Dialog.ShowTip(ctx, notify.Tip{Message: msg}); derr != nil {
			logging.Debug("Tip dialog failed", zap.Error(derr))
		}
	}
	return err
}

// Upload validates f and sends it to slot. The slot changes only when the
// device accepts the file.
func (m *Manager) Upload(ctx context.Context, slot Slot, f File) error {
	if err := m.Select(ctx, slot, f); err != nil {
		return err
	}

	content, err := f.Open()
	if err != nil {
		m.ports.Notifier.Notify(notify.Error, err.Error())
		return fmt.Errorf("failed to open %s: %w", f.Name(), err)
	}
	defer content.Close()

	m.ports.Spinner.Show("Uploading...")
	_, err = m.gw.Upload(ctx, slot.uploadEndpoint(), f.Name(), content)
	m.ports.Spinner.Hide()

	if err != nil {
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return fmt.Errorf("upload %s: %w", slot.Label(), err)
	}

	m.mu.Lock()
	m.slots[slot] = slotState{fileName: f.Name(), pending: f}
	m.mu.Unlock()

	logging.Info("Credential uploaded", zap.String("slot", slot.String()), zap.String("file", f.Name()))
	events.Publish(m.bus, events.TopicCredentials, events.CredentialChanged{Slot: slot.String(), FileName: f.Name()})
	m.ports.Notifier.Notify(notify.Success, fmt.Sprintf("%s uploaded", slot.Label()))
	return nil
}

// Clear empties slot. An empty slot is cleared without a request. An
// occupied slot is cleared only after the user confirms; the device delete
// is then attempted and the slot is cleared locally regardless of its
// outcome. The returned bool reports whether the slot was cleared.
func (m *Manager) Clear(ctx context.Context, slot Slot) (bool, error) {
	if !m.Present(slot) {
		m.clearLocal(slot)
		return true, nil
	}

	if m.ports.Dialog == nil {
		return false, errors.New("no dialog available to confirm clear")
	}
	ok, err := m.ports.Dialog.ShowTip(ctx, notify.Tip{
		Message: fmt.Sprintf("Clear the %s %q from the camera?", slot.Label(), m.FileName(slot)),
		Cancel:  true,
	})
	if err != nil {
		if errors.Is(err, notify.ErrDismissed) {
			return false, nil
		}
		return false, err
	}
	if !ok {
		return false, nil
	}

	defer m.clearLocal(slot)

	_, err = m.gw.Upload(ctx, slot.deleteEndpoint(), "", nil)
	if err != nil {
		logging.Warn("Credential delete failed", zap.String("slot", slot.String()), zap.Error(err))
		m.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return true, fmt.Errorf("delete %s: %w", slot.Label(), err)
	}
	m.ports.Notifier.Notify(notify.Success, fmt.Sprintf("%s cleared", slot.Label()))
	return true, nil
}

func (m *Manager) clearLocal(slot Slot) {
	m.mu.Lock()
	changed := m.slots[slot].fileName != ""
	m.slots[slot] = slotState{}
	m.mu.Unlock()
	if changed {
		events.Publish(m.bus, events.TopicCredentials, events.CredentialChanged{Slot: slot.String()})
	}
}
