// Package cellular manages the cat-1 modem settings, the modem status
// report and the AT command console.
package cellular

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

var (
	// ErrBusy is returned while a save or command is outstanding. No
	// request is sent.
	ErrBusy = errors.New("cellular request already in progress")
	// ErrEmptyCommand is returned for a blank AT command.
	ErrEmptyCommand = errors.New("AT command is empty")
)

// SaveTip is shown before new modem settings are sent.
const SaveTip = "The modem restarts with the new settings. The camera may be unreachable over cellular for a short while."

// Reply is the device's answer to an AT command.
type Reply struct {
	Result  int
	Message string
}

// Section owns the cellular parameter and status groups.
type Section struct {
	gw    deviceconfig.Gateway
	ports notify.Ports

	saving  atomic.Bool
	sending atomic.Bool

	mu     sync.Mutex
	params deviceconfig.CellularParams
	status deviceconfig.CellularStatus
}

func NewSection(gw deviceconfig.Gateway, ports notify.Ports) *Section {
	return &Section{gw: gw, ports: ports.WithDefaults()}
}

func (s *Section) Params() deviceconfig.CellularParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Section) Status() deviceconfig.CellularStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Section) fail(err error) error {
	s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
	return err
}

// Load reads the modem settings and then the modem status.
func (s *Section) Load(ctx context.Context) error {
	var params deviceconfig.CellularParams
	if err := s.gw.Read(ctx, deviceconfig.GetCellularParam, &params); err != nil {
		return s.fail(fmt.Errorf("read cellular params: %w", err))
	}
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()

	return s.LoadStatus(ctx)
}

// LoadStatus reads the modem status alone.
func (s *Section) LoadStatus(ctx context.Context) error {
	var status deviceconfig.CellularStatus
	if err := s.gw.Read(ctx, deviceconfig.GetCellularStatus, &status); err != nil {
		return s.fail(fmt.Errorf("read cellular status: %w", err))
	}
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return nil
}

// Save applies edit to a copy of the modem settings and writes them, then
// re-reads the section. Only one save runs at a time.
func (s *Section) Save(ctx context.Context, edit func(p *deviceconfig.CellularParams)) error {
	if !s.saving.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.saving.Store(false)

	next := s.Params()
	if edit != nil {
		edit(&next)
	}
	if err := deviceconfig.ValidateCellularParams(&next); err != nil {
		return err
	}

	if s.ports.Dialog != nil {
		if _, err := s.ports.Dialog.ShowTip(ctx, notify.Tip{Message: SaveTip}); err != nil && !errors.Is(err, notify.ErrDismissed) {
			return err
		}
	}

	if _, err := s.gw.Write(ctx, deviceconfig.SetCellularParam, next); err != nil {
		return s.fail(fmt.Errorf("write cellular params: %w", err))
	}
	s.mu.Lock()
	s.params = next
	s.mu.Unlock()
	logging.Info("Cellular settings saved", zap.String("apn", next.APN), zap.Int("authentication", next.Authentication))

	return s.Load(ctx)
}

// SendCommand sends one AT command and returns the modem's answer. It
// refuses a blank command, and any command while a save or another
// command is outstanding.
func (s *Section) SendCommand(ctx context.Context, command string) (Reply, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Reply{}, ErrEmptyCommand
	}
	if s.saving.Load() || !s.sending.CompareAndSwap(false, true) {
		return Reply{}, ErrBusy
	}
	defer s.sending.Store(false)

	ack, err := s.gw.Write(ctx, deviceconfig.SendCellularCommand, deviceconfig.CellularCommand{Command: command})
	if err != nil {
		return Reply{}, s.fail(fmt.Errorf("send %q: %w", command, err))
	}
	logging.Debug("AT command answered", zap.String("command", command), zap.Int("result", ack.Result))
	return Reply{Result: ack.Result, Message: ack.Message}, nil
}
