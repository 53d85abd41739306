package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ne101/internal/notify"
)

// Terminal is a notify.Dialog that asks the user through Huh forms. Only
// one dialog is on screen at a time; callers wrap it in notify.Modal for
// the process-wide guarantee.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	assumeYes   bool
	password    string
	width       int
}

var _ notify.Dialog = (*Terminal)(nil)

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInteractive overrides terminal detection.
func WithInteractive(interactive bool) TerminalOption {
	return func(t *Terminal) { t.interactive = interactive }
}

// WithAssumeYes answers every confirmation tip with yes when not interactive.
func WithAssumeYes(yes bool) TerminalOption {
	return func(t *Terminal) { t.assumeYes = yes }
}

// WithPassword supplies the answer to the first password prompt. Later
// prompts, which follow a rejected password, are asked interactively or
// dismissed.
func WithPassword(password string) TerminalOption {
	return func(t *Terminal) { t.password = password }
}

// NewTerminal creates a dialog that renders to out (os.Stdout when nil).
func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	t := &Terminal{
		out:         out,
		interactive: IsInteractive(),
		width:       GetTerminalWidth(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ShowTip shows a message. Tips without Cancel only acknowledge; tips with
// Cancel return the user's choice.
func (t *Terminal) ShowTip(ctx context.Context, tip notify.Tip) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.interactive {
		_, _ = fmt.Fprintln(t.out, t.renderTip(tip))
		if !tip.Cancel {
			return true, nil
		}
		answer := "no"
		if t.assumeYes {
			answer = "yes"
		}
		_, _ = fmt.Fprintln(t.out, SpinnerStyle.Render("  (not interactive, answering "+answer+")"))
		return t.assumeYes, nil
	}

	ok := true
	confirm := huh.NewConfirm().
		Title(tip.Message).
		Affirmative("OK").
		Value(&ok)
	if tip.Cancel {
		confirm = confirm.Negative("Cancel")
	} else {
		confirm = confirm.Negative("")
	}
	if err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx); err != nil {
		return false, dialogError(err)
	}
	return ok || !tip.Cancel, nil
}

// PromptPassword asks for a Wi-Fi password.
func (t *Terminal) PromptPassword(ctx context.Context, prompt notify.PasswordPrompt) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.password != "" && !prompt.ShowError {
		password := t.password
		t.password = ""
		return password, nil
	}
	if !t.interactive {
		return "", notify.ErrDismissed
	}

	var password string
	input := huh.NewInput().
		Title("Password for " + prompt.SSID).
		EchoMode(huh.EchoModePassword).
		Value(&password)
	if prompt.ShowError {
		input = input.Description("Wrong or empty password, try again")
	}
	if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		return "", dialogError(err)
	}
	return password, nil
}

// ShowUpgrade opens the upgrade progress dialog.
func (t *Terminal) ShowUpgrade(_ context.Context, message string) (notify.Progress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.interactive {
		_, _ = fmt.Fprintln(t.out, ProgressLabelStyle.Render(message))
		return &plainProgress{out: t.out}, nil
	}
	return startUpgradeProgram(t.out, message, t.width), nil
}

func (t *Terminal) renderTip(tip notify.Tip) string {
	color := PrimaryColor
	if tip.Cancel {
		color = WarningColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(clampWidth(t.width)-2).
		Padding(0, 1).
		Render(strings.TrimSpace(tip.Message))
}

func dialogError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return notify.ErrDismissed
	}
	return err
}
