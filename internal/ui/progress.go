package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The upgrade dialog cannot observe flashing progress on the device, so the
// bar advances on a fixed tick and holds below 100% until Complete.
const (
	UpgradeTick    = 120 * time.Millisecond
	UpgradeStep    = 0.01
	UpgradeCeiling = 0.99
)

type (
	upgradeTickMsg  struct{}
	upgradeDoneMsg  struct{}
	upgradeCloseMsg struct{}
)

// upgradeModel is the Bubble Tea model behind the upgrade dialog.
type upgradeModel struct {
	message string
	percent float64
	done    bool
	width   int
	bar     progress.Model
}

func newUpgradeModel(message string, width int) upgradeModel {
	barWidth := width - 20 // Leave room for percentage
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	return upgradeModel{
		message: message,
		width:   width,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
	}
}

func upgradeTick() tea.Cmd {
	return tea.Tick(UpgradeTick, func(time.Time) tea.Msg { return upgradeTickMsg{} })
}

// Init implements tea.Model
func (m upgradeModel) Init() tea.Cmd {
	return upgradeTick()
}

// Update implements tea.Model
func (m upgradeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case upgradeTickMsg:
		if m.done {
			return m, nil
		}
		m.percent += UpgradeStep
		if m.percent >= UpgradeCeiling {
			m.percent = UpgradeCeiling
			return m, nil
		}
		return m, upgradeTick()
	case upgradeDoneMsg:
		m.done = true
		m.percent = 1
		return m, nil
	case upgradeCloseMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		// Hides the dialog; the upload itself keeps going.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m upgradeModel) View() string {
	var b strings.Builder
	b.WriteString(ProgressLabelStyle.Render(m.message))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%", m.bar.ViewAs(m.percent), m.percent*100)))
	b.WriteString("\n")
	return b.String()
}

// upgradeProgram runs an upgradeModel until Close.
type upgradeProgram struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

func startUpgradeProgram(out io.Writer, message string, width int) *upgradeProgram {
	u := &upgradeProgram{
		program: tea.NewProgram(newUpgradeModel(message, width), tea.WithOutput(out)),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(u.done)
		_, _ = u.program.Run()
	}()
	return u
}

func (u *upgradeProgram) Complete() {
	u.program.Send(upgradeDoneMsg{})
}

func (u *upgradeProgram) Close() {
	u.once.Do(func() {
		u.program.Send(upgradeCloseMsg{})
		<-u.done
	})
}

// plainProgress is the upgrade dialog for non-interactive output.
type plainProgress struct {
	mu     sync.Mutex
	out    io.Writer
	closed bool
}

func (p *plainProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		_, _ = fmt.Fprintln(p.out, SpinnerStyle.Render("  upgrade complete"))
	}
}

func (p *plainProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
