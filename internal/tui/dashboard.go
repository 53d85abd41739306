package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ne101/internal/codec"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/mqtt"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/session"
	"github.com/muurk/ne101/internal/ui"
	"github.com/muurk/ne101/internal/wifi"
)

// Tab is one parameter group page of the dashboard.
type Tab int

const (
	TabDevice Tab = iota
	TabCapture
	TabUpload
	TabImage
	TabMQTT
	TabNetwork
)

var tabNames = []string{"Device", "Capture", "Upload", "Image", "MQTT", "Network"}

func (t Tab) String() string { return tabNames[t] }

// errCancelled marks an operation the user declined in a dialog.
var errCancelled = errors.New("cancelled")

type (
	initDoneMsg struct {
		results []session.StepResult
		err     error
	}

	opDoneMsg struct {
		label string
		err   error
	}

	busEventMsg struct{ event any }

	upgradeTickMsg struct{ id int }
)

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Connect  key.Binding
	Scan     key.Binding
	Trigger  key.Binding
	Upload   key.Binding
	TLS      key.Binding
	Reload   key.Binding
	SyncTime key.Binding
	Sleep    key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Down, k.Connect, k.Scan, k.Trigger, k.Upload, k.TLS, k.Reload, k.SyncTime, k.Sleep, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Connect, k.Scan, k.Trigger, k.Upload, k.TLS},
		{k.Reload, k.SyncTime, k.Sleep, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next page")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "previous page")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Connect:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
		Scan:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "rescan")),
		Trigger:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "trigger capture")),
		Upload:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "upload mode")),
		TLS:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle TLS")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		SyncTime: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sync time")),
		Sleep:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sleep")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalTip
	modalPassword
	modalUpgrade
)

// modalState is the one dialog the dashboard can show.
type modalState struct {
	kind modalKind

	tip      notify.Tip
	tipReply chan bool

	prompt        notify.PasswordPrompt
	passwordReply chan passwordReply
	input         textinput.Model

	upgradeID int
	message   string
	percent   float64
	done      bool
}

// DashboardModel shows every parameter group of one camera and runs
// actions against its session.
type DashboardModel struct {
	Session  *session.Session
	Notifier notify.Notifier
	Label    string

	Width  int
	Height int

	Tab    Tab
	Cursor int // Selected Wi-Fi network

	Loading   bool
	Running   string // Label of the operation in flight
	Busy      string // Spinner message from a section
	Steps     map[string]error
	LastError error
	Banner    *notify.Notification

	MQTTConnected bool
	WifiState     string

	modal   modalState
	ctx     context.Context
	events  events.Subscription
	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    dashboardKeyMap
}

// NewDashboardModel creates a dashboard over s. sub delivers bus events
// and may be nil.
func NewDashboardModel(ctx context.Context, s *session.Session, notifier notify.Notifier, sub events.Subscription, label string) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return DashboardModel{
		Session:  s,
		Notifier: notifier,
		Label:    label,
		Loading:  true,
		Steps:    make(map[string]error),
		ctx:      ctx,
		events:   sub,
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newDashboardKeyMap(),
	}
}

// Init implements tea.Model
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.waitForEvent())
}

func (m DashboardModel) load() tea.Cmd {
	ctx, s := m.ctx, m.Session
	return func() tea.Msg {
		results, err := s.Init(ctx)
		return initDoneMsg{results: results, err: err}
	}
}

func (m DashboardModel) waitForEvent() tea.Cmd {
	sub := m.events
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return busEventMsg{event: ev}
	}
}

// run executes fn off the event loop. Success raises a banner from the
// command goroutine, never from Update, since the banner sink posts back
// into the program.
func (m DashboardModel) run(label string, fn func(ctx context.Context) error) (DashboardModel, tea.Cmd) {
	if m.Running != "" || m.Loading {
		return m, nil
	}
	m.Running = label
	m.LastError = nil
	ctx, notifier := m.ctx, m.Notifier
	return m, func() tea.Msg {
		err := fn(ctx)
		if err == nil && notifier != nil {
			notifier.Notify(notify.Success, label)
		}
		return opDoneMsg{label: label, err: err}
	}
}

// Update implements tea.Model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initDoneMsg:
		m.Loading = false
		for _, r := range msg.results {
			m.Steps[r.Step] = r.Err
		}
		m.MQTTConnected = m.Session.MQTT.Connected()
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		m.Running = ""
		if msg.err != nil && !errors.Is(msg.err, notify.ErrDismissed) && !errors.Is(msg.err, errCancelled) {
			m.LastError = msg.err
		}
		m.clampCursor()
		return m, nil

	case busEventMsg:
		m.applyEvent(msg.event)
		return m, m.waitForEvent()

	case bannerMsg:
		n := msg.n
		m.Banner = &n
		return m, nil

	case bannerClearMsg:
		m.Banner = nil
		return m, nil

	case busyMsg:
		m.Busy = ""
		if msg.busy {
			m.Busy = msg.message
		}
		return m, nil

	case tipRequestMsg:
		m.modal = modalState{kind: modalTip, tip: msg.tip, tipReply: msg.reply}
		return m, nil

	case passwordRequestMsg:
		input := textinput.New()
		input.Placeholder = "password"
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
		input.Focus()
		m.modal = modalState{kind: modalPassword, prompt: msg.prompt, passwordReply: msg.reply, input: input}
		return m, textinput.Blink

	case upgradeOpenMsg:
		m.modal = modalState{kind: modalUpgrade, upgradeID: msg.id, message: msg.message}
		return m, upgradeTick(msg.id)

	case upgradeTickMsg:
		if m.modal.kind != modalUpgrade || m.modal.upgradeID != msg.id || m.modal.done {
			return m, nil
		}
		m.modal.percent += ui.UpgradeStep
		if m.modal.percent >= ui.UpgradeCeiling {
			m.modal.percent = ui.UpgradeCeiling
			return m, nil
		}
		return m, upgradeTick(msg.id)

	case upgradeCompleteMsg:
		if m.modal.kind == modalUpgrade && m.modal.upgradeID == msg.id {
			m.modal.done = true
			m.modal.percent = 1
		}
		return m, nil

	case upgradeClosedMsg:
		if m.modal.kind == modalUpgrade && m.modal.upgradeID == msg.id {
			m.modal = modalState{}
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal.kind != modalNone {
			return m.updateModal(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func upgradeTick(id int) tea.Cmd {
	return tea.Tick(ui.UpgradeTick, func(time.Time) tea.Msg { return upgradeTickMsg{id: id} })
}

func (m *DashboardModel) applyEvent(ev any) {
	switch ev := ev.(type) {
	case events.MQTTStatus:
		m.MQTTConnected = ev.Connected
	case events.WifiStateChanged:
		m.WifiState = ev.To
		if ev.SSID != "" {
			m.WifiState += " " + ev.SSID
		}
	case events.SessionStep:
		m.Steps[ev.Step] = ev.Err
	}
}

func (m DashboardModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal.kind {
	case modalTip:
		switch msg.String() {
		case "enter", "y":
			m.modal.tipReply <- true
			m.modal = modalState{}
		case "esc", "n":
			m.modal.tipReply <- !m.modal.tip.Cancel
			m.modal = modalState{}
		}
		return m, nil

	case modalPassword:
		switch msg.String() {
		case "enter":
			m.modal.passwordReply <- passwordReply{password: m.modal.input.Value()}
			m.modal = modalState{}
			return m, nil
		case "esc":
			m.modal.passwordReply <- passwordReply{err: notify.ErrDismissed}
			m.modal = modalState{}
			return m, nil
		}
		var cmd tea.Cmd
		m.modal.input, cmd = m.modal.input.Update(msg)
		return m, cmd
	}
	// The upgrade dialog has no controls.
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.activeKeys()
	s := m.Session

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		m.Tab = (m.Tab + 1) % Tab(len(tabNames))
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.Tab = (m.Tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		m.Cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Reload):
		if m.Running != "" || m.Loading {
			return m, nil
		}
		m.Loading = true
		m.LastError = nil
		return m, m.load()

	case key.Matches(msg, keys.SyncTime):
		return m.run("Device time synchronized", s.System.SyncTime)

	case key.Matches(msg, keys.Sleep):
		return m.run("Sleep command sent", func(ctx context.Context) error {
			sent, err := s.System.Sleep(ctx)
			if err == nil && !sent {
				return errCancelled
			}
			return err
		})

	case key.Matches(msg, keys.Trigger):
		enable := !s.Capture.Params().AlarmInCapture.Bool()
		return m.run(fmt.Sprintf("Trigger capture %s", onOff(enable)), func(ctx context.Context) error {
			return s.Capture.SetTriggerCapture(ctx, enable)
		})

	case key.Matches(msg, keys.Upload):
		mode := deviceconfig.UploadScheduled
		if s.Upload.Params().Mode == deviceconfig.UploadScheduled {
			mode = deviceconfig.UploadImmediate
		}
		return m.run("Upload mode changed", func(ctx context.Context) error {
			return s.Upload.SetMode(ctx, mode)
		})

	case key.Matches(msg, keys.TLS):
		enable := !s.MQTT.Platform().TLSEnable.Bool()
		return m.run(fmt.Sprintf("MQTT TLS %s", onOff(enable)), func(ctx context.Context) error {
			return s.MQTT.Save(ctx, func(p *deviceconfig.MQTTPlatform) { mqtt.ApplyTLS(p, enable) })
		})

	case key.Matches(msg, keys.Scan):
		return m.run("Wi-Fi list refreshed", s.Wifi.Refresh)

	case key.Matches(msg, keys.Connect):
		entries := s.Wifi.Entries()
		if m.Cursor >= len(entries) {
			return m, nil
		}
		ssid := entries[m.Cursor].SSID
		return m.run("Connected to "+ssid, func(ctx context.Context) error {
			state, err := s.Wifi.Connect(ctx, ssid)
			if err != nil {
				return err
			}
			if _, failed := state.(wifi.Failed); failed {
				return fmt.Errorf("could not connect to %s", ssid)
			}
			return nil
		})
	}
	return m, nil
}

// activeKeys enables the bindings that apply to the current page.
func (m DashboardModel) activeKeys() dashboardKeyMap {
	k := m.keys
	cellular := m.cellular()
	network := m.Tab == TabNetwork && !cellular

	k.Up.SetEnabled(network)
	k.Down.SetEnabled(network)
	k.Connect.SetEnabled(network)
	k.Scan.SetEnabled(network)
	k.Trigger.SetEnabled(m.Tab == TabCapture)
	k.Upload.SetEnabled(m.Tab == TabUpload)
	k.TLS.SetEnabled(m.Tab == TabMQTT)
	k.SyncTime.SetEnabled(m.Tab == TabDevice)
	k.Sleep.SetEnabled(m.Tab == TabDevice)
	return k
}

func (m DashboardModel) cellular() bool {
	info := m.Session.System.Info()
	return info.IsCellular()
}

func (m *DashboardModel) clampCursor() {
	n := len(m.Session.Wifi.Entries())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View implements tea.Model
func (m DashboardModel) View() string {
	if m.Width == 0 {
		m.Width = 80
	}
	if m.Height == 0 {
		m.Height = 24
	}

	if m.modal.kind != modalNone {
		return renderModal(m.renderModal(), m.Width, m.Height)
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderPage())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())

	return renderApplicationContainer(b.String(), m.help.View(m.activeKeys()), m.Label, m.Width, m.Height)
}

func (m DashboardModel) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.Tab {
			tabs[i] = ActiveTabStyle.Render(name)
		} else {
			tabs[i] = TabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// pageStep is the startup step that reads the page's group.
func (m DashboardModel) pageStep() string {
	switch m.Tab {
	case TabCapture:
		return session.StepCapture
	case TabUpload:
		return session.StepUpload
	case TabImage:
		return session.StepImage
	case TabMQTT:
		return session.StepPlatform
	case TabNetwork:
		if m.cellular() {
			return session.StepCellular
		}
		return session.StepWifi
	default:
		return session.StepDevice
	}
}

func (m DashboardModel) renderPage() string {
	if m.Loading {
		return m.spinner.View() + " Reading camera settings..."
	}
	if err, ok := m.Steps[m.pageStep()]; ok && err != nil {
		return ErrorBannerStyle.Render("Could not read "+m.Tab.String()+" settings") + "\n" +
			SubtitleStyle.Render(deviceconfig.GetShortErrorMessage(err))
	}

	s := m.Session
	switch m.Tab {
	case TabCapture:
		c, t := s.Capture.Params(), s.Capture.Trigger()
		return deviceconfig.FormatCapture(&c, &t)
	case TabUpload:
		u := s.Upload.Params()
		return deviceconfig.FormatUpload(&u)
	case TabImage:
		l, c := s.Image.Light(), s.Image.Camera()
		return deviceconfig.FormatImage(&l, &c)
	case TabMQTT:
		p := s.MQTT.Platform()
		status := ErrorBannerStyle.Render("disconnected")
		if m.MQTTConnected {
			status = SuccessBannerStyle.Render("connected")
		}
		return deviceconfig.FormatMQTT(&p) + "\n\nBroker: " + status
	case TabNetwork:
		if m.cellular() {
			p, st := s.Cellular.Params(), s.Cellular.Status()
			return deviceconfig.FormatCellular(&p, &st)
		}
		return m.renderWifi()
	default:
		info, battery, ntp := s.System.Info(), s.System.Battery(), s.System.NTP()
		return deviceconfig.FormatDeviceInfo(&info, &battery, &ntp)
	}
}

func (m DashboardModel) renderWifi() string {
	entries := m.Session.Wifi.Entries()
	if len(entries) == 0 {
		return SubtitleStyle.Render("No networks found. Press w to scan again.")
	}

	var b strings.Builder
	for i, e := range entries {
		lock := " "
		if e.Encrypted {
			lock = "*"
		}
		line := fmt.Sprintf("%-32s %s %s  %s", e.SSID, lock, codec.SignalBars(e.RSSI), e.Status)
		if i == m.Cursor {
			line = SelectedItemStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.WifiState != "" {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Last change: " + m.WifiState))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m DashboardModel) renderStatus() string {
	switch {
	case m.Busy != "":
		return m.spinner.View() + " " + m.Busy
	case m.Running != "":
		return m.spinner.View() + " Working..."
	case m.Banner != nil && m.Banner.Kind == notify.Error:
		return ErrorBannerStyle.Render(ui.FailureMarker + " " + m.Banner.Detail)
	case m.Banner != nil:
		return SuccessBannerStyle.Render(ui.SuccessMarker + " " + m.Banner.Detail)
	case m.LastError != nil:
		return ErrorBannerStyle.Render(ui.FailureMarker + " " + m.LastError.Error())
	}
	return ""
}

func (m DashboardModel) renderModal() string {
	switch m.modal.kind {
	case modalTip:
		title, hint := TitleStyle.Render("Notice"), "enter to continue"
		if m.modal.tip.Cancel {
			title, hint = WarningStyle.Render("Confirm")+"\n\n", "y/enter confirm, n/esc cancel"
		}
		return title + m.modal.tip.Message + "\n\n" + SubtitleStyle.Render(hint)

	case modalPassword:
		var b strings.Builder
		b.WriteString(TitleStyle.Render("Password for " + m.modal.prompt.SSID))
		if m.modal.prompt.ShowError {
			b.WriteString(ErrorBannerStyle.Render("Wrong or empty password, try again"))
			b.WriteString("\n\n")
		}
		b.WriteString(m.modal.input.View())
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("enter to connect, esc to cancel"))
		return b.String()

	case modalUpgrade:
		return TitleStyle.Render(m.modal.message) +
			fmt.Sprintf("%s  %3.0f%%", m.bar.ViewAs(m.modal.percent), m.modal.percent*100)
	}
	return ""
}
