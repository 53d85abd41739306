package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/discovery"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
	"github.com/muurk/ne101/internal/session"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery  Screen = "discovery"
	ScreenConnecting Screen = "connecting"
	ScreenDashboard  Screen = "dashboard"
)

// Connection is one opened camera.
type Connection struct {
	Session *session.Session
	Bus     events.MessageBus
	Label   string
}

// Close stops the session and shuts its bus down.
func (c *Connection) Close() {
	c.Session.Close()
	if c.Bus != nil {
		c.Bus.Close()
	}
}

// ConnectFunc opens the camera at baseURL. The session it returns must be
// built with ports so its dialogs and banners reach the dashboard.
type ConnectFunc func(baseURL string, ports notify.Ports) (*Connection, error)

// Config configures Run.
type Config struct {
	// URL opens this camera directly. Empty starts with a scan.
	URL     string
	Scan    ScanFunc
	Connect ConnectFunc
	// Sinks receive every banner alongside the dashboard.
	Sinks []notify.Sink
}

type connectedMsg struct {
	url  string
	conn *Connection
	err  error
}

var dashboardTopics = []string{events.TopicMQTTStatus, events.TopicWifi, events.TopicSession, events.TopicCredentials}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	Discovery DiscoveryModel
	Dashboard DashboardModel
	Conn      *Connection
	Target    string // Address being connected to
	Err       error  // Why a direct connection failed

	Width  int
	Height int

	ctx     context.Context
	cfg     Config
	ports   notify.Ports
	started bool
}

// NewAppModel creates the application model. It scans first unless
// cfg.URL is set.
func NewAppModel(ctx context.Context, cfg Config, ports notify.Ports) AppModel {
	m := AppModel{
		CurrentScreen: ScreenDiscovery,
		ctx:           ctx,
		cfg:           cfg,
		ports:         ports,
	}
	if cfg.Scan != nil {
		m.Discovery = NewDiscoveryModel(ctx, cfg.Scan)
	}
	if cfg.URL != "" {
		m.CurrentScreen = ScreenConnecting
		m.Target = cfg.URL
	}
	return m
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenConnecting {
		return m.connect(m.Target)
	}
	return m.Discovery.Init()
}

func (m AppModel) connect(url string) tea.Cmd {
	connect, ports := m.cfg.Connect, m.ports
	return func() tea.Msg {
		conn, err := connect(url, ports)
		return connectedMsg{url: url, conn: conn, err: err}
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var cmd tea.Cmd
		if m.cfg.Scan != nil {
			var model tea.Model
			model, cmd = m.Discovery.Update(msg)
			m.Discovery = model.(DiscoveryModel)
		}
		m.Dashboard.Width = msg.Width
		m.Dashboard.Height = msg.Height
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.CurrentScreen == ScreenDashboard && msg.String() == "esc" &&
			m.Dashboard.modal.kind == modalNone && m.cfg.Scan != nil {
			return m.backToDiscovery()
		}

	case deviceSelectedMsg:
		m.CurrentScreen = ScreenConnecting
		m.Target = deviceURL(msg.device)
		return m, m.connect(m.Target)

	case connectedMsg:
		return m.connected(msg)
	}

	switch m.CurrentScreen {
	case ScreenDashboard:
		model, cmd := m.Dashboard.Update(msg)
		m.Dashboard = model.(DashboardModel)
		return m, cmd
	case ScreenDiscovery:
		if m.cfg.Scan == nil {
			return m, nil
		}
		model, cmd := m.Discovery.Update(msg)
		m.Discovery = model.(DiscoveryModel)
		return m, cmd
	}
	return m, nil
}

func (m AppModel) connected(msg connectedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logging.Warn("Connect failed", zap.String("url", msg.url), zap.Error(msg.err))
		if m.cfg.Scan == nil {
			m.Err = fmt.Errorf("open %s: %w", msg.url, msg.err)
			return m, tea.Quit
		}
		m.CurrentScreen = ScreenDiscovery
		m.Discovery.Err = fmt.Errorf("open %s: %w", msg.url, msg.err)
		return m, nil
	}

	label := msg.conn.Label
	if label == "" {
		label = msg.url
	}
	var sub events.Subscription
	if msg.conn.Bus != nil {
		sub = msg.conn.Bus.Subscribe(dashboardTopics...)
	}

	m.Conn = msg.conn
	m.CurrentScreen = ScreenDashboard
	m.Dashboard = NewDashboardModel(m.ctx, msg.conn.Session, m.ports.Notifier, sub, label)
	m.Dashboard.Width = m.Width
	m.Dashboard.Height = m.Height
	return m, m.Dashboard.Init()
}

func (m AppModel) backToDiscovery() (tea.Model, tea.Cmd) {
	m.closeConnection()
	m.CurrentScreen = ScreenDiscovery
	m.Dashboard = DashboardModel{}
	m.Discovery.Err = nil
	return m, m.Discovery.startScan()
}

func (m *AppModel) closeConnection() {
	if m.Conn != nil {
		m.Conn.Close()
		m.Conn = nil
	}
}

func deviceURL(d *discovery.Device) string {
	if u := d.GetMetadata("url"); u != "" {
		return u
	}
	return d.BaseURL()
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDashboard:
		return m.Dashboard.View()
	case ScreenConnecting:
		content := TitleStyle.Render("Connecting to "+m.Target) + SubtitleStyle.Render("Reading device information...")
		return renderApplicationContainer(content, "ctrl+c quit", m.Target, m.Width, m.Height)
	default:
		if m.cfg.Scan == nil {
			return ""
		}
		return m.Discovery.View()
	}
}

// Run shows the dashboard until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Connect == nil {
		return errors.New("tui: no connect function")
	}
	if cfg.URL == "" && cfg.Scan == nil {
		return errors.New("tui: need a camera address or a scan function")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := NewBridge()
	channel := notify.NewChannel(0, append([]notify.Sink{bridge}, cfg.Sinks...)...)
	defer channel.Close()

	p := tea.NewProgram(NewAppModel(ctx, cfg, bridge.Ports(channel)), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)
	final, err := p.Run()
	interrupted := ctx.Err() != nil
	bridge.Attach(nil)
	cancel()

	if app, ok := final.(AppModel); ok {
		app.closeConnection()
		if app.Err != nil {
			return app.Err
		}
	}
	if errors.Is(err, tea.ErrProgramKilled) && interrupted {
		return nil
	}
	return err
}
