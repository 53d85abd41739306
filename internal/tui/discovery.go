package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ne101/internal/discovery"
)

// ScanFunc finds cameras on the network.
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

// Messages for async operations
type (
	scanStartMsg    struct{}
	scanCompleteMsg struct {
		devices []*discovery.Device
		err     error
	}
	deviceSelectedMsg struct {
		device *discovery.Device
	}
)

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.Serial + " " + d.device.IP + " " + d.device.Name
}

func (d deviceItem) Title() string {
	if d.device.Name != "" {
		return d.device.Name
	}
	return d.device.Model + " " + d.device.ID
}

func (d deviceItem) Description() string {
	return fmt.Sprintf("%s • Firmware: %s", deviceURL(d.device), orUnknown(d.device.Firmware))
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// deviceDelegate renders each camera as a card
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 7 } // Card height including borders

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	device := it.device

	var content strings.Builder
	if index == m.Index() {
		content.WriteString(SelectedItemStyle.Render("→ " + it.Title()))
	} else {
		content.WriteString("  " + it.Title())
	}
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "  Serial:   %s\n", orUnknown(device.Serial))
	fmt.Fprintf(&content, "  Address:  %s\n", deviceURL(device))
	fmt.Fprintf(&content, "  Firmware: %s", orUnknown(device.Firmware))

	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if index == m.Index() {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel lists the cameras a scan found and lets the user pick
// one or type an address.
type DiscoveryModel struct {
	Scanning   bool
	DeviceList list.Model
	Err        error

	ManualMode bool
	URLInput   textinput.Model

	Width         int
	Height        int
	ScanStartTime time.Time

	scan       ScanFunc
	ctx        context.Context
	spinner    spinner.Model
	help       help.Model
	keys       discoveryKeyMap
	manualKeys manualModeKeyMap
}

// NewDiscoveryModel creates a discovery screen that scans with scan.
func NewDiscoveryModel(ctx context.Context, scan ScanFunc) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = discovery.HotspotURL
	urlInput.CharLimit = 64
	urlInput.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Cameras"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	return DiscoveryModel{
		DeviceList: deviceList,
		URLInput:   urlInput,
		scan:       scan,
		ctx:        ctx,
		spinner:    s,
		help:       help.New(),
		keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "enter address")),
			Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
		manualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	scan, ctx := m.scan, m.ctx
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			devices, err := scan(ctx)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		if m.DeviceList.FilterState() == list.Filtering {
			break
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width})
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = nil
		if msg.err != nil {
			m.Err = fmt.Errorf("scan failed: %w", msg.err)
		}
		items := make([]list.Item, len(msg.devices))
		for i, dev := range msg.devices {
			items[i] = deviceItem{device: dev}
		}
		cmd = m.DeviceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Enter):
		if it, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
			return m, func() tea.Msg { return deviceSelectedMsg{device: it.device} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.Err = nil
		return m, tea.Batch(m.DeviceList.SetItems(nil), m.startScan())

	case key.Matches(msg, m.keys.Manual):
		m.ManualMode = true
		m.URLInput.SetValue("")
		return m, m.URLInput.Focus()
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.manualKeys.Cancel):
		m.ManualMode = false
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.manualKeys.Confirm):
		value := strings.TrimSpace(m.URLInput.Value())
		if value == "" {
			value = discovery.HotspotURL
		}
		if !strings.Contains(value, "://") {
			value = "http://" + value
		}
		m.ManualMode = false
		m.URLInput.Blur()
		ctx := m.ctx
		// Probing fills in serial and firmware; an unreachable address is
		// still offered so the dashboard can report what failed.
		return m, func() tea.Msg {
			device, err := discovery.Probe(ctx, value)
			if err != nil {
				device = manualDevice(value)
			}
			return deviceSelectedMsg{device: device}
		}
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// manualDevice describes a typed address that did not answer a probe.
func manualDevice(baseURL string) *discovery.Device {
	return &discovery.Device{
		Name:         "Manual: " + baseURL,
		Metadata:     map[string]string{"url": baseURL},
		DiscoveredAt: time.Now(),
	}
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.help.View(m.manualKeys)
	case m.Scanning:
		content = m.renderScanning()
		helpText = m.help.View(m.keys)
	default:
		content = m.renderDeviceResults()
		helpText = m.help.View(m.keys)
	}
	return renderApplicationContainer(content, helpText, "", m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning() string {
	elapsed := time.Since(m.ScanStartTime).Round(time.Second)
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(m.spinner.View()+" SEARCHING FOR CAMERAS"),
		SubtitleStyle.Render("Checking the camera hotspot and browsing mDNS..."),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
	)
}

func (m DiscoveryModel) renderDeviceResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(ErrorBannerStyle.Render("✗ " + m.Err.Error()))
		b.WriteString("\n\n")
		b.WriteString(troubleshooting)
	case len(m.DeviceList.Items()) == 0:
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render("⚠ No cameras found"))
		b.WriteString("\n\n")
		b.WriteString(troubleshooting)
	default:
		b.WriteString(m.DeviceList.View())
	}
	return b.String()
}

const troubleshooting = `  Troubleshooting:
    • Press the camera's button to wake it and start its hotspot
    • Join the camera's Wi-Fi hotspot, or the network it is configured for
    • Press 'a' to enter the camera's address by hand
    • Press 'r' to scan again
`

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Enter the camera's address"))
	b.WriteString("\n\n")
	b.WriteString("  Address: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	return b.String()
}
