package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Param is one key/value line in a header or result box.
type Param struct {
	Key   string
	Value string
}

// Header is a section banner with the section title, the device it was read
// from and optional parameters.
type Header struct {
	Title  string  // e.g., "CAPTURE"
	Device string  // e.g., "http://192.168.1.1"
	Params []Param // Rendered in order
	Width  int     // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, device string, params ...Param) *Header {
	return &Header{
		Title:  title,
		Device: device,
		Params: params,
		Width:  GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := clampWidth(h.Width)

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	top := titleLine
	if h.Device != "" {
		top = lipgloss.JoinVertical(lipgloss.Left, titleLine, HeaderCommandStyle.Render(h.Device))
	}

	content := top
	if len(h.Params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))

		lines := make([]string, 0, len(h.Params))
		for _, p := range h.Params {
			lines = append(lines, HeaderParamKeyStyle.Render(p.Key+":")+" "+HeaderParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, strings.Join(lines, "\n"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2). // Account for border characters
		Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}

// RenderSection renders a header followed by a formatted section body, as
// produced by the deviceconfig formatters.
func RenderSection(title, device, body string, width int) string {
	header := NewHeader(title, device).SetWidth(width).Render()
	return header + "\n" + SectionBodyStyle.Render(strings.TrimRight(body, "\n"))
}
