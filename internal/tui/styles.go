package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ne101/internal/version"
)

// Application branding constants
const (
	AppName   = "NE101 CAMERA DASHBOARD"
	GitHubURL = "github.com/muurk/ne101"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#7D56F4")
	HighlightColor = lipgloss.Color("#43BF6D")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 2)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SuccessBannerStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)
)

// buildHeaderContent renders the app name, version and the camera the
// dashboard is connected to.
func buildHeaderContent(camera string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)
	if camera != "" {
		right = lipgloss.NewStyle().Foreground(SubtleColor).Render(camera)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// renderApplicationContainer wraps a screen with the header and a footer
// holding the context help, and fills the terminal.
func renderApplicationContainer(content, footerText, camera string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 10
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(buildHeaderContent(camera)),
		lipgloss.NewStyle().Width(terminalWidth-4).Render(content),
		footerStyle.Render(footerText),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// renderModal centers a modal over a dimmed screen.
func renderModal(content string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		ModalStyle.Width(safeModalWidth(60, terminalWidth)).Render(content),
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}

// safeModalWidth keeps a modal inside the terminal.
func safeModalWidth(requested, terminalWidth int) int {
	maxWidth := terminalWidth - 4
	if maxWidth < 40 {
		maxWidth = 40
	}
	if requested < maxWidth {
		return requested
	}
	return maxWidth
}
