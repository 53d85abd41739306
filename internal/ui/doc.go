// Package ui renders the NE101 client's notifications, dialogs and section
// views in the terminal.
//
// The package uses Lipgloss for result boxes and section views, Huh for the
// tip and password dialogs and Bubble Tea with a Bubbles progress bar for
// the firmware upgrade dialog. Most output follows a "run once and exit"
// pattern; only the dialogs wait for the user.
//
// # Components
//
//   - Console: a notify.Sink and notify.Spinner that prints notifications
//   - Terminal: a notify.Dialog backed by Huh forms
//   - Result: success/failure boxes with troubleshooting hints
//   - Header and RenderSection: framed section views
//
// # Non-interactive use
//
// When stdin is not a terminal, Terminal never blocks: tips resolve to the
// AssumeYes answer, password prompts are dismissed unless a password was
// supplied up front, and the upgrade dialog prints plain progress lines.
//
// # Logging Integration
//
// Logging is controlled via the NE101_LOG_LEVEL environment variable. When
// unset or empty, zap logging is silent, allowing the curated UI output to
// be displayed cleanly.
package ui
