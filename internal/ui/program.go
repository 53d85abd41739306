package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muurk/ne101/internal/notify"
)

// Printer provides methods for printing UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintSection prints a framed section view
func (p *Printer) PrintSection(title, device, body string) {
	p.Println(RenderSection(title, device, body, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error) {
	p.Println(NewFailureResult(title, err).SetWidth(p.width).Render())
}

// Console prints notifications as single styled lines. It implements
// notify.Sink; Spinner returns the matching notify.Spinner.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

var _ notify.Sink = (*Console)(nil)

// NewConsole creates a console sink. A quiet console prints notifications
// but no spinner messages.
func NewConsole(w io.Writer, quiet bool) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{out: w, quiet: quiet}
}

// Show prints a notification.
func (c *Console) Show(n notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, FormatNotification(n))
}

// Clear is a no-op: printed lines stay in the scrollback.
func (c *Console) Clear() {}

// Spinner returns a spinner that prints in-flight request messages to the
// same writer. A quiet console returns notify.NopSpinner.
func (c *Console) Spinner() notify.Spinner {
	if c.quiet {
		return notify.NopSpinner{}
	}
	return consoleSpinner{c}
}

type consoleSpinner struct{ c *Console }

func (s consoleSpinner) Show(message string) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	_, _ = fmt.Fprintln(s.c.out, SpinnerStyle.Render(BusyMarker+" "+message))
}

func (consoleSpinner) Hide() {}

// FormatNotification renders one notification line.
func FormatNotification(n notify.Notification) string {
	if n.Kind == notify.Error {
		return ErrorTitleStyle.Render(FailureMarker) + " " + ErrorMessageStyle.Render(n.Detail)
	}
	return SuccessTitleStyle.Render(SuccessMarker) + " " + ResultValueStyle.Render(n.Detail)
}
