// Package ui provides terminal output helpers for duskctl.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Palette colors shared with the logger styles.
var (
	Primary = lipgloss.Color("#A78BFA")
	Success = lipgloss.Color("#34D399")
	Warning = lipgloss.Color("#FBBF24")
	Error   = lipgloss.Color("#F87171")
	Info    = lipgloss.Color("#60A5FA")
	Muted   = lipgloss.Color("#94A3B8")
	Day     = lipgloss.Color("#FACC15")
	Night   = lipgloss.Color("#818CF8")
)

// Symbols for different message types
const (
	SymbolSuccess = "✔"
	SymbolError   = "✖"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolArrow   = "→"
	SymbolBullet  = "•"
	SymbolDay     = "☀"
	SymbolNight   = "☾"
)

// Output wraps an io.Writer with UI utilities.
type Output struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	noColor  bool
	quiet    bool
	verbose  bool
}

// NewOutput creates a new Output.
func NewOutput(w io.Writer) *Output {
	return &Output{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
	}
}

// DefaultOutput creates an Output for stdout. Colors are off when stdout is
// not a terminal or NO_COLOR is set.
func DefaultOutput() *Output {
	o := NewOutput(os.Stdout)
	o.noColor = !IsTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	return o
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetNoColor disables colors.
func (o *Output) SetNoColor(noColor bool) {
	o.noColor = noColor
}

// SetQuiet enables quiet mode (only errors).
func (o *Output) SetQuiet(quiet bool) {
	o.quiet = quiet
}

// SetVerbose enables verbose mode.
func (o *Output) SetVerbose(verbose bool) {
	o.verbose = verbose
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer {
	return o.w
}

// style renders text in color unless colors are disabled.
func (o *Output) style(color lipgloss.Color, bold bool, text string) string {
	if o.noColor {
		return text
	}
	return o.renderer.NewStyle().Foreground(color).Bold(bold).Render(text)
}

// Success prints a success message.
func (o *Output) Success(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.style(Success, false, SymbolSuccess), msg)
}

// Error prints an error message.
func (o *Output) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.style(Error, false, SymbolError), msg)
}

// ErrorWithHint prints an error message with a hint.
func (o *Output) ErrorWithHint(err, hint string) {
	fmt.Fprintf(o.w, "%s %s\n", o.style(Error, false, SymbolError), err)
	fmt.Fprintf(o.w, "  %s %s\n", o.style(Muted, false, "Hint:"), hint)
}

// Warning prints a warning message.
func (o *Output) Warning(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.style(Warning, false, SymbolWarning), msg)
}

// Info prints an info message.
func (o *Output) Info(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.style(Info, false, SymbolInfo), msg)
}

// Print prints a plain message.
func (o *Output) Print(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Printf prints without newline.
func (o *Output) Printf(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, format, args...)
}

// Debug prints a debug message (only in verbose mode).
func (o *Output) Debug(format string, args ...interface{}) {
	if !o.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.style(Muted, false, "[DEBUG]"), msg)
}

// Field prints a labeled field.
func (o *Output) Field(label, value string) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.style(Muted, false, label+":"), value)
}

// FieldColored prints a labeled field with colored value.
func (o *Output) FieldColored(label, value string, color lipgloss.Color) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.style(Muted, false, label+":"), o.style(color, true, value))
}

// Section prints a bold heading.
func (o *Output) Section(title string) {
	if o.quiet {
		return
	}
	fmt.Fprintln(o.w, o.style(Primary, true, title))
}

// Mode prints a heading for a day or night switch.
func (o *Output) Mode(mode, theme string) {
	if o.quiet || mode == "" {
		return
	}
	symbol, color := SymbolDay, Day
	if mode == "night" {
		symbol, color = SymbolNight, Night
	}
	title := strings.ToUpper(mode[:1]) + mode[1:]
	fmt.Fprintf(o.w, "%s %s %s %s\n",
		o.style(color, true, symbol),
		o.style(color, true, title),
		o.style(Muted, false, SymbolArrow),
		theme,
	)
}

// OnOff formats a liveness flag.
func (o *Output) OnOff(on bool) string {
	if on {
		return o.style(Success, false, "running")
	}
	return o.style(Muted, false, "stopped")
}

// Table prints a simple table.
func (o *Output) Table(headers []string, rows [][]string) {
	if o.quiet {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print headers
	headerLine := ""
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
	}
	fmt.Fprintln(o.w, o.style(Primary, true, strings.TrimSpace(headerLine)))

	// Print separator
	sepLine := ""
	for _, w := range widths {
		sepLine += strings.Repeat("-", w) + "  "
	}
	fmt.Fprintln(o.w, o.style(Muted, false, strings.TrimSpace(sepLine)))

	// Print rows
	for _, row := range rows {
		rowLine := ""
		for i, cell := range row {
			if i < len(widths) {
				rowLine += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(o.w, strings.TrimSpace(rowLine))
	}
}

// Ago formats t relative to now, as in "3 hours ago".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Spinner represents a CLI spinner.
type Spinner struct {
	out      *Output
	message  string
	frames   []string
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

// NewSpinner creates a new spinner.
func NewSpinner(out *Output, message string) *Spinner {
	return &Spinner{
		out:      out,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the spinner. Nothing is drawn in quiet mode or without
// colors, where the output is likely not a terminal.
func (s *Spinner) Start() {
	if s.out.quiet || s.out.noColor {
		return
	}
	s.started = true

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		i := 0
		for {
			frame := s.frames[i%len(s.frames)]
			fmt.Fprintf(s.out.w, "\r%s %s", s.out.style(Primary, false, frame), s.message)
			select {
			case <-s.stop:
				// Clear the line
				fmt.Fprintf(s.out.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
				return
			case <-ticker.C:
				i++
			}
		}
	}()
}

// Stop stops the spinner.
func (s *Spinner) Stop() {
	if !s.started {
		return
	}
	s.started = false
	close(s.stop)
	<-s.done
}
