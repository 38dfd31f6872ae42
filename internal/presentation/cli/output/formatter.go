// Package output renders CLI results as colored text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Format selects how command results are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a --output flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown output format: %s", s)
	}
}

// Color is an ANSI escape sequence.
type Color string

const (
	ColorReset  Color = "\033[0m"
	ColorRed    Color = "\033[31m"
	ColorGreen  Color = "\033[32m"
	ColorYellow Color = "\033[33m"
	ColorBlue   Color = "\033[34m"
	ColorCyan   Color = "\033[36m"
	ColorBold   Color = "\033[1m"
	ColorDim    Color = "\033[2m"
)

// Formatter writes command output in the configured format. Methods are safe
// for concurrent use.
type Formatter struct {
	mu     sync.Mutex
	writer io.Writer
	format Format
	color  bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithWriter redirects output away from stdout.
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) { f.writer = w }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(f *Formatter) { f.format = format }
}

// WithColor enables or disables ANSI colors.
func WithColor(enabled bool) Option {
	return func(f *Formatter) { f.color = enabled }
}

// NewFormatter creates a text formatter on stdout with colors enabled.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		writer: os.Stdout,
		format: FormatText,
		color:  true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format returns the configured output format.
func (f *Formatter) Format() Format {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.format
}

// Println writes a formatted line.
func (f *Formatter) Println(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := fmt.Fprintf(f.writer, format+"\n", args...)
	return err
}

// Colorize wraps text in the color's escape codes when colors are enabled.
func (f *Formatter) Colorize(text string, color Color) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.color {
		return text
	}
	return string(color) + text + string(ColorReset)
}

func (f *Formatter) statusLine(symbol string, color Color, format string, args ...any) error {
	msg := symbol + " " + fmt.Sprintf(format, args...)
	return f.Println("%s", f.Colorize(msg, color))
}

// Success writes a green checkmark line.
func (f *Formatter) Success(format string, args ...any) error {
	return f.statusLine("✓", ColorGreen, format, args...)
}

// Error writes a red cross line.
func (f *Formatter) Error(format string, args ...any) error {
	return f.statusLine("✗", ColorRed, format, args...)
}

// Warning writes a yellow warning line.
func (f *Formatter) Warning(format string, args ...any) error {
	return f.statusLine("⚠", ColorYellow, format, args...)
}

// Info writes a blue info line.
func (f *Formatter) Info(format string, args ...any) error {
	return f.statusLine("ℹ", ColorBlue, format, args...)
}

// Bold returns text styled bold.
func (f *Formatter) Bold(text string) string {
	return f.Colorize(text, ColorBold)
}

// Dim returns text styled dim.
func (f *Formatter) Dim(text string) string {
	return f.Colorize(text, ColorDim)
}

// Header writes a bold section title with an underline rule.
func (f *Formatter) Header(msg string) error {
	if err := f.Println("%s", f.Colorize(msg, ColorBold)); err != nil {
		return err
	}
	return f.Println("%s", strings.Repeat("─", len([]rune(msg))))
}

// SubHeader writes a cyan sub-section title.
func (f *Formatter) SubHeader(msg string) error {
	return f.Println("%s", f.Colorize(msg, ColorCyan))
}

// Item writes an indented key-value line with a dimmed key.
func (f *Formatter) Item(key, value string) error {
	return f.Println("  %s: %s", f.Dim(key), value)
}

// BulletItem writes an indented bullet line.
func (f *Formatter) BulletItem(msg string) error {
	return f.Println("  • %s", msg)
}

// Alignment positions a value within its table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// TableColumn names one table column.
type TableColumn struct {
	Header string
	Align  Alignment
}

// TableData is a table ready for rendering.
type TableData struct {
	Columns []TableColumn
	Rows    [][]string
}

// Table writes columns sized to their widest cell, a dashed rule, then the
// rows. Cells beyond the declared columns are dropped.
func (f *Formatter) Table(data TableData) error {
	if len(data.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(data.Columns))
	for i, col := range data.Columns {
		widths[i] = len([]rune(col.Header))
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, 0, len(data.Columns))
		for i := range data.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts = append(parts, pad(cell, widths[i], data.Columns[i].Align))
		}
		return strings.Join(parts, "  ")
	}

	headers := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headers[i] = col.Header
	}
	if err := f.Println("%s", f.Bold(line(headers))); err != nil {
		return err
	}

	rules := make([]string, len(data.Columns))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}
	if err := f.Println("%s", strings.Join(rules, "  ")); err != nil {
		return err
	}

	for _, row := range data.Rows {
		if err := f.Println("%s", line(row)); err != nil {
			return err
		}
	}
	return nil
}

func pad(text string, width int, align Alignment) string {
	gap := width - len([]rune(text))
	if gap <= 0 {
		return text
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + text
	}
	return text + strings.Repeat(" ", gap)
}

// JSON writes data as indented JSON.
func (f *Formatter) JSON(data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Spinner shows an animated progress indicator while a slow operation runs.
type Spinner struct {
	mu       sync.Mutex
	writer   io.Writer
	message  string
	interval time.Duration
	colored  bool
	frame    int
	done     chan struct{}
	exited   chan struct{}
	running  bool
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerOption configures a Spinner.
type SpinnerOption func(*Spinner)

// WithSpinnerWriter redirects spinner output away from stdout.
func WithSpinnerWriter(w io.Writer) SpinnerOption {
	return func(s *Spinner) { s.writer = w }
}

// WithSpinnerInterval sets the animation tick.
func WithSpinnerInterval(d time.Duration) SpinnerOption {
	return func(s *Spinner) { s.interval = d }
}

// WithSpinnerColor enables or disables colored frames.
func WithSpinnerColor(enabled bool) SpinnerOption {
	return func(s *Spinner) { s.colored = enabled }
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		writer:   os.Stdout,
		message:  message,
		interval: 80 * time.Millisecond,
		colored:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.exited = make(chan struct{})
	go s.animate(s.done, s.exited)
}

// Stop ends the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	exited := s.exited
	s.mu.Unlock()

	// The animation goroutine must not write after the line is cleared.
	<-exited
	_, _ = fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+4))
}

// StopWithSuccess stops the spinner and leaves a success line behind.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	s.finalLine("✓", ColorGreen, message)
}

// StopWithError stops the spinner and leaves an error line behind.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	s.finalLine("✗", ColorRed, message)
}

func (s *Spinner) finalLine(symbol string, color Color, message string) {
	if s.colored {
		_, _ = fmt.Fprintf(s.writer, "%s%s%s %s\n", color, symbol, ColorReset, message)
		return
	}
	_, _ = fmt.Fprintf(s.writer, "%s %s\n", symbol, message)
}

func (s *Spinner) animate(done, exited chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(exited)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := spinnerFrames[s.frame%len(spinnerFrames)]
			s.frame++
			message := s.message
			s.mu.Unlock()

			if s.colored {
				_, _ = fmt.Fprintf(s.writer, "\r%s%s%s %s", ColorCyan, frame, ColorReset, message)
			} else {
				_, _ = fmt.Fprintf(s.writer, "\r%s %s", frame, message)
			}
		}
	}
}
