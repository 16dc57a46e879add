package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"chatgpt/internal/logger"
)

const defaultWordWrap = 80

var errorLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("196"))

// Printer writes assistant replies and diagnostics.
type Printer struct {
	writer    io.Writer
	errWriter io.Writer
	mode      Mode
	wordWrap  int

	mu sync.Mutex
}

// NewPrinter creates a Printer writing replies to os.Stdout and diagnostics to os.Stderr.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer:    os.Stdout,
		errWriter: os.Stderr,
		mode:      ModeAuto,
		wordWrap:  defaultWordWrap,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Mode returns the configured rendering mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

// Reply prints an assistant message. Escape sequences sent by the remote are stripped
// before printing.
func (p *Printer) Reply(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text := ansi.Strip(content)
	if p.renderMarkdown() {
		rendered, err := p.markdown(text)
		if err == nil {
			_, _ = fmt.Fprint(p.writer, rendered)
			return
		}
		logger.Debug("Markdown rendering failed, printing plain text", "error", err)
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, _ = fmt.Fprint(p.writer, text)
}

// Error prints a diagnostic line.
func (p *Printer) Error(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := "error:"
	if colorful() {
		label = errorLabel.Render("Error:")
	}
	_, _ = fmt.Fprintf(p.errWriter, "%s %s\n", label, text)
}

func (p *Printer) renderMarkdown() bool {
	switch p.mode {
	case ModeMarkdown:
		return true
	case ModePlain:
		return false
	default:
		return colorful()
	}
}

func (p *Printer) markdown(text string) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if colorful() {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(p.wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

func colorful() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
