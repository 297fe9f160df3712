package termio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PrintOptions controls output formatting.
type PrintOptions struct {
	// Width is the wrap column for statement and prompt text. Zero means 80.
	Width int
	// Color enables lipgloss styling for warnings and headers.
	Color bool
	// Markdown renders statements through glamour instead of plain wrapping.
	Markdown bool
}

// Printer is the output sink for statements, prompts and warnings.
type Printer struct {
	w    io.Writer
	opts PrintOptions

	warnStyle   lipgloss.Style
	headerStyle lipgloss.Style
}

// NewPrinter creates a printer writing to w. A nil writer means stdout.
func NewPrinter(w io.Writer, opts PrintOptions) *Printer {
	if w == nil {
		w = os.Stdout
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	return &Printer{
		w:           w,
		opts:        opts,
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		headerStyle: lipgloss.NewStyle().Bold(true),
	}
}

// Writer exposes the underlying writer (for raw prompt echoing).
func (p *Printer) Writer() io.Writer { return p.w }

// Width returns the effective wrap column.
func (p *Printer) Width() int { return p.opts.Width }

// Print writes text wrapped to the configured width, followed by a newline.
func (p *Printer) Print(text string) {
	fmt.Fprintln(p.w, Wrap(text, p.opts.Width))
}

// Printf formats and prints a wrapped line.
func (p *Printer) Printf(format string, args ...any) {
	p.Print(fmt.Sprintf(format, args...))
}

// Blank writes a separating empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Warn writes a visually marked warning line.
func (p *Printer) Warn(text string) {
	line := "⚠ " + text
	if p.opts.Color {
		line = p.warnStyle.Render(line)
	}
	fmt.Fprintln(p.w, line)
}

// Header writes an emphasized section line.
func (p *Printer) Header(text string) {
	line := text
	if p.opts.Color {
		line = p.headerStyle.Render(line)
	}
	fmt.Fprintln(p.w, line)
}

// Statement renders display-only text. With Markdown enabled the text goes
// through glamour; on any rendering failure it falls back to plain wrapping.
func (p *Printer) Statement(text string, markdown bool) {
	if markdown || p.opts.Markdown {
		out, err := glamour.Render(text, "auto")
		if err == nil {
			fmt.Fprint(p.w, strings.TrimRight(out, "\n")+"\n")
			return
		}
	}
	p.Print(text)
}

// Wrap word-wraps text to the given display width, preserving explicit
// newlines and the leading indentation of each line (continuation lines keep
// it too). Words wider than the width are emitted on their own line.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		indent := para[:len(para)-len(strings.TrimLeft(para, " \t"))]
		indentWidth := runewidth.StringWidth(indent)
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, para)
			continue
		}
		line := indent + words[0]
		lineWidth := runewidth.StringWidth(line)
		for _, word := range words[1:] {
			w := runewidth.StringWidth(word)
			if lineWidth+1+w > width {
				out = append(out, line)
				line = indent + word
				lineWidth = indentWidth + w
				continue
			}
			line += " " + word
			lineWidth += 1 + w
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
