package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// printer writes command output. Styling is applied only when w is a terminal.
type printer struct {
	w     io.Writer
	color bool

	title   lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	errorS  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w, color: isTerminal(w)}
	r := lipgloss.NewRenderer(w)
	p.title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7"))
	p.ok = r.NewStyle().Foreground(lipgloss.Color("#00D787"))
	p.muted = r.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	p.info = r.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	p.warning = r.NewStyle().Foreground(lipgloss.Color("#FFAF00")).Bold(true)
	p.errorS = r.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) heading(text string) {
	fmt.Fprintln(p.w, p.style(p.title, text))
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(p.ok, fmt.Sprintf(format, args...)))
}

func (p *printer) hint(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(p.muted, fmt.Sprintf(format, args...)))
}

func (p *printer) severity(s validation.Severity) string {
	switch s {
	case validation.SeverityError:
		return p.style(p.errorS, string(s))
	case validation.SeverityWarning:
		return p.style(p.warning, string(s))
	default:
		return p.style(p.info, string(s))
	}
}

func (p *printer) table(headers []string, rows [][]string) {
	t := table.New().Headers(headers...).Rows(rows...)
	if p.color {
		t = t.BorderStyle(p.muted).StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.title
			}
			return lipgloss.NewStyle()
		})
	}
	fmt.Fprintln(p.w, t.Render())
}

func (p *printer) emit(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
