package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/tml/markup"
)

type styles struct {
	path    *color.Color
	err     *color.Color
	warning *color.Color
	info    *color.Color
	code    *color.Color
	caret   *color.Color
	summary *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		path:    color.New(color.Bold),
		err:     color.New(color.Bold, color.FgHiRed),
		warning: color.New(color.Bold, color.FgYellow),
		info:    color.New(color.FgHiBlue),
		code:    color.New(color.FgHiWhite),
		caret:   color.New(color.FgHiGreen),
		summary: color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.path, s.err, s.warning, s.info, s.code, s.caret, s.summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *styles) severity(sev markup.Severity) *color.Color {
	switch {
	case sev >= markup.SeverityError:
		return s.err
	case sev == markup.SeverityWarn:
		return s.warning
	}
	return s.info
}

// Human writes compiler-style lines:
//
//	page.html:3:7: error errStrayEndTag (div): end tag does not match an open element
type Human struct {
	w      io.Writer
	styles *styles
}

func NewHuman(w io.Writer, colored bool) *Human {
	return &Human{w: w, styles: newStyles(colored)}
}

func (h *Human) Write(files []FileDiagnostics) error {
	var sb strings.Builder
	s := h.styles
	for _, f := range files {
		var lines []string
		if f.Source != "" {
			lines = strings.Split(markup.Normalize(f.Source), "\n")
		}
		for _, d := range f.Diagnostics {
			line, col := d.Span.Start.Line+1, d.Span.Start.Column+1
			sb.WriteString(s.path.Sprintf("%s:%d:%d:", f.Path, line, col))
			sb.WriteString(" ")
			sb.WriteString(s.severity(d.Severity).Sprint(d.Severity.String()))
			sb.WriteString(" ")
			sb.WriteString(s.code.Sprint(d.Code))
			if d.Subject != "" {
				fmt.Fprintf(&sb, " (%s)", d.Subject)
			}
			fmt.Fprintf(&sb, ": %s\n", markup.DescribeCode(d.Code))
			if d.Span.Start.Line < len(lines) {
				writeExcerpt(&sb, s, lines[d.Span.Start.Line], d.Span)
			}
		}
	}

	errors, warnings := Counts(files)
	if errors+warnings > 0 {
		sb.WriteString(s.summary.Sprintf("%s, %s\n", plural(errors, "error"), plural(warnings, "warning")))
	}
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func writeExcerpt(sb *strings.Builder, s *styles, line string, span markup.Span) {
	runes := []rune(line)
	start := min(span.Start.Column, len(runes))
	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		width = span.End.Column - span.Start.Column
	}
	width = max(1, min(width, len(runes)-start))

	var pad strings.Builder
	for _, r := range runes[:start] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	sb.WriteString("    " + line + "\n")
	sb.WriteString("    " + pad.String() + s.caret.Sprint(strings.Repeat("^", width)) + "\n")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
