// Package report presents parse diagnostics for people and for tools.
package report

import (
	"os"

	"golang.org/x/term"

	"github.com/dhamidi/tml/markup"
)

// FileDiagnostics groups the diagnostics of one source file. Source is
// used to show the offending line and may be empty.
type FileDiagnostics struct {
	Path        string
	Source      string
	Diagnostics []markup.Diagnostic
}

// Counts returns the number of errors (including fatal) and warnings.
func Counts(files []FileDiagnostics) (errors, warnings int) {
	for _, f := range files {
		for _, d := range f.Diagnostics {
			switch {
			case d.Severity >= markup.SeverityError:
				errors++
			case d.Severity == markup.SeverityWarn:
				warnings++
			}
		}
	}
	return errors, warnings
}

// ColorEnabled resolves a --color mode of always, never or auto. Auto
// enables color when f is a terminal and NO_COLOR is unset.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
